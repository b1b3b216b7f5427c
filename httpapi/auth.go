package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Roles recognized by the API. Catalog mutations require RoleLibrarian;
// any authenticated session may list, borrow and return.
const (
	RoleLibrarian = "LIBRARIAN"
	RoleMember    = "MEMBER"
)

const bearerPrefix = "Bearer "

// ErrInvalidSession is returned by a SessionValidator when the presented
// token does not resolve to an active session.
var ErrInvalidSession = errors.New("invalid or expired session token")

// Session identifies an authenticated caller.
type Session struct {
	UserID uuid.UUID
	Role   string
}

// SessionValidator resolves a bearer token to a session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (Session, error)
}

// StaticSessionValidator validates tokens against a fixed in-memory table.
// It is meant for demos and tests; production deployments plug in their
// own SessionValidator.
type StaticSessionValidator struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStaticSessionValidator creates an empty StaticSessionValidator.
func NewStaticSessionValidator() *StaticSessionValidator {
	return &StaticSessionValidator{
		sessions: make(map[string]Session),
	}
}

// Register associates a token with a session.
func (v *StaticSessionValidator) Register(token string, session Session) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sessions[token] = session
}

// Validate implements SessionValidator.
func (v *StaticSessionValidator) Validate(_ context.Context, token string) (Session, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	session, ok := v.sessions[token]
	if !ok {
		return Session{}, ErrInvalidSession
	}

	return session, nil
}

// bearerToken extracts the bearer token from the Authorization header.
// It returns an empty string when no bearer credentials are present.
func bearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))
}

package inventory

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrEmptyTitle is returned when a book is built with a blank title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrEmptyAuthor is returned when a book is built with a blank author.
	ErrEmptyAuthor = errors.New("author must not be empty")

	// ErrEmptyISBN is returned when a book is built with a blank isbn.
	ErrEmptyISBN = errors.New("isbn must not be empty")

	// ErrInvalidQuantity is returned when a quantity is not a positive number
	// of copies at creation time, or negative on a quantity update.
	ErrInvalidQuantity = errors.New("quantity must be a positive number")

	// ErrInvariantViolated is returned by CheckInvariant when the copy accounting
	// of a record is inconsistent. It is a defensive check and is not expected to
	// trigger under correct borrow/return accounting.
	ErrInvariantViolated = errors.New("available + borrowers must equal quantity")
)

// Book is the persisted record for one catalog entry: the identity of a title,
// the total and available copy counts, and the set of users currently holding
// a copy. The Version field is the optimistic-concurrency token described in
// the package documentation; engines ignore it on input except for Save/Delete
// expectations and set it on every record they return.
//
// While its properties are exported, new records should be constructed with
// BuildBook so that validation applies.
type Book struct {
	ID        uuid.UUID
	Title     string
	Author    string
	ISBN      string
	Quantity  int
	Available int
	Borrowers BorrowerSet
	Version   RecordVersionUint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BuildBook is a factory method for Book.
//
// It trims the text fields and validates that they are non-empty and that the
// quantity is positive. The new record starts with all copies available, an
// empty borrower set, and version zero (engines assign the real version on create).
func BuildBook(id uuid.UUID, title string, author string, isbn string, quantity int) (Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)

	if title == "" {
		return Book{}, ErrEmptyTitle
	}

	if author == "" {
		return Book{}, ErrEmptyAuthor
	}

	if isbn == "" {
		return Book{}, ErrEmptyISBN
	}

	if quantity < 1 {
		return Book{}, ErrInvalidQuantity
	}

	return Book{
		ID:        id,
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Quantity:  quantity,
		Available: quantity,
		Borrowers: BorrowerSet{},
	}, nil
}

// BorrowedCount returns the number of copies currently lent out.
func (b Book) BorrowedCount() int {
	return b.Borrowers.Count()
}

// CheckInvariant verifies the copy accounting of the record:
// 0 <= available <= quantity and available + |borrowers| = quantity.
func (b Book) CheckInvariant() error {
	if b.Available < 0 || b.Available > b.Quantity {
		return ErrInvariantViolated
	}

	if b.Available+b.Borrowers.Count() != b.Quantity {
		return ErrInvariantViolated
	}

	return nil
}

// BorrowerSet is the set of user identities currently holding a copy of a book.
//
// The zero value is an empty set. With and Without return a new set instead of
// mutating the receiver, which keeps the decide functions of the lending
// features pure. Members are kept sorted so the JSON representation is stable.
type BorrowerSet struct {
	members []string
}

// BuildBorrowerSet creates a set from the given user IDs, dropping duplicates.
func BuildBorrowerSet(userIDs ...uuid.UUID) BorrowerSet {
	set := BorrowerSet{}
	for _, userID := range userIDs {
		set = set.With(userID)
	}

	return set
}

// Contains reports whether the given user currently holds a copy.
func (s BorrowerSet) Contains(userID uuid.UUID) bool {
	idx := sort.SearchStrings(s.members, userID.String())
	return idx < len(s.members) && s.members[idx] == userID.String()
}

// With returns a copy of the set that includes the given user.
func (s BorrowerSet) With(userID uuid.UUID) BorrowerSet {
	if s.Contains(userID) {
		return s
	}

	members := make([]string, 0, len(s.members)+1)
	members = append(members, s.members...)
	members = append(members, userID.String())
	sort.Strings(members)

	return BorrowerSet{members: members}
}

// Without returns a copy of the set that excludes the given user.
func (s BorrowerSet) Without(userID uuid.UUID) BorrowerSet {
	if !s.Contains(userID) {
		return s
	}

	members := make([]string, 0, len(s.members)-1)
	for _, member := range s.members {
		if member != userID.String() {
			members = append(members, member)
		}
	}

	return BorrowerSet{members: members}
}

// Count returns the number of users currently holding a copy.
func (s BorrowerSet) Count() int {
	return len(s.members)
}

// MemberIDs returns the sorted user IDs in the set.
func (s BorrowerSet) MemberIDs() []string {
	members := make([]string, len(s.members))
	copy(members, s.members)

	return members
}

// MarshalJSON encodes the set as a sorted JSON array of user IDs.
func (s BorrowerSet) MarshalJSON() ([]byte, error) {
	members := s.members
	if members == nil {
		members = []string{}
	}

	return jsoniter.ConfigFastest.Marshal(members)
}

// UnmarshalJSON decodes a JSON array of user IDs, dropping duplicates.
func (s *BorrowerSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := jsoniter.ConfigFastest.Unmarshal(data, &members); err != nil {
		return err
	}

	sort.Strings(members)

	deduped := members[:0]
	for i, member := range members {
		if i == 0 || members[i-1] != member {
			deduped = append(deduped, member)
		}
	}

	s.members = deduped

	return nil
}

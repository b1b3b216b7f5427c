package borrowbook

import (
	"github.com/google/uuid"
)

const (
	commandType = "BorrowBook"
)

// Command represents the intent of a user to borrow one copy of a book.
// The user identity is always the caller's own; the request layer never
// accepts it independently.
type Command struct {
	BookID uuid.UUID
	UserID uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, userID uuid.UUID) Command {
	return Command{
		BookID: bookID,
		UserID: userID,
	}
}

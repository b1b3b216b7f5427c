package updatebook

import (
	"github.com/google/uuid"
)

const (
	commandType = "UpdateBook"
)

// Command represents the intent to edit a catalog record. Nil fields are left
// unchanged; a non-nil Quantity triggers the quantity-adjustment transition.
type Command struct {
	BookID   uuid.UUID
	Title    *string
	Author   *string
	ISBN     *string
	Quantity *int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, title *string, author *string, isbn *string, quantity *int) Command {
	return Command{
		BookID:   bookID,
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Quantity: quantity,
	}
}

package addbook

const (
	commandType = "AddBook"
)

// Command represents the intent to add a new book to the catalog.
type Command struct {
	Title    string
	Author   string
	ISBN     string
	Quantity int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(title string, author string, isbn string, quantity int) Command {
	return Command{
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Quantity: quantity,
	}
}

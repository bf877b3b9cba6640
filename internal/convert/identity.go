package convert

import (
	"github.com/nomina-dev/nomina/internal/model"
)

// Identity is the Ledger Book YAML spoke: loading parses the canonical
// format, rendering emits it, and the hub model passes through unchanged.
type Identity struct {
	base
	book *model.Book
}

// NewIdentity creates the converter.
func NewIdentity() *Identity {
	return &Identity{}
}

// Load reads a ledger book YAML file.
func (c *Identity) Load(path string) error {
	book, err := model.LoadBook(path)
	if err != nil {
		return err
	}
	c.book = book
	return nil
}

// SetSource sets the Book to pass through.
func (c *Identity) SetSource(book *model.Book) {
	c.book = book
}

// ConvertToLedger returns the loaded book unchanged.
func (c *Identity) ConvertToLedger() (*model.Book, error) {
	return c.book, nil
}

// ConvertFromLedger is a no-op; the book already is the target model.
func (c *Identity) ConvertFromLedger() error {
	return nil
}

// ToText renders the canonical YAML form.
func (c *Identity) ToText() (string, error) {
	return c.book.ToYAML()
}

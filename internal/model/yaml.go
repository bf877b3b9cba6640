package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadBook reads a ledger book from a YAML file.
func LoadBook(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger book: %w", err)
	}
	return ParseBook(data)
}

// ParseBook unmarshals a ledger book from YAML bytes.
func ParseBook(data []byte) (*Book, error) {
	var book Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parsing ledger book: %w", err)
	}
	if book.Accounts == nil {
		book.Accounts = make(map[string]*Account)
	}
	if book.Transactions == nil {
		book.Transactions = make(map[string]*Transaction)
	}
	return &book, nil
}

// ToYAML serializes the book to its canonical YAML form.
func (b *Book) ToYAML() (string, error) {
	data, err := yaml.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("marshaling ledger book: %w", err)
	}
	return string(data), nil
}

// SaveBook writes the book to a YAML file.
func SaveBook(path string, b *Book) error {
	text, err := b.ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing ledger book: %w", err)
	}
	return nil
}

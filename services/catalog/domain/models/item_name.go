package models

import (
	"fmt"
	"unicode/utf8"
)

// ItemName is a value object representing a valid catalog item name.
// It is the business key used to address items on update: 1 <= len(name) <= 50 characters.
type ItemName string

const (
	minItemNameLength = 1
	maxItemNameLength = 50
)

// NewItemName constructs a valid ItemName or returns an error if constraints are violated.
func NewItemName(s string) (ItemName, error) {
	n := utf8.RuneCountInString(s)
	if n < minItemNameLength {
		return "", fmt.Errorf("item name must be at least %d character", minItemNameLength)
	}
	if n > maxItemNameLength {
		return "", fmt.Errorf("item name must not exceed %d characters", maxItemNameLength)
	}
	return ItemName(s), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}

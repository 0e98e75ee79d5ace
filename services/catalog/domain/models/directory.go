package models

import (
	"fmt"
	"unicode/utf8"
)

const maxDirectoryNameLength = 100

// CatalogBrand is a shared brand row, looked up by its name.
// A zero ID marks a brand that was resolved but is not persisted yet; the item
// repository stores it in the same transaction as the item that references it.
type CatalogBrand struct {
	ID   int64
	Name string
}

// IsNew reports whether the brand still has to be persisted.
func (b CatalogBrand) IsNew() bool { return b.ID == 0 }

// CatalogType is a shared item type row, looked up by its name.
// A zero ID has the same staged meaning as for CatalogBrand.
type CatalogType struct {
	ID   int64
	Name string
}

// IsNew reports whether the type still has to be persisted.
func (t CatalogType) IsNew() bool { return t.ID == 0 }

// ValidateDirectoryName checks a brand or type name: required, at most 100 characters.
func ValidateDirectoryName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if utf8.RuneCountInString(name) > maxDirectoryNameLength {
		return fmt.Errorf("%s name must not exceed %d characters", kind, maxDirectoryNameLength)
	}
	return nil
}

package models

import "github.com/shopspring/decimal"

// ItemFields holds the mutable scalar fields of an Item. Updates replace all of
// them at once; nothing from the previous record is merged in.
type ItemFields struct {
	Description       string
	Price             decimal.Decimal
	AvailableStock    int
	RestockThreshold  int
	MaxStockThreshold int
	OnReorder         bool
}

// Item is the sellable unit and the aggregate root of the catalog.
// ID is the surrogate key assigned by the store; Name is the business key.
type Item struct {
	ID   int64
	Name ItemName
	ItemFields
	Brand   CatalogBrand
	Type    CatalogType
	Version int // optimistic concurrency token, incremented by every stored update
}

// NewItem constructs an Item that has not been persisted yet.
func NewItem(name ItemName, fields ItemFields, brand CatalogBrand, catalogType CatalogType) *Item {
	return &Item{
		Name:       name,
		ItemFields: fields,
		Brand:      brand,
		Type:       catalogType,
	}
}

// PriceDiffers reports whether price differs from the stored price by value
// (12.5 and 12.50 are the same price).
func (i *Item) PriceDiffers(price decimal.Decimal) bool {
	return !i.Price.Equal(price)
}

// Replace overwrites the name and every scalar field.
func (i *Item) Replace(name ItemName, fields ItemFields) {
	i.Name = name
	i.ItemFields = fields
}

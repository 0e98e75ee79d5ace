package repositories

import (
	"context"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// QueryOpts holds pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// ItemRepository defines persistence operations for the Item aggregate.
// Implementations return the sentinels of the domain package: ErrItemNotFound,
// ErrDuplicateItemName and ErrConcurrencyConflict.
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	GetByName(ctx context.Context, name models.ItemName) (*models.Item, error)
	// List returns the items ordered by name ascending, windowed by opts, and the
	// total number of items ignoring the window.
	List(ctx context.Context, opts QueryOpts) ([]*models.Item, int, error)
	// Create persists item together with any staged brand or type and assigns
	// item.ID and item.Version.
	Create(ctx context.Context, item *models.Item) error
	// Update replaces every mutable column of the stored row whose ID and
	// Version match item, and increments item.Version.
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id int64) error
}

// BrandDirectory resolves brand names to brands. An unknown name yields a
// staged brand (ID 0) that the ItemRepository persists along with the item.
type BrandDirectory interface {
	Resolve(ctx context.Context, name string) (models.CatalogBrand, error)
}

// TypeDirectory resolves type names to types, with the same staging rule as BrandDirectory.
type TypeDirectory interface {
	Resolve(ctx context.Context, name string) (models.CatalogType, error)
}

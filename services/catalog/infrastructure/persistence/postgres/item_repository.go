package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/ghuser/catalog/pkg/database"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres/db"
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db *database.Database
}

var _ repositories.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository returns an ItemRepository backed by the given connection pool.
func NewItemRepository(conn *database.Database) *ItemRepository {
	return &ItemRepository{db: conn}
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(db.ListItemsRow(row)), nil
}

// GetByName retrieves an Item by its unique name. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByName(ctx context.Context, name models.ItemName) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItemByName(ctx, name.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item by name: %w", err)
	}
	return rowToItem(db.ListItemsRow(row)), nil
}

// List returns one page of items ordered by name and the total item count.
func (r *ItemRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	q := db.New(r.db.DB())

	rows, err := q.ListItems(ctx, db.ListItemsParams{
		Limit:  clampInt32(opts.Limit),
		Offset: clampInt32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}

	total, err := q.CountItems(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, int(total), nil
}

// Create inserts item, persisting a staged brand or type first, all in one
// transaction. On success item.ID, item.Version and the brand/type IDs are set.
// Returns ErrDuplicateItemName when the name is already taken and
// ErrConcurrencyConflict when a concurrent insert claimed the name first.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	var (
		brand   = item.Brand
		typ     = item.Type
		created db.InsertItemRow
	)
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)

		exists, err := q.ItemNameExists(ctx, item.Name.String())
		if err != nil {
			return fmt.Errorf("check item name: %w", err)
		}
		if exists {
			return catalogdomain.ErrDuplicateItemName
		}

		if brand, typ, err = persistReferences(ctx, q, brand, typ); err != nil {
			return err
		}

		created, err = q.InsertItem(ctx, db.InsertItemParams{
			Name:              item.Name.String(),
			Description:       item.Description,
			Price:             item.Price,
			CatalogBrandID:    brand.ID,
			CatalogTypeID:     typ.ID,
			AvailableStock:    int32(item.AvailableStock),
			RestockThreshold:  int32(item.RestockThreshold),
			MaxStockThreshold: int32(item.MaxStockThreshold),
			OnReorder:         item.OnReorder,
		})
		if err != nil {
			return fmt.Errorf("insert item: %w", classify(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	item.ID = created.ID
	item.Version = int(created.Version)
	item.Brand = brand
	item.Type = typ
	return nil
}

// Update replaces every mutable column of the row matching item.ID and
// item.Version. A row changed or removed since item was read yields
// ErrConcurrencyConflict, as does a name already used by another item.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	brand, typ := item.Brand, item.Type
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)

		var err error
		if brand, typ, err = persistReferences(ctx, q, brand, typ); err != nil {
			return err
		}

		n, err := q.UpdateItem(ctx, db.UpdateItemParams{
			ID:                item.ID,
			Name:              item.Name.String(),
			Description:       item.Description,
			Price:             item.Price,
			CatalogBrandID:    brand.ID,
			CatalogTypeID:     typ.ID,
			AvailableStock:    int32(item.AvailableStock),
			RestockThreshold:  int32(item.RestockThreshold),
			MaxStockThreshold: int32(item.MaxStockThreshold),
			OnReorder:         item.OnReorder,
			Version:           int32(item.Version),
		})
		if err != nil {
			return fmt.Errorf("update item: %w", classify(err))
		}
		if n == 0 {
			return catalogdomain.ErrConcurrencyConflict
		}
		return nil
	})
	if err != nil {
		return err
	}

	item.Version++
	item.Brand = brand
	item.Type = typ
	return nil
}

// Delete removes an item by ID. Returns ErrItemNotFound if no row was deleted.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	n, err := db.New(r.db.DB()).DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", classify(err))
	}
	if n == 0 {
		return catalogdomain.ErrItemNotFound
	}
	return nil
}

// persistReferences upserts a staged brand or type so the item row can reference it.
func persistReferences(ctx context.Context, q *db.Queries, brand models.CatalogBrand, typ models.CatalogType) (models.CatalogBrand, models.CatalogType, error) {
	if brand.IsNew() {
		row, err := q.UpsertBrand(ctx, brand.Name)
		if err != nil {
			return brand, typ, fmt.Errorf("upsert brand: %w", classify(err))
		}
		brand = models.CatalogBrand{ID: row.ID, Name: row.Brand}
	}
	if typ.IsNew() {
		row, err := q.UpsertType(ctx, typ.Name)
		if err != nil {
			return brand, typ, fmt.Errorf("upsert type: %w", classify(err))
		}
		typ = models.CatalogType{ID: row.ID, Name: row.Type}
	}
	return brand, typ, nil
}

// classify turns unique violations, serialization failures and deadlocks into
// ErrConcurrencyConflict. Other errors are returned unchanged.
func classify(err error) error {
	if database.PgErrorCode(err) == database.CodeUniqueViolation || database.IsConflict(err) {
		return fmt.Errorf("%w: %w", catalogdomain.ErrConcurrencyConflict, err)
	}
	return err
}

func clampInt32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

// rowToItem maps a joined item row to a domain models.Item.
func rowToItem(row db.ListItemsRow) *models.Item {
	return &models.Item{
		ID:   row.ID,
		Name: models.ItemName(row.Name),
		ItemFields: models.ItemFields{
			Description:       row.Description,
			Price:             row.Price,
			AvailableStock:    int(row.AvailableStock),
			RestockThreshold:  int(row.RestockThreshold),
			MaxStockThreshold: int(row.MaxStockThreshold),
			OnReorder:         row.OnReorder,
		},
		Brand:   models.CatalogBrand{ID: row.CatalogBrandID, Name: row.Brand},
		Type:    models.CatalogType{ID: row.CatalogTypeID, Name: row.Type},
		Version: int(row.Version),
	}
}

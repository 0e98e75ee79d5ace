package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	catalogmigrations "github.com/ghuser/catalog/migrations/catalog"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/migrator"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres"
)

// setupDB connects to DATABASE_URL, applies migrations and empties the catalog tables.
func setupDB(t *testing.T) *database.Database {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping postgres integration test")
	}

	ctx := context.Background()
	db, err := database.NewPool(ctx, url, logger.Nop())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrator.Up(ctx, db.DB(), catalogmigrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.DB().ExecContext(ctx, `TRUNCATE catalog_item, catalog_brand, catalog_type RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func newItem(t *testing.T, name, price, brand, typ string) *models.Item {
	t.Helper()
	itemName, err := models.NewItemName(name)
	if err != nil {
		t.Fatalf("NewItemName(%q): %v", name, err)
	}
	return models.NewItem(itemName, models.ItemFields{
		Description:       name + " description",
		Price:             decimal.RequireFromString(price),
		AvailableStock:    5,
		RestockThreshold:  1,
		MaxStockThreshold: 10,
	}, models.CatalogBrand{Name: brand}, models.CatalogType{Name: typ})
}

func mustCreate(t *testing.T, repo *postgres.ItemRepository, item *models.Item) {
	t.Helper()
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("Create(%s): %v", item.Name, err)
	}
}

func TestItemRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	item := newItem(t, "Widget", "9.99", "Acme", "Tools")
	mustCreate(t, repo, item)
	if item.ID <= 0 || item.Version != 1 {
		t.Fatalf("after Create: id=%d version=%d", item.ID, item.Version)
	}
	if item.Brand.ID <= 0 || item.Type.ID <= 0 {
		t.Fatalf("after Create: brand id=%d type id=%d", item.Brand.ID, item.Type.ID)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name.String() != "Widget" || got.Brand.Name != "Acme" || got.Type.Name != "Tools" {
		t.Errorf("unexpected item: %+v", got)
	}
	if !got.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("Price: got %s, want 9.99", got.Price)
	}
	if got.AvailableStock != 5 {
		t.Errorf("AvailableStock: got %d, want 5", got.AvailableStock)
	}

	byName, err := repo.GetByName(ctx, got.Name)
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != item.ID {
		t.Errorf("GetByName id: got %d, want %d", byName.ID, item.ID)
	}
}

func TestItemRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 4242); !errors.Is(err, catalogdomain.ErrItemNotFound) {
		t.Errorf("GetByID: got %v, want ErrItemNotFound", err)
	}
	if _, err := repo.GetByName(ctx, models.ItemName("Nope")); !errors.Is(err, catalogdomain.ErrItemNotFound) {
		t.Errorf("GetByName: got %v, want ErrItemNotFound", err)
	}
}

func TestItemRepository_CreateDuplicateName(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)

	mustCreate(t, repo, newItem(t, "Widget", "1", "Acme", "Tools"))
	err := repo.Create(context.Background(), newItem(t, "Widget", "2", "Acme", "Tools"))
	if !errors.Is(err, catalogdomain.ErrDuplicateItemName) {
		t.Fatalf("got %v, want ErrDuplicateItemName", err)
	}
}

func TestItemRepository_SharesBrandAndType(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	brands := postgres.NewBrandDirectory(db)
	types := postgres.NewTypeDirectory(db)
	ctx := context.Background()

	first := newItem(t, "Alpha", "1", "Acme", "Tools")
	mustCreate(t, repo, first)

	brand, err := brands.Resolve(ctx, "Acme")
	if err != nil {
		t.Fatalf("resolve brand: %v", err)
	}
	if brand.ID != first.Brand.ID {
		t.Errorf("brand id: got %d, want %d", brand.ID, first.Brand.ID)
	}
	typ, err := types.Resolve(ctx, "Tools")
	if err != nil {
		t.Fatalf("resolve type: %v", err)
	}
	if typ.ID != first.Type.ID {
		t.Errorf("type id: got %d, want %d", typ.ID, first.Type.ID)
	}

	second := newItem(t, "Beta", "2", "Acme", "Tools")
	second.Brand, second.Type = brand, typ
	mustCreate(t, repo, second)

	var brandCount int
	if err := db.DB().QueryRowContext(ctx, `SELECT count(*) FROM catalog_brand`).Scan(&brandCount); err != nil {
		t.Fatalf("count brands: %v", err)
	}
	if brandCount != 1 {
		t.Errorf("brand rows: got %d, want 1", brandCount)
	}

	unknown, err := brands.Resolve(ctx, "Globex")
	if err != nil {
		t.Fatalf("resolve unknown brand: %v", err)
	}
	if !unknown.IsNew() {
		t.Errorf("unknown brand should be staged, got %+v", unknown)
	}
}

func TestItemRepository_List(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alpha", "Echo", "Bravo", "Delta"} {
		mustCreate(t, repo, newItem(t, name, "1", "Acme", "Tools"))
	}

	page, total, err := repo.List(ctx, repositories.QueryOpts{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total: got %d, want 5", total)
	}
	if len(page) != 2 || page[0].Name.String() != "Bravo" || page[1].Name.String() != "Charlie" {
		t.Fatalf("page: got %+v, want [Bravo Charlie]", page)
	}

	empty, total, err := repo.List(ctx, repositories.QueryOpts{Limit: 10, Offset: 50})
	if err != nil {
		t.Fatalf("List past end: %v", err)
	}
	if total != 5 || len(empty) != 0 {
		t.Errorf("past end: got %d items, total %d", len(empty), total)
	}
}

func TestItemRepository_Update(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	item := newItem(t, "Widget", "9.99", "Acme", "Tools")
	mustCreate(t, repo, item)

	item.Price = decimal.RequireFromString("12.5")
	item.Brand = models.CatalogBrand{Name: "Globex"}
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if item.Version != 2 || item.Brand.ID <= 0 {
		t.Errorf("after Update: version=%d brand id=%d", item.Version, item.Brand.ID)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("12.5")) || got.Brand.Name != "Globex" || got.Version != 2 {
		t.Errorf("stored item: %+v", got)
	}
}

func TestItemRepository_UpdateStaleVersion(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	item := newItem(t, "Widget", "9.99", "Acme", "Tools")
	mustCreate(t, repo, item)

	stale, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	item.Price = decimal.RequireFromString("1")
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stale.Price = decimal.RequireFromString("2")
	if err := repo.Update(ctx, stale); !errors.Is(err, catalogdomain.ErrConcurrencyConflict) {
		t.Fatalf("stale Update: got %v, want ErrConcurrencyConflict", err)
	}
}

func TestItemRepository_Delete(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewItemRepository(db)
	ctx := context.Background()

	item := newItem(t, "Widget", "9.99", "Acme", "Tools")
	mustCreate(t, repo, item)

	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, item.ID); !errors.Is(err, catalogdomain.ErrItemNotFound) {
		t.Errorf("second Delete: got %v, want ErrItemNotFound", err)
	}
	if _, err := repo.GetByID(ctx, item.ID); !errors.Is(err, catalogdomain.ErrItemNotFound) {
		t.Errorf("GetByID after Delete: got %v, want ErrItemNotFound", err)
	}
}

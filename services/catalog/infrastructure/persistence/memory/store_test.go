package memory_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/memory"
)

func newItem(name, brand, typ string) *models.Item {
	return models.NewItem(models.ItemName(name), models.ItemFields{
		Price: decimal.RequireFromString("1.5"),
	}, models.CatalogBrand{Name: brand}, models.CatalogType{Name: typ})
}

func TestStore_ListWindowAndOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(rapid.StringMatching(`[A-Za-z0-9]{1,12}`), func(s string) string { return s }).Draw(t, "names")
		limit := rapid.IntRange(0, 20).Draw(t, "limit")
		offset := rapid.IntRange(0, 30).Draw(t, "offset")

		store := memory.NewStore()
		ctx := context.Background()
		for _, n := range names {
			if err := store.Items().Create(ctx, newItem(n, "Acme", "Tools")); err != nil {
				t.Fatalf("Create(%q): %v", n, err)
			}
		}

		page, total, err := store.Items().List(ctx, repositories.QueryOpts{Limit: limit, Offset: offset})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != len(names) {
			t.Fatalf("total: got %d, want %d", total, len(names))
		}

		sorted := slices.Clone(names)
		slices.Sort(sorted)
		start := min(offset, len(sorted))
		end := min(start+limit, len(sorted))
		want := sorted[start:end]

		if len(page) != len(want) {
			t.Fatalf("page size: got %d, want %d", len(page), len(want))
		}
		for i, it := range page {
			if it.Name.String() != want[i] {
				t.Fatalf("page[%d]: got %q, want %q", i, it.Name, want[i])
			}
		}
	})
}

func TestStore_NewBrandCreatedOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(t, "n")

		store := memory.NewStore()
		ctx := context.Background()
		for i := range n {
			brand, _ := store.Brands().Resolve(ctx, "Acme")
			typ, _ := store.Types().Resolve(ctx, "Tools")
			item := models.NewItem(models.ItemName(string(rune('a'+i))), models.ItemFields{}, brand, typ)
			if err := store.Items().Create(ctx, item); err != nil {
				t.Fatalf("Create #%d: %v", i, err)
			}
		}

		if got := store.BrandCount(); got != 1 {
			t.Fatalf("brands: got %d, want 1", got)
		}
		if got := store.TypeCount(); got != 1 {
			t.Fatalf("types: got %d, want 1", got)
		}
	})
}

func TestStore_CreateDuplicate(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if err := store.Items().Create(ctx, newItem("Widget", "Acme", "Tools")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := store.Items().Create(ctx, newItem("Widget", "Globex", "Gadgets"))
	if !errors.Is(err, catalogdomain.ErrDuplicateItemName) {
		t.Fatalf("got %v, want ErrDuplicateItemName", err)
	}
	if store.ItemCount() != 1 || store.BrandCount() != 1 || store.TypeCount() != 1 {
		t.Errorf("store changed by rejected create: items=%d brands=%d types=%d",
			store.ItemCount(), store.BrandCount(), store.TypeCount())
	}
}

func TestStore_UpdateVersionCheck(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem("Widget", "Acme", "Tools")
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stale, _ := store.Items().GetByID(ctx, item.ID)

	item.Price = decimal.RequireFromString("2")
	if err := store.Items().Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if item.Version != 2 {
		t.Errorf("Version: got %d, want 2", item.Version)
	}

	stale.Price = decimal.RequireFromString("3")
	if err := store.Items().Update(ctx, stale); !errors.Is(err, catalogdomain.ErrConcurrencyConflict) {
		t.Errorf("stale update: got %v, want ErrConcurrencyConflict", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem("Widget", "Acme", "Tools")
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	item.Description = "mutated"

	got, _ := store.Items().GetByID(ctx, item.ID)
	if got.Description != "" {
		t.Errorf("stored item shares state with caller: %q", got.Description)
	}
}

func TestStore_DeleteTwice(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem("Widget", "Acme", "Tools")
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Items().Delete(ctx, item.ID); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := store.Items().Delete(ctx, item.ID); !errors.Is(err, catalogdomain.ErrItemNotFound) {
		t.Errorf("second Delete: got %v, want ErrItemNotFound", err)
	}
}

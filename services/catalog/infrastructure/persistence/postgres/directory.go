package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres/db"
)

// BrandDirectory resolves brand names against catalog_brand.
type BrandDirectory struct {
	db *database.Database
}

var _ repositories.BrandDirectory = (*BrandDirectory)(nil)

func NewBrandDirectory(conn *database.Database) *BrandDirectory {
	return &BrandDirectory{db: conn}
}

// Resolve returns the stored brand or a staged one (ID 0) when name is unknown.
func (d *BrandDirectory) Resolve(ctx context.Context, name string) (models.CatalogBrand, error) {
	row, err := db.New(d.db.DB()).GetBrandByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CatalogBrand{Name: name}, nil
	}
	if err != nil {
		return models.CatalogBrand{}, fmt.Errorf("resolve brand: %w", err)
	}
	return models.CatalogBrand{ID: row.ID, Name: row.Brand}, nil
}

// TypeDirectory resolves type names against catalog_type.
type TypeDirectory struct {
	db *database.Database
}

var _ repositories.TypeDirectory = (*TypeDirectory)(nil)

func NewTypeDirectory(conn *database.Database) *TypeDirectory {
	return &TypeDirectory{db: conn}
}

// Resolve returns the stored type or a staged one (ID 0) when name is unknown.
func (d *TypeDirectory) Resolve(ctx context.Context, name string) (models.CatalogType, error) {
	row, err := db.New(d.db.DB()).GetTypeByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CatalogType{Name: name}, nil
	}
	if err != nil {
		return models.CatalogType{}, fmt.Errorf("resolve type: %w", err)
	}
	return models.CatalogType{ID: row.ID, Name: row.Type}, nil
}

package services

import (
	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Catalog *CatalogService
}

// New wires all catalog application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	var itemCache ItemCache
	if a.Cache != nil {
		itemCache = a.Cache
	}
	return &Services{
		Catalog: NewCatalogService(
			postgres.NewItemRepository(a.Db),
			postgres.NewBrandDirectory(a.Db),
			postgres.NewTypeDirectory(a.Db),
			a.Events,
			itemCache,
			a.Logger,
		),
	}
}

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// CatalogRoutes registers catalog endpoints on the provided chi router.
func CatalogRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a))
}

// Mount registers the item routes backed by svcs under /catalog/items.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	r.Route("/catalog/items", func(r chi.Router) {
		r.Get("/", handlers.NewListItemsHandler(svcs).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
		r.Put("/", handlers.NewPutItemHandler(svcs).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(svcs).Execute)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs).Execute)
	})
}

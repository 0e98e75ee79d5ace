package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// PutItemHandler handles PUT /catalog/items requests.
type PutItemHandler struct {
	svc *appsvcs.Services
}

func NewPutItemHandler(svc *appsvcs.Services) *PutItemHandler {
	return &PutItemHandler{svc: svc}
}

// Execute replaces the item whose name matches the body. A price change is
// announced on the catalog.item.price_changed topic.
//
//	@Summary		Update item
//	@Description	Replaces every field of the item with the given name
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.ItemView	true	"Replacement item, matched by name"
//	@Success		200		{object}	appsvcs.ItemView
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		409		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/catalog/items [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[appsvcs.ItemView](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Catalog.Update(r.Context(), *req)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

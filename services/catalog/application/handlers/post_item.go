package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// PostItemHandler handles POST /catalog/items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute creates a new item. Unknown brands and types are created on first use.
//
//	@Summary		Create item
//	@Description	Creates a catalog item; the name must not be in use
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.ItemView	true	"Item to create (id is ignored)"
//	@Success		201		{object}	appsvcs.ItemView
//	@Header			201		{string}	Location	"URL of the new item"
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		409		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/catalog/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[appsvcs.ItemView](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Catalog.Create(r.Context(), *req)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.Created(w, ItemsPath+"/"+strconv.FormatInt(item.ID, 10), item)
}

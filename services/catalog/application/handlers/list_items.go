package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// ListItemsHandler handles GET /catalog/items requests.
type ListItemsHandler struct {
	svc *appsvcs.Services
}

func NewListItemsHandler(svc *appsvcs.Services) *ListItemsHandler {
	return &ListItemsHandler{svc: svc}
}

// Execute returns one page of items ordered by name.
//
//	@Summary		List items
//	@Description	Returns a page of catalog items ordered by name, with the total item count
//	@Tags			catalog
//	@Produce		json
//	@Param			pageSize	query		int	false	"Page size"		default(10)	minimum(1)
//	@Param			pageIndex	query		int	false	"Page index"	default(0)	minimum(0)
//	@Success		200			{object}	appsvcs.PaginatedItems
//	@Failure		400			{object}	httpx.ErrorResponse
//	@Router			/catalog/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	pageIndex, pageSize, err := pagination(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.Catalog.List(r.Context(), pageIndex, pageSize)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

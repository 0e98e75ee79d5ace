package services

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ItemView is the public shape of a catalog item. Brand and type are flattened
// to their names. ID is omitted from request bodies and set on responses.
type ItemView struct {
	ID                int64           `json:"id,omitempty"      example:"1"`
	Name              string          `json:"name"              validate:"required,max=50"      example:"Widget"`
	Description       string          `json:"description"       example:"A very useful widget"`
	Price             decimal.Decimal `json:"price"             validate:"gte=0,lte=99.999"     swaggertype:"string" example:"9.99"`
	CatalogType       string          `json:"catalogType"       validate:"required,max=100"     example:"Tools"`
	CatalogBrand      string          `json:"catalogBrand"      validate:"required,max=100"     example:"Acme"`
	AvailableStock    int             `json:"availableStock"    validate:"gte=0,lte=2147483647" example:"5"`
	RestockThreshold  int             `json:"restockThreshold"  validate:"gte=0,lte=2147483647" example:"1"`
	MaxStockThreshold int             `json:"maxStockThreshold" validate:"gte=0,lte=2147483647" example:"10"`
	OnReorder         bool            `json:"onReorder"         example:"false"`
} // @name ItemView

// PaginatedItems is one page of the name-ordered item listing.
type PaginatedItems struct {
	PageIndex  int        `json:"pageIndex"  example:"0"`
	PageSize   int        `json:"pageSize"   example:"10"`
	TotalCount int        `json:"totalCount" example:"42"`
	Items      []ItemView `json:"items"`
} // @name PaginatedItems

func (v ItemView) fields() models.ItemFields {
	return models.ItemFields{
		Description:       v.Description,
		Price:             v.Price,
		AvailableStock:    v.AvailableStock,
		RestockThreshold:  v.RestockThreshold,
		MaxStockThreshold: v.MaxStockThreshold,
		OnReorder:         v.OnReorder,
	}
}

func viewFromItem(item *models.Item) ItemView {
	return ItemView{
		ID:                item.ID,
		Name:              item.Name.String(),
		Description:       item.Description,
		Price:             item.Price,
		CatalogType:       item.Type.Name,
		CatalogBrand:      item.Brand.Name,
		AvailableStock:    item.AvailableStock,
		RestockThreshold:  item.RestockThreshold,
		MaxStockThreshold: item.MaxStockThreshold,
		OnReorder:         item.OnReorder,
	}
}

func viewFromCache(c *cache.CachedItem) ItemView {
	return ItemView{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Price:             c.Price,
		CatalogType:       c.CatalogType,
		CatalogBrand:      c.CatalogBrand,
		AvailableStock:    c.AvailableStock,
		RestockThreshold:  c.RestockThreshold,
		MaxStockThreshold: c.MaxStockThreshold,
		OnReorder:         c.OnReorder,
	}
}

func (v ItemView) cached(version int) *cache.CachedItem {
	return &cache.CachedItem{
		ID:                v.ID,
		Version:           version,
		Name:              v.Name,
		Description:       v.Description,
		Price:             v.Price,
		CatalogType:       v.CatalogType,
		CatalogBrand:      v.CatalogBrand,
		AvailableStock:    v.AvailableStock,
		RestockThreshold:  v.RestockThreshold,
		MaxStockThreshold: v.MaxStockThreshold,
		OnReorder:         v.OnReorder,
	}
}

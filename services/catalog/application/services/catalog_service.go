package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/logger"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	catalogevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	domainsvcs "github.com/ghuser/catalog/services/catalog/domain/services"
)

const cacheWarmTimeout = 2 * time.Second

var tracer = otel.Tracer("github.com/ghuser/catalog/services/catalog")

// ItemCache is the subset of cache.ItemCache the service reads and evicts through.
// Set must ignore an entry older than the version last passed to Invalidate.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*cache.CachedItem, error)
	Set(ctx context.Context, item *cache.CachedItem) error
	Invalidate(ctx context.Context, id int64, version int) error
}

// CatalogService orchestrates item reads and mutations. It resolves brands and
// types by name, enforces name uniqueness, and hands an ItemPriceChangedEvent to
// the publisher after an update that changed the price has been stored.
// Reads are served from the cache when one is configured.
type CatalogService struct {
	repo      repositories.ItemRepository
	brands    repositories.BrandDirectory
	types     repositories.TypeDirectory
	publisher catalogevents.Publisher
	cache     ItemCache // nil disables caching
	log       logger.Logger
}

// NewCatalogService wires a CatalogService. itemCache may be nil.
func NewCatalogService(
	repo repositories.ItemRepository,
	brands repositories.BrandDirectory,
	types repositories.TypeDirectory,
	publisher catalogevents.Publisher,
	itemCache ItemCache,
	log logger.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		brands:    brands,
		types:     types,
		publisher: publisher,
		cache:     itemCache,
		log:       log,
	}
}

// List returns the page [pageIndex*pageSize, pageIndex*pageSize+pageSize) of
// items ordered by name, plus the total item count. Callers reject negative
// indexes and non-positive sizes before calling.
func (s *CatalogService) List(ctx context.Context, pageIndex, pageSize int) (_ PaginatedItems, err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.List", trace.WithAttributes(
		attribute.Int("page.index", pageIndex),
		attribute.Int("page.size", pageSize),
	))
	defer func() { endSpan(span, err) }()

	items, total, err := s.repo.List(ctx, repositories.QueryOpts{
		Limit:  pageSize,
		Offset: pageOffset(pageIndex, pageSize),
	})
	if err != nil {
		return PaginatedItems{}, fmt.Errorf("list items: %w", err)
	}

	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = viewFromItem(item)
	}
	return PaginatedItems{
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalCount: total,
		Items:      views,
	}, nil
}

// Get returns one item by ID using a read-through cache:
//  1. Check the cache first.
//  2. On a miss (or a cache error), query the repository.
//  3. Warm the cache asynchronously with the stored item.
func (s *CatalogService) Get(ctx context.Context, id int64) (_ ItemView, err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer func() { endSpan(span, err) }()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return viewFromCache(cached), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ItemView{}, fmt.Errorf("get item: %w", err)
	}
	view := viewFromItem(item)

	if s.cache != nil {
		warmCtx := context.WithoutCancel(ctx)
		go func() {
			ctx, cancel := context.WithTimeout(warmCtx, cacheWarmTimeout)
			defer cancel()
			if err := s.cache.Set(ctx, view.cached(item.Version)); err != nil {
				s.log.WarnContext(ctx, "item cache warm failed", "item_id", id, "error", err)
			}
		}()
	}
	return view, nil
}

// Create validates and stores a new item, creating its brand and type on first
// use. The returned view carries the assigned ID.
func (s *CatalogService) Create(ctx context.Context, in ItemView) (_ ItemView, err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Create", trace.WithAttributes(attribute.String("item.name", in.Name)))
	defer func() { endSpan(span, err) }()

	name, err := models.NewItemName(in.Name)
	if err != nil {
		return ItemView{}, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidItem, err)
	}
	item := models.NewItem(name, in.fields(),
		models.CatalogBrand{Name: in.CatalogBrand},
		models.CatalogType{Name: in.CatalogType},
	)
	if err := domainsvcs.ValidateItem(item); err != nil {
		return ItemView{}, err
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return ItemView{}, catalogdomain.ErrDuplicateItemName
	} else if !errors.Is(err, catalogdomain.ErrItemNotFound) {
		return ItemView{}, fmt.Errorf("check item name: %w", err)
	}

	if item.Brand, err = s.brands.Resolve(ctx, in.CatalogBrand); err != nil {
		return ItemView{}, fmt.Errorf("resolve brand: %w", err)
	}
	if item.Type, err = s.types.Resolve(ctx, in.CatalogType); err != nil {
		return ItemView{}, fmt.Errorf("resolve type: %w", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return ItemView{}, fmt.Errorf("create item: %w", err)
	}

	s.log.InfoContext(ctx, "catalog item created", "item_id", item.ID, "name", item.Name.String())
	return viewFromItem(item), nil
}

// Update replaces the item whose name matches in.Name. The request is validated
// before any lookup. Brand and type are re-resolved only when their names changed. When the stored price differs from
// in.Price, an ItemPriceChangedEvent is handed to the publisher after the write
// succeeds. The input view is returned unchanged.
func (s *CatalogService) Update(ctx context.Context, in ItemView) (_ ItemView, err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Update", trace.WithAttributes(attribute.String("item.name", in.Name)))
	defer func() { endSpan(span, err) }()

	name, err := models.NewItemName(in.Name)
	if err != nil {
		return ItemView{}, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidItem, err)
	}

	staged := models.NewItem(name, in.fields(),
		models.CatalogBrand{Name: in.CatalogBrand},
		models.CatalogType{Name: in.CatalogType},
	)
	if err := domainsvcs.ValidateItem(staged); err != nil {
		return ItemView{}, err
	}

	item, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return ItemView{}, fmt.Errorf("find item: %w", err)
	}
	priceChanged := item.PriceDiffers(in.Price)

	if item.Brand.Name != in.CatalogBrand {
		if item.Brand, err = s.brands.Resolve(ctx, in.CatalogBrand); err != nil {
			return ItemView{}, fmt.Errorf("resolve brand: %w", err)
		}
	}
	if item.Type.Name != in.CatalogType {
		if item.Type, err = s.types.Resolve(ctx, in.CatalogType); err != nil {
			return ItemView{}, fmt.Errorf("resolve type: %w", err)
		}
	}

	item.Replace(name, in.fields())

	if err := s.repo.Update(ctx, item); err != nil {
		return ItemView{}, fmt.Errorf("update item: %w", err)
	}

	if priceChanged {
		s.publisher.Publish(ctx, catalogevents.TopicItemPriceChanged,
			catalogevents.NewItemPriceChangedEvent(item.Name.String(), item.Price))
		span.SetAttributes(attribute.Bool("item.price_changed", true))
	}
	s.evict(ctx, item.ID, item.Version)

	s.log.InfoContext(ctx, "catalog item updated", "item_id", item.ID, "price_changed", priceChanged)
	return in, nil
}

// Delete removes an item by ID. Returns ErrItemNotFound if it does not exist.
func (s *CatalogService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Delete", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.evict(ctx, id, cache.VersionRemoved)

	s.log.InfoContext(ctx, "catalog item deleted", "item_id", id)
	return nil
}

// evict drops the cached item and fences out warms read before version.
func (s *CatalogService) evict(ctx context.Context, id int64, version int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), id, version); err != nil {
		s.log.WarnContext(ctx, "item cache eviction failed", "item_id", id, "error", err)
	}
}

// pageOffset returns pageIndex*pageSize, saturating instead of overflowing.
func pageOffset(pageIndex, pageSize int) int {
	if pageSize > 0 && pageIndex > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return pageIndex * pageSize
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

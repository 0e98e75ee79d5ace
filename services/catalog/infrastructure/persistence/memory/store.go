// Package memory holds an in-process catalog store for service and handler
// tests. It follows the same contracts as the postgres package.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
)

// Store keeps items, brands and types in maps guarded by one mutex.
// Values are copied on the way in and out so callers never share state with the store.
type Store struct {
	mu        sync.Mutex
	items     map[int64]models.Item
	brands    map[string]int64
	types     map[string]int64
	nextItem  int64
	nextBrand int64
	nextType  int64
}

func NewStore() *Store {
	return &Store{
		items:  make(map[int64]models.Item),
		brands: make(map[string]int64),
		types:  make(map[string]int64),
	}
}

// Items returns the store as a repositories.ItemRepository.
func (s *Store) Items() repositories.ItemRepository { return itemRepo{s} }

// Brands returns the store as a repositories.BrandDirectory.
func (s *Store) Brands() repositories.BrandDirectory { return brandDir{s} }

// Types returns the store as a repositories.TypeDirectory.
func (s *Store) Types() repositories.TypeDirectory { return typeDir{s} }

// BrandCount returns the number of persisted brands.
func (s *Store) BrandCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.brands)
}

// TypeCount returns the number of persisted types.
func (s *Store) TypeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.types)
}

// ItemCount returns the number of stored items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persistReferences assigns IDs to a staged brand or type. Callers hold s.mu.
func (s *Store) persistReferences(item *models.Item) {
	if item.Brand.IsNew() {
		id, ok := s.brands[item.Brand.Name]
		if !ok {
			s.nextBrand++
			id = s.nextBrand
			s.brands[item.Brand.Name] = id
		}
		item.Brand.ID = id
	}
	if item.Type.IsNew() {
		id, ok := s.types[item.Type.Name]
		if !ok {
			s.nextType++
			id = s.nextType
			s.types[item.Type.Name] = id
		}
		item.Type.ID = id
	}
}

// nameTaken reports whether an item other than exceptID uses name. Callers hold s.mu.
func (s *Store) nameTaken(name models.ItemName, exceptID int64) bool {
	for id, it := range s.items {
		if id != exceptID && it.Name == name {
			return true
		}
	}
	return false
}

type itemRepo struct{ s *Store }

func (r itemRepo) GetByID(_ context.Context, id int64) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, catalogdomain.ErrItemNotFound
	}
	return &it, nil
}

func (r itemRepo) GetByName(_ context.Context, name models.ItemName) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.Name == name {
			return &it, nil
		}
	}
	return nil, catalogdomain.ErrItemNotFound
}

func (r itemRepo) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	r.s.mu.Lock()
	all := make([]models.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		all = append(all, it)
	}
	r.s.mu.Unlock()

	slices.SortFunc(all, func(a, b models.Item) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})

	total := len(all)
	start := min(max(opts.Offset, 0), total)
	end := min(start+max(opts.Limit, 0), total)

	page := make([]*models.Item, 0, end-start)
	for i := start; i < end; i++ {
		page = append(page, &all[i])
	}
	return page, total, nil
}

func (r itemRepo) Create(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.nameTaken(item.Name, 0) {
		return catalogdomain.ErrDuplicateItemName
	}
	r.s.persistReferences(item)
	r.s.nextItem++
	item.ID = r.s.nextItem
	item.Version = 1
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) Update(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.items[item.ID]
	if !ok || stored.Version != item.Version {
		return catalogdomain.ErrConcurrencyConflict
	}
	if r.s.nameTaken(item.Name, item.ID) {
		return catalogdomain.ErrConcurrencyConflict
	}
	r.s.persistReferences(item)
	item.Version++
	r.s.items[item.ID] = *item
	return nil
}

func (r itemRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return catalogdomain.ErrItemNotFound
	}
	delete(r.s.items, id)
	return nil
}

type brandDir struct{ s *Store }

func (d brandDir) Resolve(_ context.Context, name string) (models.CatalogBrand, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return models.CatalogBrand{ID: d.s.brands[name], Name: name}, nil
}

type typeDir struct{ s *Store }

func (d typeDir) Resolve(_ context.Context, name string) (models.CatalogType, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return models.CatalogType{ID: d.s.types[name], Name: name}, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "catalog:item"

	// VersionRemoved marks an entry whose item was deleted. No Set is admitted
	// over it.
	VersionRemoved = math.MaxInt

	invalidateRetries = 3
)

// ErrCacheMiss is returned by ItemCache.Get when the item is not cached.
var ErrCacheMiss = redis.Nil

// CachedItem is the read model of a catalog item stored in Redis as a hash.
type CachedItem struct {
	ID                int64
	Version           int
	Name              string
	Description       string
	Price             decimal.Decimal
	CatalogType       string
	CatalogBrand      string
	AvailableStock    int
	RestockThreshold  int
	MaxStockThreshold int
	OnReorder         bool
}

// ItemCache stores catalog items by ID, with a secondary name→ID index so
// consumers that only know the item name can evict it.
//
// Every entry carries the item version. Invalidation leaves a tombstone with
// that version in place of the item, so a Set prepared from an older read
// cannot resurrect what a later write evicted.
//
// Key format: "catalog:item:{id}" and "catalog:item:name:{name}".
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item by ID.
// Returns ErrCacheMiss when the key does not exist, has expired or holds a
// tombstone.
func (c *ItemCache) Get(ctx context.Context, id int64) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, idKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 || vals[fieldEvicted] != "" {
		return nil, ErrCacheMiss
	}
	return decodeItem(vals)
}

// Set writes a cached item and its name index with a 24-hour TTL. The write is
// skipped when the stored entry, live or tombstone, is newer than item, and
// when another client touches the key between the version check and the write.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	key := idKey(item.ID)
	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		stored, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if !admits(stored, item.Version) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, encodeItem(item))
			pipe.Expire(ctx, key, ItemCacheTTL)
			pipe.Set(ctx, nameKey(item.Name), item.ID, ItemCacheTTL)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate replaces the cached item with a tombstone recording version, or
// the stored version when that is higher. Later Sets carrying an older version
// are ignored until the tombstone expires.
func (c *ItemCache) Invalidate(ctx context.Context, id int64, version int) error {
	key := idKey(id)
	var err error
	for range invalidateRetries {
		err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
			vals, err := tx.HMGet(ctx, key, "name", fieldVersion).Result()
			if err != nil {
				return err
			}
			floor := version
			if stored, ok := vals[1].(string); ok {
				if n, err := strconv.Atoi(stored); err == nil && n > floor {
					floor = n
				}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if name, ok := vals[0].(string); ok && name != "" {
					pipe.Del(ctx, nameKey(name))
				}
				pipe.Del(ctx, key)
				pipe.HSet(ctx, key, fieldVersion, strconv.Itoa(floor), fieldEvicted, "1")
				pipe.Expire(ctx, key, ItemCacheTTL)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Delete evicts an item that no longer exists. Nothing is cached for id again
// until the tombstone expires.
func (c *ItemCache) Delete(ctx context.Context, id int64) error {
	return c.Invalidate(ctx, id, VersionRemoved)
}

// DeleteByName evicts the cached item currently indexed under name, if any,
// keeping its version as the tombstone floor.
func (c *ItemCache) DeleteByName(ctx context.Context, name string) error {
	id, err := c.client.Client().Get(ctx, nameKey(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache delete by name: %w", err)
	}
	return c.Invalidate(ctx, id, 0)
}

// storedVersion reads the version of the entry at key; -1 when there is none.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int, error) {
	v, err := tx.HGet(ctx, key, fieldVersion).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fieldVersion, err)
	}
	return n, nil
}

// admits reports whether an entry at version may overwrite one at stored.
func admits(stored, version int) bool {
	return stored != VersionRemoved && version >= stored
}

const (
	fieldVersion = "version"
	fieldEvicted = "evicted"
)

func idKey(id int64) string {
	return fmt.Sprintf("%s:%d", itemCacheKeyPrefix, id)
}

func nameKey(name string) string {
	return fmt.Sprintf("%s:name:%s", itemCacheKeyPrefix, name)
}

func encodeItem(item *CachedItem) map[string]any {
	return map[string]any{
		"id":                  strconv.FormatInt(item.ID, 10),
		fieldVersion:          strconv.Itoa(item.Version),
		"name":                item.Name,
		"description":         item.Description,
		"price":               item.Price.String(),
		"catalog_type":        item.CatalogType,
		"catalog_brand":       item.CatalogBrand,
		"available_stock":     strconv.Itoa(item.AvailableStock),
		"restock_threshold":   strconv.Itoa(item.RestockThreshold),
		"max_stock_threshold": strconv.Itoa(item.MaxStockThreshold),
		"on_reorder":          strconv.FormatBool(item.OnReorder),
	}
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	var errs []error
	parseInt := func(field string) int {
		n, err := strconv.Atoi(vals[field])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		return n
	}

	id, err := strconv.ParseInt(vals["id"], 10, 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("id: %w", err))
	}
	price, err := decimal.NewFromString(vals["price"])
	if err != nil {
		errs = append(errs, fmt.Errorf("price: %w", err))
	}
	onReorder, err := strconv.ParseBool(vals["on_reorder"])
	if err != nil {
		errs = append(errs, fmt.Errorf("on_reorder: %w", err))
	}

	item := &CachedItem{
		ID:                id,
		Version:           parseInt(fieldVersion),
		Name:              vals["name"],
		Description:       vals["description"],
		Price:             price,
		CatalogType:       vals["catalog_type"],
		CatalogBrand:      vals["catalog_brand"],
		AvailableStock:    parseInt("available_stock"),
		RestockThreshold:  parseInt("restock_threshold"),
		MaxStockThreshold: parseInt("max_stock_threshold"),
		OnReorder:         onReorder,
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("cache parse: %w", errors.Join(errs...))
	}
	return item, nil
}

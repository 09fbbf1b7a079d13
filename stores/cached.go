package stores

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"lightingboq/engine"
)

type itemKey struct {
	kind engine.Kind
	id   string
}

// CachedCatalog serves catalog reads from an expiring LRU in front of another
// CatalogStore. Errors are never cached. Compatibility checks at attach time
// must use the underlying store directly.
type CachedCatalog struct {
	next  engine.CatalogStore
	items *expirable.LRU[itemKey, engine.CatalogItem]
	lists *expirable.LRU[engine.Kind, []engine.CatalogItem]
}

func NewCachedCatalog(next engine.CatalogStore, size int, ttl time.Duration) *CachedCatalog {
	if size <= 0 {
		size = 256
	}
	return &CachedCatalog{
		next:  next,
		items: expirable.NewLRU[itemKey, engine.CatalogItem](size, nil, ttl),
		lists: expirable.NewLRU[engine.Kind, []engine.CatalogItem](len(engine.Kinds), nil, ttl),
	}
}

// Purge drops every cached entry, e.g. after a catalog import.
func (c *CachedCatalog) Purge() {
	c.items.Purge()
	c.lists.Purge()
}

func (c *CachedCatalog) get(ctx context.Context, kind engine.Kind, id string, load func(context.Context, string) (engine.CatalogItem, error)) (engine.CatalogItem, error) {
	key := itemKey{kind: kind, id: id}
	if it, ok := c.items.Get(key); ok {
		return copyItem(it), nil
	}
	it, err := load(ctx, id)
	if err != nil {
		return engine.CatalogItem{}, err
	}
	c.items.Add(key, copyItem(it))
	return it, nil
}

func (c *CachedCatalog) list(ctx context.Context, kind engine.Kind, load func(context.Context) ([]engine.CatalogItem, error)) ([]engine.CatalogItem, error) {
	if list, ok := c.lists.Get(kind); ok {
		return copyItems(list), nil
	}
	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.lists.Add(kind, copyItems(list))
	return list, nil
}

func copyItems(list []engine.CatalogItem) []engine.CatalogItem {
	out := make([]engine.CatalogItem, len(list))
	for i, it := range list {
		out[i] = copyItem(it)
	}
	return out
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindProduct, id, c.next.GetProduct)
}

func (c *CachedCatalog) GetDriver(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindDriver, id, c.next.GetDriver)
}

func (c *CachedCatalog) GetAccessory(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindAccessory, id, c.next.GetAccessory)
}

func (c *CachedCatalog) ListProducts(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindProduct, c.next.ListProducts)
}

func (c *CachedCatalog) ListDrivers(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindDriver, c.next.ListDrivers)
}

func (c *CachedCatalog) ListAccessories(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindAccessory, c.next.ListAccessories)
}

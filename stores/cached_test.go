package stores_test

import (
	"context"
	"testing"
	"time"

	"lightingboq/engine"
	"lightingboq/stores"
)

// countingCatalog counts calls that reach the wrapped store.
type countingCatalog struct {
	*stores.MemoryCatalog
	gets  int
	lists int
}

func (c *countingCatalog) GetProduct(ctx context.Context, id string) (engine.CatalogItem, error) {
	c.gets++
	return c.MemoryCatalog.GetProduct(ctx, id)
}

func (c *countingCatalog) ListDrivers(ctx context.Context) ([]engine.CatalogItem, error) {
	c.lists++
	return c.MemoryCatalog.ListDrivers(ctx)
}

func newCounting() *countingCatalog {
	return &countingCatalog{MemoryCatalog: stores.NewMemoryCatalog(
		engine.CatalogItem{ID: "A", Kind: engine.KindProduct, UnitPrice: d("100"), CompatibleDriverIDs: []string{"D"}},
		engine.CatalogItem{ID: "D", Kind: engine.KindDriver, UnitPrice: d("20")},
	)}
}

func TestCachedCatalog_HitsCache(t *testing.T) {
	ctx := context.Background()
	inner := newCounting()
	cat := stores.NewCachedCatalog(inner, 16, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := cat.GetProduct(ctx, "A"); err != nil {
			t.Fatal(err)
		}
		if _, err := cat.ListDrivers(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if inner.gets != 1 || inner.lists != 1 {
		t.Errorf("inner calls gets=%d lists=%d, want 1/1", inner.gets, inner.lists)
	}
}

func TestCachedCatalog_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := newCounting()
	cat := stores.NewCachedCatalog(inner, 16, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cat.GetProduct(ctx, "missing"); !engine.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	}
	if inner.gets != 2 {
		t.Errorf("inner gets = %d, want 2", inner.gets)
	}
}

func TestCachedCatalog_Purge(t *testing.T) {
	ctx := context.Background()
	inner := newCounting()
	cat := stores.NewCachedCatalog(inner, 16, time.Minute)

	first, _ := cat.GetProduct(ctx, "A")
	inner.Put(engine.CatalogItem{ID: "A", Kind: engine.KindProduct, UnitPrice: d("150")})

	stale, _ := cat.GetProduct(ctx, "A")
	if !stale.UnitPrice.Equal(first.UnitPrice) {
		t.Errorf("expected cached price %s, got %s", first.UnitPrice, stale.UnitPrice)
	}

	cat.Purge()
	fresh, _ := cat.GetProduct(ctx, "A")
	if !fresh.UnitPrice.Equal(d("150")) {
		t.Errorf("after purge price = %s, want 150", fresh.UnitPrice)
	}
}

func TestCachedCatalog_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cat := stores.NewCachedCatalog(newCounting(), 16, time.Minute)

	it, _ := cat.GetProduct(ctx, "A")
	it.CompatibleDriverIDs[0] = "tampered"

	again, _ := cat.GetProduct(ctx, "A")
	if again.CompatibleDriverIDs[0] != "D" {
		t.Errorf("cache entry mutated: %v", again.CompatibleDriverIDs)
	}
}

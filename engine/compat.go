package engine

import (
	"context"
	"fmt"
)

// Compatible holds the catalog records a product may be combined with.
type Compatible struct {
	Drivers     []CatalogItem `json:"drivers"`
	Accessories []CatalogItem `json:"accessories"`
}

// Resolver answers compatibility questions against a CatalogStore.
type Resolver struct {
	catalog CatalogStore
}

func NewResolver(catalog CatalogStore) *Resolver {
	return &Resolver{catalog: catalog}
}

// ResolveCompatible returns the drivers and accessories linked to a product.
// Ordering follows the store's listing order.
func (r *Resolver) ResolveCompatible(ctx context.Context, productID string) (Compatible, error) {
	product, err := r.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Compatible{}, err
	}

	drivers, err := r.catalog.ListDrivers(ctx)
	if err != nil {
		return Compatible{}, fmt.Errorf("list drivers: %w", err)
	}
	accessories, err := r.catalog.ListAccessories(ctx)
	if err != nil {
		return Compatible{}, fmt.Errorf("list accessories: %w", err)
	}

	out := Compatible{
		Drivers:     []CatalogItem{},
		Accessories: []CatalogItem{},
	}
	for _, d := range drivers {
		if product.Allows(KindDriver, d.ID) {
			out.Drivers = append(out.Drivers, d)
		}
	}
	for _, a := range accessories {
		if product.Allows(KindAccessory, a.ID) {
			out.Accessories = append(out.Accessories, a)
		}
	}
	return out, nil
}

// CheckCompatible re-reads the product from the store and fails with
// *IncompatibleItemError when itemID is not in its compatibility set for kind.
func (r *Resolver) CheckCompatible(ctx context.Context, productID string, kind Kind, itemID string) error {
	product, err := r.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Allows(kind, itemID) {
		return &IncompatibleItemError{ProductID: productID, Kind: kind, ItemID: itemID}
	}
	return nil
}

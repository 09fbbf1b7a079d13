// Package engine implements the configuration and BOQ versioning rules:
// catalog compatibility, working-set aggregation, version snapshots and
// their DRAFT/APPROVED lifecycle.
package engine

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

// Kind discriminates the catalog variants.
type Kind string

const (
	KindProduct   Kind = "PRODUCT"
	KindDriver    Kind = "DRIVER"
	KindAccessory Kind = "ACCESSORY"
)

// Kinds lists the catalog kinds in display order.
var Kinds = []Kind{KindProduct, KindDriver, KindAccessory}

func (k Kind) Valid() bool {
	switch k {
	case KindProduct, KindDriver, KindAccessory:
		return true
	}
	return false
}

// Label returns the human readable plural used in summaries and exports.
func (k Kind) Label() string {
	switch k {
	case KindProduct:
		return "Luminaires"
	case KindDriver:
		return "Drivers"
	case KindAccessory:
		return "Accessories"
	}
	return string(k)
}

// CatalogItem is a product, driver or accessory master record. Only products
// carry compatibility sets.
type CatalogItem struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`

	CompatibleDriverIDs    []string `json:"compatibleDriverIds,omitempty"`
	CompatibleAccessoryIDs []string `json:"compatibleAccessoryIds,omitempty"`
}

// Allows reports whether an item of the given kind and id may be attached to
// this product. Non-products allow nothing.
func (c CatalogItem) Allows(kind Kind, id string) bool {
	if c.Kind != KindProduct {
		return false
	}
	switch kind {
	case KindDriver:
		return slices.Contains(c.CompatibleDriverIDs, id)
	case KindAccessory:
		return slices.Contains(c.CompatibleAccessoryIDs, id)
	}
	return false
}

// DisplayName is "CODE - Name", or just the name when there is no code.
func (c CatalogItem) DisplayName() string {
	if c.Code == "" {
		return c.Name
	}
	return c.Code + " - " + c.Name
}

// CatalogStore is the read-only source of catalog master data. Lookups of
// unknown ids must fail with *NotFoundError.
type CatalogStore interface {
	GetProduct(ctx context.Context, id string) (CatalogItem, error)
	GetDriver(ctx context.Context, id string) (CatalogItem, error)
	GetAccessory(ctx context.Context, id string) (CatalogItem, error)
	ListProducts(ctx context.Context) ([]CatalogItem, error)
	ListDrivers(ctx context.Context) ([]CatalogItem, error)
	ListAccessories(ctx context.Context) ([]CatalogItem, error)
}

package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lightingboq/pricing"
)

// Status is the lifecycle state of a BOQ version.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
)

// BOQLineItem is a frozen row of a BOQ version.
type BOQLineItem struct {
	SortOrder int             `json:"sortOrder"`
	Kind      Kind            `json:"kind"`
	ItemID    string          `json:"itemId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Scope     string          `json:"scope"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// BOQVersion is a numbered snapshot of a project's configuration. Line items
// never change after creation; margin may change only while DRAFT.
type BOQVersion struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	Number        int             `json:"number"`
	Status        Status          `json:"status"`
	LineItems     []BOQLineItem   `json:"lineItems"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
}

func (v BOQVersion) IsApproved() bool {
	return v.Status == StatusApproved
}

// withMargin returns a copy with a new margin and a grand total recomputed
// from the unchanged subtotal.
func (v BOQVersion) withMargin(pct decimal.Decimal) BOQVersion {
	v.MarginPercent = pct
	v.GrandTotal = pricing.GrandTotal(v.Subtotal, pct)
	return v
}

// VersionStore persists BOQ versions. SaveVersion must keep line-item order
// and refuse to overwrite an APPROVED record with *VersionLockedError.
// LoadLatest returns nil when the project has no versions.
type VersionStore interface {
	SaveVersion(ctx context.Context, v BOQVersion) (BOQVersion, error)
	LoadVersions(ctx context.Context, projectID string) ([]BOQVersion, error)
	LoadLatest(ctx context.Context, projectID string) (*BOQVersion, error)
}

// freeze flattens working sets into line items: each selection line yields
// its product row, then its drivers, then its accessories. labels maps a
// scope key to its display label; missing entries fall back to the key.
func freeze(sets []WorkingSet, labels map[ScopeKey]string) ([]BOQLineItem, decimal.Decimal) {
	items := []BOQLineItem{}
	subtotal := decimal.Zero

	add := func(scope string, kind Kind, item CatalogItem, qty int) {
		total := pricing.LineTotal(item.UnitPrice, qty)
		items = append(items, BOQLineItem{
			SortOrder: len(items) + 1,
			Kind:      kind,
			ItemID:    item.ID,
			Code:      item.Code,
			Name:      item.Name,
			Scope:     scope,
			Quantity:  qty,
			UnitPrice: item.UnitPrice,
			Total:     total,
		})
		subtotal = subtotal.Add(total)
	}

	for _, ws := range sets {
		label, ok := labels[ws.Scope]
		if !ok {
			label = ws.Scope.String()
		}
		for _, l := range ws.Lines {
			add(label, KindProduct, l.Product, l.Quantity)
			for _, a := range l.Drivers {
				add(label, KindDriver, a.Item, a.Quantity)
			}
			for _, a := range l.Accessories {
				add(label, KindAccessory, a.Item, a.Quantity)
			}
		}
	}
	return items, subtotal
}

package engine

import (
	"github.com/shopspring/decimal"

	"lightingboq/pricing"
)

// GroupTotal collects the line items of one kind.
type GroupTotal struct {
	Count       int             `json:"count"`
	Items       []BOQLineItem   `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Summary is the grouped view model of a BOQ version used by exports and the
// view layer.
type Summary struct {
	Product   GroupTotal `json:"PRODUCT"`
	Driver    GroupTotal `json:"DRIVER"`
	Accessory GroupTotal `json:"ACCESSORY"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	MarginAmount  decimal.Decimal `json:"marginAmount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// Group returns the group for kind. Unknown kinds get an empty group.
func (s Summary) Group(kind Kind) GroupTotal {
	switch kind {
	case KindProduct:
		return s.Product
	case KindDriver:
		return s.Driver
	case KindAccessory:
		return s.Accessory
	}
	return emptyGroup()
}

func (s *Summary) group(kind Kind) *GroupTotal {
	switch kind {
	case KindProduct:
		return &s.Product
	case KindDriver:
		return &s.Driver
	case KindAccessory:
		return &s.Accessory
	}
	return nil
}

func emptyGroup() GroupTotal {
	return GroupTotal{Items: []BOQLineItem{}, TotalAmount: decimal.Zero}
}

// GroupByKind buckets a version's line items by kind, keeping the version's
// order inside each bucket. Items of an unknown kind are skipped.
func GroupByKind(v BOQVersion) Summary {
	s := Summary{
		Product:       emptyGroup(),
		Driver:        emptyGroup(),
		Accessory:     emptyGroup(),
		Subtotal:      v.Subtotal,
		MarginPercent: v.MarginPercent,
		MarginAmount:  pricing.MarginAmount(v.Subtotal, v.MarginPercent),
		GrandTotal:    v.GrandTotal,
	}
	for _, item := range v.LineItems {
		g := s.group(item.Kind)
		if g == nil {
			continue
		}
		g.Count++
		g.Items = append(g.Items, item)
		g.TotalAmount = g.TotalAmount.Add(item.Total)
	}
	return s
}

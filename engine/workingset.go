package engine

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lightingboq/pricing"
)

// Attachment is a driver or accessory chosen for a selection line.
type Attachment struct {
	ID       string      `json:"id"`
	Item     CatalogItem `json:"item"`
	Quantity int         `json:"quantity"`
}

// SelectionLine is one chosen product with its attachments. Catalog records
// are snapshots taken when the line or attachment was added.
type SelectionLine struct {
	ID          string       `json:"id"`
	Product     CatalogItem  `json:"product"`
	Quantity    int          `json:"quantity"`
	Drivers     []Attachment `json:"drivers"`
	Accessories []Attachment `json:"accessories"`
}

func (l SelectionLine) clone() SelectionLine {
	l.Drivers = slices.Clone(l.Drivers)
	l.Accessories = slices.Clone(l.Accessories)
	return l
}

// WorkingSet is the mutable selection for one scope key. It is a value: every
// With* method returns a modified copy and leaves the receiver untouched.
type WorkingSet struct {
	Scope ScopeKey        `json:"scope"`
	Lines []SelectionLine `json:"lines"`
}

func NewWorkingSet(scope ScopeKey) WorkingSet {
	return WorkingSet{Scope: scope, Lines: []SelectionLine{}}
}

// Clone returns a copy whose line and attachment slices are independent of ws.
func (ws WorkingSet) Clone() WorkingSet {
	out := WorkingSet{Scope: ws.Scope, Lines: make([]SelectionLine, len(ws.Lines))}
	for i, l := range ws.Lines {
		out.Lines[i] = l.clone()
	}
	return out
}

func (ws WorkingSet) IsEmpty() bool {
	return len(ws.Lines) == 0
}

func (ws WorkingSet) lineIndex(lineID string) int {
	return slices.IndexFunc(ws.Lines, func(l SelectionLine) bool { return l.ID == lineID })
}

// Line returns the selection line with the given id.
func (ws WorkingSet) Line(lineID string) (SelectionLine, error) {
	i := ws.lineIndex(lineID)
	if i < 0 {
		return SelectionLine{}, &NotFoundError{Entity: "selection line", ID: lineID}
	}
	return ws.Lines[i], nil
}

// WithProduct appends a new selection line for product.
func (ws WorkingSet) WithProduct(product CatalogItem, qty int) (WorkingSet, SelectionLine, error) {
	if qty < 1 {
		return ws, SelectionLine{}, &InvalidQuantityError{Quantity: qty}
	}
	if product.Kind != KindProduct {
		return ws, SelectionLine{}, &NotFoundError{Entity: "product", ID: product.ID}
	}
	line := SelectionLine{
		ID:          uuid.NewString(),
		Product:     product,
		Quantity:    qty,
		Drivers:     []Attachment{},
		Accessories: []Attachment{},
	}
	out := ws.Clone()
	out.Lines = append(out.Lines, line)
	return out, line, nil
}

// WithAttachment attaches a driver or accessory to a line after checking it
// against the compatibility sets of the line's product snapshot.
func (ws WorkingSet) WithAttachment(lineID string, item CatalogItem, qty int) (WorkingSet, Attachment, error) {
	line, err := ws.Line(lineID)
	if err != nil {
		return ws, Attachment{}, err
	}
	if !line.Product.Allows(item.Kind, item.ID) {
		return ws, Attachment{}, &IncompatibleItemError{ProductID: line.Product.ID, Kind: item.Kind, ItemID: item.ID}
	}
	return ws.attach(lineID, item, qty)
}

// attach appends the attachment without a compatibility check. The engine
// calls it after validating against a fresh catalog read.
func (ws WorkingSet) attach(lineID string, item CatalogItem, qty int) (WorkingSet, Attachment, error) {
	if qty < 1 {
		return ws, Attachment{}, &InvalidQuantityError{Quantity: qty}
	}
	i := ws.lineIndex(lineID)
	if i < 0 {
		return ws, Attachment{}, &NotFoundError{Entity: "selection line", ID: lineID}
	}

	att := Attachment{ID: uuid.NewString(), Item: item, Quantity: qty}
	out := ws.Clone()
	switch item.Kind {
	case KindDriver:
		out.Lines[i].Drivers = append(out.Lines[i].Drivers, att)
	case KindAccessory:
		out.Lines[i].Accessories = append(out.Lines[i].Accessories, att)
	default:
		return ws, Attachment{}, &IncompatibleItemError{ProductID: ws.Lines[i].Product.ID, Kind: item.Kind, ItemID: item.ID}
	}
	return out, att, nil
}

// WithQuantity changes a quantity. An empty attachmentID targets the product
// line itself, which must stay positive. An attachment whose quantity drops
// to zero or below is removed.
func (ws WorkingSet) WithQuantity(lineID, attachmentID string, qty int) (WorkingSet, error) {
	i := ws.lineIndex(lineID)
	if i < 0 {
		return ws, &NotFoundError{Entity: "selection line", ID: lineID}
	}

	out := ws.Clone()
	line := &out.Lines[i]
	if attachmentID == "" {
		if qty < 1 {
			return ws, &InvalidQuantityError{Quantity: qty}
		}
		line.Quantity = qty
		return out, nil
	}

	update := func(atts []Attachment) ([]Attachment, bool) {
		j := slices.IndexFunc(atts, func(a Attachment) bool { return a.ID == attachmentID })
		if j < 0 {
			return atts, false
		}
		if qty <= 0 {
			return slices.Delete(atts, j, j+1), true
		}
		atts[j].Quantity = qty
		return atts, true
	}

	var found bool
	if line.Drivers, found = update(line.Drivers); found {
		return out, nil
	}
	if line.Accessories, found = update(line.Accessories); found {
		return out, nil
	}
	return ws, &NotFoundError{Entity: "attachment", ID: attachmentID}
}

// WithoutLine removes a selection line and all of its attachments.
func (ws WorkingSet) WithoutLine(lineID string) (WorkingSet, error) {
	i := ws.lineIndex(lineID)
	if i < 0 {
		return ws, &NotFoundError{Entity: "selection line", ID: lineID}
	}
	out := ws.Clone()
	out.Lines = slices.Delete(out.Lines, i, i+1)
	return out, nil
}

// Totals sums unit price × quantity per kind. No margin is applied.
func (ws WorkingSet) Totals() pricing.Totals {
	product, driver, accessory := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range ws.Lines {
		product = product.Add(pricing.LineTotal(l.Product.UnitPrice, l.Quantity))
		for _, a := range l.Drivers {
			driver = driver.Add(pricing.LineTotal(a.Item.UnitPrice, a.Quantity))
		}
		for _, a := range l.Accessories {
			accessory = accessory.Add(pricing.LineTotal(a.Item.UnitPrice, a.Quantity))
		}
	}
	return pricing.NewTotals(product, driver, accessory)
}

// WorkingSetStore keeps working sets between requests. Loading a scope that
// was never saved returns an empty working set, not an error.
type WorkingSetStore interface {
	LoadWorkingSet(ctx context.Context, scope ScopeKey) (WorkingSet, error)
	SaveWorkingSet(ctx context.Context, ws WorkingSet) error
	ListWorkingSets(ctx context.Context, projectID string) ([]WorkingSet, error)
}

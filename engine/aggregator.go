package engine

import (
	"context"
	"fmt"

	"lightingboq/pricing"
)

// mutate runs fn on the scope's working set under the project lock and saves
// the result only when fn succeeds.
func (e *Engine) mutate(ctx context.Context, scope ScopeKey, fn func(WorkingSet) (WorkingSet, error)) (WorkingSet, error) {
	if err := scope.Check(""); err != nil {
		return WorkingSet{}, err
	}
	unlock, err := e.lockProject(ctx, scope.ProjectID)
	if err != nil {
		return WorkingSet{}, err
	}
	defer unlock()

	if err := e.checkScope(ctx, scope); err != nil {
		return WorkingSet{}, err
	}
	ws, err := e.sets.LoadWorkingSet(ctx, scope)
	if err != nil {
		return WorkingSet{}, fmt.Errorf("load working set %s: %w", scope, err)
	}
	next, err := fn(ws)
	if err != nil {
		return WorkingSet{}, err
	}
	if err := ctx.Err(); err != nil {
		return WorkingSet{}, err
	}
	if err := e.sets.SaveWorkingSet(ctx, next); err != nil {
		return WorkingSet{}, fmt.Errorf("save working set %s: %w", scope, err)
	}
	return next, nil
}

// AddProduct appends a selection line for productID to the scope's working set.
func (e *Engine) AddProduct(ctx context.Context, scope ScopeKey, productID string, qty int) (SelectionLine, error) {
	if qty < 1 {
		return SelectionLine{}, &InvalidQuantityError{Quantity: qty}
	}
	var line SelectionLine
	_, err := e.mutate(ctx, scope, func(ws WorkingSet) (WorkingSet, error) {
		product, err := e.fresh.GetProduct(ctx, productID)
		if err != nil {
			return ws, err
		}
		next, l, err := ws.WithProduct(product, qty)
		line = l
		return next, err
	})
	return line, err
}

func (e *Engine) AttachDriver(ctx context.Context, scope ScopeKey, lineID, driverID string, qty int) (Attachment, error) {
	return e.attach(ctx, scope, lineID, KindDriver, driverID, qty)
}

func (e *Engine) AttachAccessory(ctx context.Context, scope ScopeKey, lineID, accessoryID string, qty int) (Attachment, error) {
	return e.attach(ctx, scope, lineID, KindAccessory, accessoryID, qty)
}

func (e *Engine) attach(ctx context.Context, scope ScopeKey, lineID string, kind Kind, itemID string, qty int) (Attachment, error) {
	if qty < 1 {
		return Attachment{}, &InvalidQuantityError{Quantity: qty}
	}
	var att Attachment
	_, err := e.mutate(ctx, scope, func(ws WorkingSet) (WorkingSet, error) {
		line, err := ws.Line(lineID)
		if err != nil {
			return ws, err
		}
		var item CatalogItem
		if kind == KindDriver {
			item, err = e.fresh.GetDriver(ctx, itemID)
		} else {
			item, err = e.fresh.GetAccessory(ctx, itemID)
		}
		if err != nil {
			return ws, err
		}
		if err := e.checker.CheckCompatible(ctx, line.Product.ID, kind, itemID); err != nil {
			return ws, err
		}
		next, a, err := ws.attach(lineID, item, qty)
		att = a
		return next, err
	})
	return att, err
}

// UpdateQuantity sets the quantity of a product line (empty attachmentID)
// or of one attachment. Attachments set to zero or below are removed.
func (e *Engine) UpdateQuantity(ctx context.Context, scope ScopeKey, lineID, attachmentID string, qty int) (WorkingSet, error) {
	return e.mutate(ctx, scope, func(ws WorkingSet) (WorkingSet, error) {
		return ws.WithQuantity(lineID, attachmentID, qty)
	})
}

func (e *Engine) RemoveLine(ctx context.Context, scope ScopeKey, lineID string) (WorkingSet, error) {
	return e.mutate(ctx, scope, func(ws WorkingSet) (WorkingSet, error) {
		return ws.WithoutLine(lineID)
	})
}

// WorkingSet returns the current selection of a scope. A scope that was
// never opened yields an empty working set.
func (e *Engine) WorkingSet(ctx context.Context, scope ScopeKey) (WorkingSet, error) {
	if err := e.checkScope(ctx, scope); err != nil {
		return WorkingSet{}, err
	}
	ws, err := e.sets.LoadWorkingSet(ctx, scope)
	if err != nil {
		return WorkingSet{}, fmt.Errorf("load working set %s: %w", scope, err)
	}
	return ws, nil
}

// ComputeTotals returns the unmargined per-kind costs of a scope.
func (e *Engine) ComputeTotals(ctx context.Context, scope ScopeKey) (pricing.Totals, error) {
	ws, err := e.WorkingSet(ctx, scope)
	if err != nil {
		return pricing.Totals{}, err
	}
	return ws.Totals(), nil
}

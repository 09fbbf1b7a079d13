// Package views renders the HTMX fragments returned to hx-request callers.
// Components are plain templ.ComponentFunc values so they can be mixed with
// generated templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"lightingboq/engine"
	"lightingboq/pricing"
	"lightingboq/services"
)

// htmlWriter accumulates the first write error so fragments can be written
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func money(symbol string, d decimal.Decimal) string {
	return templ.EscapeString(services.FormatMoney(symbol, d))
}

// WorkingSetPanel lists the selection lines of one scope with their
// attachments and the unmargined totals.
func WorkingSetPanel(ws engine.WorkingSet, totals pricing.Totals, symbol string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="working-set" data-scope="%s">`, templ.EscapeString(ws.Scope.String()))
		if ws.IsEmpty() {
			h.raw(`<p class="empty">No products configured for this scope yet.</p>`)
		} else {
			h.raw(`<table class="working-set"><thead><tr><th>Item</th><th>Qty</th><th>Unit price</th><th>Amount</th></tr></thead><tbody>`)
			for _, l := range ws.Lines {
				h.printf(`<tr class="line" data-line-id="%s"><td>`, templ.EscapeString(l.ID))
				h.text(l.Product.DisplayName())
				h.printf(`</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
					l.Quantity, money(symbol, l.Product.UnitPrice), money(symbol, pricing.LineTotal(l.Product.UnitPrice, l.Quantity)))
				for _, a := range append(append([]engine.Attachment{}, l.Drivers...), l.Accessories...) {
					h.printf(`<tr class="attachment %s" data-attachment-id="%s"><td>`,
						templ.EscapeString(strings.ToLower(string(a.Item.Kind))), templ.EscapeString(a.ID))
					h.text(a.Item.DisplayName())
					h.printf(`</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
						a.Quantity, money(symbol, a.Item.UnitPrice), money(symbol, pricing.LineTotal(a.Item.UnitPrice, a.Quantity)))
				}
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`<dl class="totals">`)
		h.printf(`<dt>Luminaires</dt><dd>%s</dd>`, money(symbol, totals.ProductCost))
		h.printf(`<dt>Drivers</dt><dd>%s</dd>`, money(symbol, totals.DriverCost))
		h.printf(`<dt>Accessories</dt><dd>%s</dd>`, money(symbol, totals.AccessoryCost))
		h.printf(`<dt>Total</dt><dd class="grand-total">%s</dd>`, money(symbol, totals.GrandTotal))
		h.raw(`</dl></section>`)
		return h.err
	})
}

// VersionSummary shows a version grouped by kind with its margin and totals.
func VersionSummary(v engine.BOQVersion, s engine.Summary, symbol string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<section id="boq-version" data-version="%d">`, v.Number)
		h.printf(`<h2>Version %d <span class="badge status-%s">%s</span></h2>`,
			v.Number, templ.EscapeString(string(v.Status)), templ.EscapeString(string(v.Status)))
		for _, kind := range engine.Kinds {
			g := s.Group(kind)
			h.printf(`<h3>%s <small>(%d)</small></h3>`, templ.EscapeString(kind.Label()), g.Count)
			if g.Count == 0 {
				h.raw(`<p class="empty">None</p>`)
				continue
			}
			h.raw(`<table><tbody>`)
			for _, it := range g.Items {
				h.raw(`<tr><td>`)
				h.text(it.Code + " - " + it.Name)
				h.raw(`</td><td>`)
				h.text(it.Scope)
				h.printf(`</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
					it.Quantity, money(symbol, it.UnitPrice), money(symbol, it.Total))
			}
			h.printf(`</tbody><tfoot><tr><td colspan="4">Total</td><td>%s</td></tr></tfoot></table>`, money(symbol, g.TotalAmount))
		}
		h.raw(`<dl class="totals">`)
		h.printf(`<dt>Subtotal</dt><dd>%s</dd>`, money(symbol, s.Subtotal))
		h.printf(`<dt>Margin (%s)</dt><dd>%s</dd>`, templ.EscapeString(services.FormatPercent(s.MarginPercent)), money(symbol, s.MarginAmount))
		h.printf(`<dt>Grand total</dt><dd class="grand-total">%s</dd>`, money(symbol, s.GrandTotal))
		h.raw(`</dl>`)
		if !v.IsApproved() {
			h.printf(`<form hx-post="/api/projects/%s/versions/%d/approve" hx-target="#boq-version" hx-swap="outerHTML"><button type="submit">Approve</button></form>`,
				templ.EscapeString(v.ProjectID), v.Number)
		}
		h.raw(`</section>`)
		return h.err
	})
}

// VersionList renders the version history of a project, newest first.
func VersionList(versions []engine.BOQVersion, symbol string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<ul id="boq-versions">`)
		for i := len(versions) - 1; i >= 0; i-- {
			v := versions[i]
			h.printf(`<li data-version="%d">V%d <span class="badge status-%s">%s</span> %s</li>`,
				v.Number, v.Number, templ.EscapeString(string(v.Status)), templ.EscapeString(string(v.Status)), money(symbol, v.GrandTotal))
		}
		if len(versions) == 0 {
			h.raw(`<li class="empty">No BOQ versions generated yet.</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// CompatibleOptions renders <option> groups for the attach dropdowns.
func CompatibleOptions(c engine.Compatible) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		group := func(label string, items []engine.CatalogItem) {
			h.printf(`<optgroup label="%s">`, templ.EscapeString(label))
			for _, it := range items {
				h.printf(`<option value="%s">`, templ.EscapeString(it.ID))
				h.text(it.DisplayName())
				h.raw(`</option>`)
			}
			h.raw(`</optgroup>`)
		}
		group(engine.KindDriver.Label(), c.Drivers)
		group(engine.KindAccessory.Label(), c.Accessories)
		return h.err
	})
}

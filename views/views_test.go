package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"lightingboq/engine"
	"lightingboq/testhelpers"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleWorkingSet(t *testing.T) engine.WorkingSet {
	t.Helper()
	ws, line, err := engine.NewWorkingSet(engine.ProjectScope("p1")).WithProduct(engine.CatalogItem{
		ID: "A", Kind: engine.KindProduct, Code: "LP-600", Name: "Panel <40W>", UnitPrice: d("100"),
		CompatibleDriverIDs: []string{"D"},
	}, 2)
	if err != nil {
		t.Fatal(err)
	}
	ws, _, err = ws.WithAttachment(line.ID, engine.CatalogItem{
		ID: "D", Kind: engine.KindDriver, Code: "CC-700", Name: "Driver", UnitPrice: d("20"),
	}, 2)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestWorkingSetPanel(t *testing.T) {
	ws := sampleWorkingSet(t)
	body := render(t, WorkingSetPanel(ws, ws.Totals(), "₹"))

	testhelpers.AssertHTMLContains(t, body,
		`data-scope="p1"`,
		"LP-600 - Panel &lt;40W&gt;",
		`class="attachment driver"`,
		"CC-700 - Driver",
		"₹200.00",
		"₹40.00",
		`<dd class="grand-total">₹240.00</dd>`,
	)
	if strings.Contains(body, "<40W>") {
		t.Error("product name was not escaped")
	}
}

func TestWorkingSetPanel_Empty(t *testing.T) {
	ws := engine.NewWorkingSet(engine.AreaScope("p1", "a1"))
	body := render(t, WorkingSetPanel(ws, ws.Totals(), "₹"))
	testhelpers.AssertHTMLContains(t, body, "No products configured", "₹0.00")
}

func sampleVersion() engine.BOQVersion {
	return engine.BOQVersion{
		ProjectID: "p1",
		Number:    2,
		Status:    engine.StatusDraft,
		LineItems: []engine.BOQLineItem{
			{SortOrder: 1, Kind: engine.KindProduct, Code: "A", Name: "Panel", Scope: "Lobby", Quantity: 2, UnitPrice: d("100"), Total: d("200")},
			{SortOrder: 2, Kind: engine.KindAccessory, Code: "X", Name: "Kit", Scope: "Lobby", Quantity: 1, UnitPrice: d("5"), Total: d("5")},
		},
		Subtotal:      d("205"),
		MarginPercent: d("10"),
		GrandTotal:    d("225.5"),
	}
}

func TestVersionSummary(t *testing.T) {
	tests := []struct {
		name        string
		status      engine.Status
		wantApprove bool
	}{
		{"draft", engine.StatusDraft, true},
		{"approved", engine.StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sampleVersion()
			v.Status = tt.status
			body := render(t, VersionSummary(v, engine.GroupByKind(v), "₹"))

			testhelpers.AssertHTMLContains(t, body,
				`data-version="2"`,
				"Luminaires <small>(1)</small>",
				"Drivers <small>(0)</small>",
				"Accessories <small>(1)</small>",
				"Margin (10%)",
				"₹20.50",
				"₹225.50",
			)
			hasApprove := strings.Contains(body, "/versions/2/approve")
			if hasApprove != tt.wantApprove {
				t.Errorf("approve form present = %v, want %v", hasApprove, tt.wantApprove)
			}
		})
	}
}

func TestVersionList(t *testing.T) {
	v1 := sampleVersion()
	v1.Number = 1
	v1.Status = engine.StatusApproved
	v2 := sampleVersion()

	body := render(t, VersionList([]engine.BOQVersion{v1, v2}, "₹"))
	if strings.Index(body, `data-version="2"`) > strings.Index(body, `data-version="1"`) {
		t.Error("expected newest version first")
	}

	empty := render(t, VersionList(nil, "₹"))
	testhelpers.AssertHTMLContains(t, empty, "No BOQ versions generated yet.")
}

func TestCompatibleOptions(t *testing.T) {
	body := render(t, CompatibleOptions(engine.Compatible{
		Drivers:     []engine.CatalogItem{{ID: "d1", Kind: engine.KindDriver, Code: "CC-700", Name: "Driver"}},
		Accessories: []engine.CatalogItem{},
	}))
	testhelpers.AssertHTMLContains(t, body,
		`<optgroup label="Drivers"><option value="d1">CC-700 - Driver</option></optgroup>`,
		`<optgroup label="Accessories"></optgroup>`,
	)
}

package stores_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lightingboq/engine"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testWorkingSetStore runs the behaviour every engine.WorkingSetStore must
// share.
func testWorkingSetStore(t *testing.T, store engine.WorkingSetStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing_scope_is_empty", func(t *testing.T) {
		scope := engine.AreaScope("p-missing", "a1")
		ws, err := store.LoadWorkingSet(ctx, scope)
		if err != nil {
			t.Fatalf("LoadWorkingSet error: %v", err)
		}
		if !ws.IsEmpty() || ws.Scope != scope {
			t.Errorf("got %+v, want empty set for %s", ws, scope)
		}
	})

	t.Run("round_trip", func(t *testing.T) {
		scope := engine.ProjectScope("p-round")
		ws, _, err := engine.NewWorkingSet(scope).WithProduct(engine.CatalogItem{
			ID: "A", Kind: engine.KindProduct, Code: "A", Name: "Panel", UnitPrice: d("100.50"),
			CompatibleDriverIDs: []string{"D"},
		}, 2)
		if err != nil {
			t.Fatalf("WithProduct error: %v", err)
		}
		ws, _, err = ws.WithAttachment(ws.Lines[0].ID, engine.CatalogItem{
			ID: "D", Kind: engine.KindDriver, Code: "D", Name: "Driver", UnitPrice: d("20"),
		}, 3)
		if err != nil {
			t.Fatalf("WithAttachment error: %v", err)
		}
		if err := store.SaveWorkingSet(ctx, ws); err != nil {
			t.Fatalf("SaveWorkingSet error: %v", err)
		}

		got, err := store.LoadWorkingSet(ctx, scope)
		if err != nil {
			t.Fatalf("LoadWorkingSet error: %v", err)
		}
		if len(got.Lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(got.Lines))
		}
		line := got.Lines[0]
		if line.ID != ws.Lines[0].ID || line.Quantity != 2 || !line.Product.UnitPrice.Equal(d("100.50")) {
			t.Errorf("line = %+v", line)
		}
		if len(line.Drivers) != 1 || line.Drivers[0].Quantity != 3 {
			t.Errorf("drivers = %+v", line.Drivers)
		}
		if !got.Totals().GrandTotal.Equal(d("261")) {
			t.Errorf("total = %s, want 261", got.Totals().GrandTotal)
		}
	})

	t.Run("list_by_project", func(t *testing.T) {
		for _, scope := range []engine.ScopeKey{
			engine.AreaScope("p-list", "a2"),
			engine.AreaScope("p-list", "a1"),
			engine.AreaScope("p-other", "a1"),
		} {
			if err := store.SaveWorkingSet(ctx, engine.NewWorkingSet(scope)); err != nil {
				t.Fatalf("SaveWorkingSet error: %v", err)
			}
		}
		sets, err := store.ListWorkingSets(ctx, "p-list")
		if err != nil {
			t.Fatalf("ListWorkingSets error: %v", err)
		}
		if len(sets) != 2 {
			t.Fatalf("got %d sets, want 2", len(sets))
		}
		for _, ws := range sets {
			if ws.Scope.ProjectID != "p-list" {
				t.Errorf("foreign scope %s listed", ws.Scope)
			}
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		scope := engine.ProjectScope("p-over")
		ws, _, _ := engine.NewWorkingSet(scope).WithProduct(engine.CatalogItem{ID: "A", Kind: engine.KindProduct, UnitPrice: d("1")}, 1)
		if err := store.SaveWorkingSet(ctx, ws); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveWorkingSet(ctx, engine.NewWorkingSet(scope)); err != nil {
			t.Fatal(err)
		}
		got, _ := store.LoadWorkingSet(ctx, scope)
		if !got.IsEmpty() {
			t.Errorf("expected overwritten set to be empty, got %d lines", len(got.Lines))
		}
		sets, _ := store.ListWorkingSets(ctx, "p-over")
		if len(sets) != 1 {
			t.Errorf("got %d sets after overwrite, want 1", len(sets))
		}
	})
}

func sampleVersion(projectID string, number int) engine.BOQVersion {
	return engine.BOQVersion{
		ProjectID: projectID,
		Number:    number,
		Status:    engine.StatusDraft,
		LineItems: []engine.BOQLineItem{
			{SortOrder: 1, Kind: engine.KindProduct, ItemID: "A", Code: "A", Name: "Panel", Scope: "Lobby", Quantity: 2, UnitPrice: d("100"), Total: d("200")},
			{SortOrder: 2, Kind: engine.KindDriver, ItemID: "D", Code: "D", Name: "Driver", Scope: "Lobby", Quantity: 2, UnitPrice: d("20"), Total: d("40")},
			{SortOrder: 3, Kind: engine.KindAccessory, ItemID: "X", Code: "X", Name: "Kit", Scope: "Lobby", Quantity: 1, UnitPrice: d("5"), Total: d("5")},
		},
		Subtotal:      d("245"),
		MarginPercent: d("0"),
		GrandTotal:    d("245"),
		CreatedAt:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

// testVersionStore runs the behaviour every engine.VersionStore must share.
// projectID must name a project the store accepts.
func testVersionStore(t *testing.T, store engine.VersionStore, projectID string) {
	t.Helper()
	ctx := context.Background()

	latest, err := store.LoadLatest(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadLatest error: %v", err)
	}
	if latest != nil {
		t.Fatalf("LoadLatest on empty project = %+v, want nil", latest)
	}

	v1, err := store.SaveVersion(ctx, sampleVersion(projectID, 1))
	if err != nil {
		t.Fatalf("SaveVersion(1) error: %v", err)
	}
	if v1.ID == "" {
		t.Fatal("saved version has no id")
	}

	t.Run("line_items_keep_order", func(t *testing.T) {
		versions, err := store.LoadVersions(ctx, projectID)
		if err != nil {
			t.Fatalf("LoadVersions error: %v", err)
		}
		if len(versions) != 1 {
			t.Fatalf("got %d versions, want 1", len(versions))
		}
		items := versions[0].LineItems
		if len(items) != 3 {
			t.Fatalf("got %d line items, want 3", len(items))
		}
		wantKinds := []engine.Kind{engine.KindProduct, engine.KindDriver, engine.KindAccessory}
		for i, it := range items {
			if it.SortOrder != i+1 || it.Kind != wantKinds[i] {
				t.Errorf("item %d = %+v", i, it)
			}
		}
		if !items[0].Total.Equal(d("200")) || !versions[0].Subtotal.Equal(d("245")) {
			t.Errorf("amounts not preserved: %+v", versions[0])
		}
	})

	t.Run("duplicate_number_rejected", func(t *testing.T) {
		_, err := store.SaveVersion(ctx, sampleVersion(projectID, 1))
		if !engine.IsLocked(err) {
			t.Errorf("expected VersionLockedError, got %v", err)
		}
	})

	t.Run("draft_update", func(t *testing.T) {
		upd := v1
		upd.MarginPercent = d("10")
		upd.GrandTotal = d("269.5")
		got, err := store.SaveVersion(ctx, upd)
		if err != nil {
			t.Fatalf("SaveVersion update error: %v", err)
		}
		if !got.GrandTotal.Equal(d("269.5")) || !got.MarginPercent.Equal(d("10")) {
			t.Errorf("got %+v", got)
		}
		if len(got.LineItems) != 3 {
			t.Errorf("line items changed on update: %d", len(got.LineItems))
		}
	})

	t.Run("approved_is_final", func(t *testing.T) {
		cur, _ := store.LoadLatest(ctx, projectID)
		at := time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC)
		cur.Status = engine.StatusApproved
		cur.ApprovedAt = &at
		approved, err := store.SaveVersion(ctx, *cur)
		if err != nil {
			t.Fatalf("approve error: %v", err)
		}
		if !approved.IsApproved() || approved.ApprovedAt == nil {
			t.Fatalf("got %+v", approved)
		}

		approved.MarginPercent = d("20")
		approved.GrandTotal = d("294")
		if _, err := store.SaveVersion(ctx, approved); !engine.IsLocked(err) {
			t.Fatalf("expected VersionLockedError, got %v", err)
		}
		again, _ := store.LoadLatest(ctx, projectID)
		if !again.GrandTotal.Equal(d("269.5")) {
			t.Errorf("approved grand total changed to %s", again.GrandTotal)
		}
	})

	t.Run("latest_is_highest_number", func(t *testing.T) {
		if _, err := store.SaveVersion(ctx, sampleVersion(projectID, 2)); err != nil {
			t.Fatalf("SaveVersion(2) error: %v", err)
		}
		latest, err := store.LoadLatest(ctx, projectID)
		if err != nil {
			t.Fatalf("LoadLatest error: %v", err)
		}
		if latest == nil || latest.Number != 2 || latest.Status != engine.StatusDraft {
			t.Errorf("latest = %+v", latest)
		}
	})

	t.Run("unknown_id", func(t *testing.T) {
		v := sampleVersion(projectID, 9)
		v.ID = "does-not-exist"
		if _, err := store.SaveVersion(ctx, v); !engine.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

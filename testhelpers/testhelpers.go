// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightingboq/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

func save(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}
	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}
	return record
}

// CreateTestProject creates an active project with the given inquiry mode.
func CreateTestProject(t *testing.T, app core.App, name, inquiryMode string) *core.Record {
	t.Helper()
	return save(t, app, "projects", map[string]any{
		"name":             name,
		"status":           "active",
		"reference_number": "REF-" + strings.ToUpper(strings.ReplaceAll(name, " ", "")),
		"inquiry_mode":     inquiryMode,
	})
}

func CreateTestArea(t *testing.T, app core.App, projectID, name string) *core.Record {
	t.Helper()
	return save(t, app, "areas", map[string]any{"project": projectID, "name": name, "sort_order": 1})
}

func CreateTestSubArea(t *testing.T, app core.App, areaID, name string) *core.Record {
	t.Helper()
	return save(t, app, "sub_areas", map[string]any{"area": areaID, "name": name, "sort_order": 1})
}

// CreateTestDriver creates a driver catalog record.
func CreateTestDriver(t *testing.T, app core.App, code string, price float64) *core.Record {
	t.Helper()
	return save(t, app, "drivers", map[string]any{"code": code, "name": "Driver " + code, "unit_price": price})
}

// CreateTestAccessory creates an accessory catalog record.
func CreateTestAccessory(t *testing.T, app core.App, code string, price float64) *core.Record {
	t.Helper()
	return save(t, app, "accessories", map[string]any{"code": code, "name": "Accessory " + code, "unit_price": price})
}

// CreateTestProduct creates a product linked to the given driver and
// accessory record ids.
func CreateTestProduct(t *testing.T, app core.App, code string, price float64, driverIDs, accessoryIDs []string) *core.Record {
	t.Helper()
	return save(t, app, "products", map[string]any{
		"code":                   code,
		"name":                   "Product " + code,
		"unit_price":             price,
		"compatible_drivers":     driverIDs,
		"compatible_accessories": accessoryIDs,
	})
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

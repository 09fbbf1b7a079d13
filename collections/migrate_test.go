package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/collections"
	"lightingboq/testhelpers"
)

func createLegacyProject(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()
	col, _ := app.FindCollectionByNameOrId("projects")
	r := core.NewRecord(col)
	r.Set("name", name)
	r.Set("status", "active")
	if err := app.Save(r); err != nil {
		t.Fatalf("save legacy project: %v", err)
	}
	return r
}

func TestMigrateProjectInquiryModes_Backfills(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	legacy := createLegacyProject(t, app, "Old Project")
	modern := testhelpers.CreateTestProject(t, app, "New Project", "area")

	if err := collections.MigrateProjectInquiryModes(app); err != nil {
		t.Fatalf("MigrateProjectInquiryModes() error: %v", err)
	}

	got, _ := app.FindRecordById("projects", legacy.Id)
	if got.GetString("inquiry_mode") != "project" {
		t.Errorf("legacy inquiry_mode = %q, want project", got.GetString("inquiry_mode"))
	}
	got, _ = app.FindRecordById("projects", modern.Id)
	if got.GetString("inquiry_mode") != "area" {
		t.Errorf("existing inquiry_mode changed to %q", got.GetString("inquiry_mode"))
	}
}

func TestMigrateProjectInquiryModes_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	createLegacyProject(t, app, "Old Project")

	for i := 0; i < 2; i++ {
		if err := collections.MigrateProjectInquiryModes(app); err != nil {
			t.Fatalf("run %d error: %v", i+1, err)
		}
	}
}

func TestMigrateProjectInquiryModes_NoProjects(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.MigrateProjectInquiryModes(app); err != nil {
		t.Fatalf("MigrateProjectInquiryModes() error: %v", err)
	}
}

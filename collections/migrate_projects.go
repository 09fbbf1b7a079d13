package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// MigrateProjectInquiryModes sets inquiry_mode = "project" on projects
// created before the field existed. Safe to call on every startup; returns
// early if nothing to migrate.
func MigrateProjectInquiryModes(app core.App) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("migrate: could not find projects collection: %w", err)
	}

	legacy, err := app.FindRecordsByFilter(projectsCol, "inquiry_mode = ''", "", 0, 0)
	if err != nil {
		return fmt.Errorf("migrate: could not query projects: %w", err)
	}
	if len(legacy) == 0 {
		return nil
	}

	log.Printf("migrate: found %d project(s) without an inquiry mode", len(legacy))

	migrated := 0
	for _, p := range legacy {
		p.Set("inquiry_mode", "project")
		if err := app.Save(p); err != nil {
			log.Printf("migrate: failed to set inquiry mode on project %q (%s): %v", p.GetString("name"), p.Id, err)
			continue
		}
		migrated++
	}

	log.Printf("migrate: inquiry mode backfill complete (%d/%d)", migrated, len(legacy))
	return nil
}

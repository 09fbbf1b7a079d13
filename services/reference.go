package services

import (
	"fmt"
	"time"
)

// GetFiscalYear returns the Indian fiscal year string for a given date.
// Indian fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

// VersionReference builds the document reference printed on BOQ exports.
// Format: BOQ-{project_ref}-{fiscal_year}-V{number}, where project_ref falls
// back to the project id and fiscal_year is taken from the version's
// creation time.
func VersionReference(projectRef, projectID string, number int, createdAt time.Time) string {
	if projectRef == "" {
		projectRef = projectID
	}
	return fmt.Sprintf("BOQ-%s-%s-V%02d", projectRef, GetFiscalYear(createdAt), number)
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
	"lightingboq/services"
)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// exportFilename names a download after the version reference, e.g.
// "BOQ-TPB-24-26-27-V02.pdf".
func exportFilename(project *engine.Project, v engine.BOQVersion, format engine.ExportFormat) string {
	ref := ""
	if project != nil {
		ref = project.ReferenceNumber
	}
	return sanitizeFilename(services.VersionReference(ref, v.ProjectID, v.Number, v.CreatedAt)) + "." + string(format)
}

// HandleVersionExport renders a version as PDF or Excel. Any status may be
// exported; exporting never changes the version.
// Route: GET /api/projects/{projectId}/versions/{number}/export?format=pdf|xlsx
func HandleVersionExport(eng *engine.Engine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n, err := versionNumber(e)
		if err != nil {
			return respondError(e, "export", err)
		}
		rawFormat := e.Request.URL.Query().Get("format")
		if rawFormat == "" {
			rawFormat = string(engine.FormatPDF)
		}
		format, err := engine.ParseExportFormat(rawFormat)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		projectID := e.Request.PathValue("projectId")
		v, err := eng.Version(e.Request.Context(), projectID, n)
		if err != nil {
			return respondError(e, "export", err)
		}
		body, err := eng.Export(e.Request.Context(), projectID, n, format)
		if err != nil {
			return respondError(e, "export", err)
		}

		e.Response.Header().Set("Content-Type", format.ContentType())
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, exportFilename(GetProject(e.Request), v, format)))
		e.Response.Write(body)
		return nil
	}
}

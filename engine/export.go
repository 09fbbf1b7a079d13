package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ExportFormat selects the renderer output.
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatExcel ExportFormat = "xlsx"
)

var ErrNoRenderer = errors.New("no export renderer configured")

// ParseExportFormat accepts "pdf", "xlsx" and "excel", case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the rendered document.
func (f ExportFormat) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportView is everything a renderer receives: the owning project, the
// frozen version and its grouped summary.
type ExportView struct {
	Project Project
	Version BOQVersion
	Summary Summary
}

// ExportRenderer turns a BOQ version into a document. Implementations must
// not modify the view.
type ExportRenderer interface {
	RenderPDF(view ExportView) ([]byte, error)
	RenderExcel(view ExportView) ([]byte, error)
}

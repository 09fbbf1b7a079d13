package handlers

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"lightingboq/engine"
	"lightingboq/services"
	"lightingboq/views"
)

type marginRequest struct {
	Percent *decimal.Decimal `json:"percent"`
}

func (r *marginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Percent, validation.NotNil),
	)
}

// versionResponse adds the printable reference number to a version.
type versionResponse struct {
	engine.BOQVersion
	Reference string `json:"reference"`
}

func withReference(e *core.RequestEvent, v engine.BOQVersion) versionResponse {
	ref := ""
	if p := GetProject(e.Request); p != nil {
		ref = p.ReferenceNumber
	}
	return versionResponse{
		BOQVersion: v,
		Reference:  services.VersionReference(ref, v.ProjectID, v.Number, v.CreatedAt),
	}
}

func renderVersion(e *core.RequestEvent, status int, v engine.BOQVersion, symbol string) error {
	return respond(e, status, withReference(e, v), views.VersionSummary(v, engine.GroupByKind(v), symbol))
}

// HandleGenerate freezes the project's working sets into a new version.
// Route: POST /api/projects/{projectId}/versions
func HandleGenerate(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		v, err := eng.Generate(e.Request.Context(), e.Request.PathValue("projectId"))
		if err != nil {
			return respondError(e, "generate", err)
		}
		if isHTMX(e) {
			SetToast(e, ToastSuccess, fmt.Sprintf("BOQ version %d generated", v.Number))
		}
		return renderVersion(e, http.StatusCreated, v, symbol)
	}
}

// HandleVersionList lists every version of a project in number order.
// Route: GET /api/projects/{projectId}/versions
func HandleVersionList(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versions, err := eng.Versions(e.Request.Context(), e.Request.PathValue("projectId"))
		if err != nil {
			return respondError(e, "version_list", err)
		}
		out := make([]versionResponse, 0, len(versions))
		for _, v := range versions {
			out = append(out, withReference(e, v))
		}
		return respond(e, http.StatusOK, out, views.VersionList(versions, symbol))
	}
}

// HandleVersionView returns one version with its frozen line items.
// Route: GET /api/projects/{projectId}/versions/{number}
func HandleVersionView(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n, err := versionNumber(e)
		if err != nil {
			return respondError(e, "version_view", err)
		}
		v, err := eng.Version(e.Request.Context(), e.Request.PathValue("projectId"), n)
		if err != nil {
			return respondError(e, "version_view", err)
		}
		return renderVersion(e, http.StatusOK, v, symbol)
	}
}

// HandleVersionSummary returns the line items grouped by kind.
// Route: GET /api/projects/{projectId}/versions/{number}/summary
func HandleVersionSummary(eng *engine.Engine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n, err := versionNumber(e)
		if err != nil {
			return respondError(e, "version_summary", err)
		}
		s, err := eng.Summary(e.Request.Context(), e.Request.PathValue("projectId"), n)
		if err != nil {
			return respondError(e, "version_summary", err)
		}
		return e.JSON(http.StatusOK, s)
	}
}

// HandleApplyMargin sets the margin of the latest DRAFT version.
// Route: POST /api/projects/{projectId}/versions/{number}/margin
func HandleApplyMargin(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n, err := versionNumber(e)
		if err != nil {
			return respondError(e, "apply_margin", err)
		}
		var req marginRequest
		if err := bindAndValidate(e, &req); err != nil {
			return respondError(e, "apply_margin", err)
		}
		v, err := eng.ApplyMargin(e.Request.Context(), e.Request.PathValue("projectId"), n, *req.Percent)
		if err != nil {
			return respondError(e, "apply_margin", err)
		}
		if isHTMX(e) {
			SetToast(e, ToastSuccess, "Margin set to "+services.FormatPercent(v.MarginPercent))
		}
		return renderVersion(e, http.StatusOK, v, symbol)
	}
}

// HandleApprove locks the latest DRAFT version.
// Route: POST /api/projects/{projectId}/versions/{number}/approve
func HandleApprove(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		n, err := versionNumber(e)
		if err != nil {
			return respondError(e, "approve", err)
		}
		v, err := eng.Approve(e.Request.Context(), e.Request.PathValue("projectId"), n)
		if err != nil {
			return respondError(e, "approve", err)
		}
		if isHTMX(e) {
			SetToast(e, ToastSuccess, fmt.Sprintf("BOQ version %d approved", v.Number))
		}
		return renderVersion(e, http.StatusOK, v, symbol)
	}
}

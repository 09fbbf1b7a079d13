package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
	"lightingboq/views"
)

type addProductRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (r *addProductRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProductID, validation.Required),
	)
}

type attachRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (r *attachRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ItemID, validation.Required),
	)
}

// updateQuantityRequest targets the product line itself when AttachmentID
// is empty.
type updateQuantityRequest struct {
	AttachmentID string `json:"attachmentId"`
	Quantity     *int   `json:"quantity"`
}

func (r *updateQuantityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Quantity, validation.NotNil),
	)
}

// panel reloads the working set of scope after a mutation so HTMX callers
// can swap the whole panel.
func panel(e *core.RequestEvent, eng *engine.Engine, scope engine.ScopeKey) (*engine.WorkingSet, error) {
	ws, err := eng.WorkingSet(e.Request.Context(), scope)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// HandleWorkingSet returns the working set of the requested scope.
// Route: GET /api/projects/{projectId}/working-set
func HandleWorkingSet(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ws, err := eng.WorkingSet(e.Request.Context(), scopeFromRequest(e))
		if err != nil {
			return respondError(e, "working_set", err)
		}
		return respond(e, http.StatusOK, ws, views.WorkingSetPanel(ws, ws.Totals(), symbol))
	}
}

// HandleWorkingSetTotals returns the unmargined per-kind totals of a scope.
// Route: GET /api/projects/{projectId}/working-set/totals
func HandleWorkingSetTotals(eng *engine.Engine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		totals, err := eng.ComputeTotals(e.Request.Context(), scopeFromRequest(e))
		if err != nil {
			return respondError(e, "working_set_totals", err)
		}
		return e.JSON(http.StatusOK, totals)
	}
}

// HandleAddProduct adds a product line to the scope's working set.
// Route: POST /api/projects/{projectId}/working-set/lines
func HandleAddProduct(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req addProductRequest
		if err := bindAndValidate(e, &req); err != nil {
			return respondError(e, "add_product", err)
		}
		scope := scopeFromRequest(e)
		line, err := eng.AddProduct(e.Request.Context(), scope, req.ProductID, req.Quantity)
		if err != nil {
			return respondError(e, "add_product", err)
		}

		if !isHTMX(e) {
			return e.JSON(http.StatusCreated, line)
		}
		ws, err := panel(e, eng, scope)
		if err != nil {
			return respondError(e, "add_product", err)
		}
		SetToast(e, ToastSuccess, line.Product.DisplayName()+" added")
		return respond(e, http.StatusCreated, line, views.WorkingSetPanel(*ws, ws.Totals(), symbol))
	}
}

// HandleAttach attaches a driver or accessory to a selection line.
// Route: POST /api/projects/{projectId}/working-set/lines/{lineId}/drivers
// Route: POST /api/projects/{projectId}/working-set/lines/{lineId}/accessories
func HandleAttach(eng *engine.Engine, kind engine.Kind, symbol string) func(*core.RequestEvent) error {
	component := "attach_" + string(kind)
	return func(e *core.RequestEvent) error {
		var req attachRequest
		if err := bindAndValidate(e, &req); err != nil {
			return respondError(e, component, err)
		}
		scope := scopeFromRequest(e)
		lineID := e.Request.PathValue("lineId")

		var (
			att engine.Attachment
			err error
		)
		switch kind {
		case engine.KindDriver:
			att, err = eng.AttachDriver(e.Request.Context(), scope, lineID, req.ItemID, req.Quantity)
		case engine.KindAccessory:
			att, err = eng.AttachAccessory(e.Request.Context(), scope, lineID, req.ItemID, req.Quantity)
		default:
			err = &engine.NotFoundError{Entity: "attachment kind", ID: string(kind)}
		}
		if err != nil {
			return respondError(e, component, err)
		}

		if !isHTMX(e) {
			return e.JSON(http.StatusCreated, att)
		}
		ws, err := panel(e, eng, scope)
		if err != nil {
			return respondError(e, component, err)
		}
		return respond(e, http.StatusCreated, att, views.WorkingSetPanel(*ws, ws.Totals(), symbol))
	}
}

// HandleUpdateQuantity changes the quantity of a line or one of its
// attachments. An attachment set to zero is removed.
// Route: PATCH /api/projects/{projectId}/working-set/lines/{lineId}
func HandleUpdateQuantity(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req updateQuantityRequest
		if err := bindAndValidate(e, &req); err != nil {
			return respondError(e, "update_quantity", err)
		}
		ws, err := eng.UpdateQuantity(e.Request.Context(), scopeFromRequest(e),
			e.Request.PathValue("lineId"), req.AttachmentID, *req.Quantity)
		if err != nil {
			return respondError(e, "update_quantity", err)
		}
		return respond(e, http.StatusOK, ws, views.WorkingSetPanel(ws, ws.Totals(), symbol))
	}
}

// HandleRemoveLine removes a selection line with its attachments.
// Route: DELETE /api/projects/{projectId}/working-set/lines/{lineId}
func HandleRemoveLine(eng *engine.Engine, symbol string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ws, err := eng.RemoveLine(e.Request.Context(), scopeFromRequest(e), e.Request.PathValue("lineId"))
		if err != nil {
			return respondError(e, "remove_line", err)
		}
		if isHTMX(e) {
			SetToast(e, ToastSuccess, "Line removed")
		}
		return respond(e, http.StatusOK, ws, views.WorkingSetPanel(ws, ws.Totals(), symbol))
	}
}

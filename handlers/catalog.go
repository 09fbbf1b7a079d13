package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
	"lightingboq/views"
)

// catalogKinds maps the {kind} path segment onto catalog kinds.
var catalogKinds = map[string]engine.Kind{
	"products":    engine.KindProduct,
	"drivers":     engine.KindDriver,
	"accessories": engine.KindAccessory,
}

// HandleCatalogList lists one kind of catalog records.
// Route: GET /api/catalog/{kind}
func HandleCatalogList(eng *engine.Engine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		slug := strings.ToLower(e.Request.PathValue("kind"))
		kind, ok := catalogKinds[slug]
		if !ok {
			return respondError(e, "catalog_list", &engine.NotFoundError{Entity: "catalog kind", ID: slug})
		}
		items, err := eng.ListCatalog(e.Request.Context(), kind)
		if err != nil {
			return respondError(e, "catalog_list", err)
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleCompatible returns the drivers and accessories a product accepts.
// HTMX callers get <option> groups for the attach dropdowns.
// Route: GET /api/catalog/products/{id}/compatible
func HandleCompatible(eng *engine.Engine) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		compat, err := eng.ResolveCompatible(e.Request.Context(), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "compatible", err)
		}
		return respond(e, http.StatusOK, compat, views.CompatibleOptions(compat))
	}
}

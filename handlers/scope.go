package handlers

import (
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
)

// scopeFromRequest builds the scope key from the {projectId} path value and
// the optional area and sub_area query parameters.
func scopeFromRequest(e *core.RequestEvent) engine.ScopeKey {
	q := e.Request.URL.Query()
	return engine.ScopeKey{
		ProjectID: e.Request.PathValue("projectId"),
		AreaID:    strings.TrimSpace(q.Get("area")),
		SubAreaID: strings.TrimSpace(q.Get("sub_area")),
	}
}

// versionNumber parses the {number} path value.
func versionNumber(e *core.RequestEvent) (int, error) {
	raw := e.Request.PathValue("number")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &engine.NotFoundError{Entity: "BOQ version", ID: e.Request.PathValue("projectId") + "#" + raw}
	}
	return n, nil
}

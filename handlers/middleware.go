package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
)

type contextKey string

const ProjectKey contextKey = "project"

// GetProject extracts the project loaded by ProjectMiddleware from the
// request context.
func GetProject(r *http.Request) *engine.Project {
	if val, ok := r.Context().Value(ProjectKey).(*engine.Project); ok {
		return val
	}
	return nil
}

// ProjectMiddleware loads the project named by the {projectId} path value
// and stores it in the request context. Unknown projects end the request
// with 404 before any handler runs.
func ProjectMiddleware(dir engine.ProjectDirectory) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if projectID == "" {
			return e.Next()
		}

		project, err := dir.GetProject(e.Request.Context(), projectID)
		if err != nil {
			return respondError(e, "middleware", err)
		}

		ctx := context.WithValue(e.Request.Context(), ProjectKey, &project)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

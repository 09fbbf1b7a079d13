package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/a-h/templ"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"lightingboq/engine"
)

const internalErrorMessage = "Something went wrong. Please try again."

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var verr validation.Errors
	switch {
	case engine.IsNotFound(err):
		return http.StatusNotFound
	case engine.IsLocked(err):
		return http.StatusConflict
	case engine.IsValidation(err), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNoRenderer):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON body, or as an error toast for HTMX
// requests. Unexpected errors are logged with the component name and
// replaced by a generic message.
func respondError(e *core.RequestEvent, component string, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", component, err)
		message = internalErrorMessage
	}

	if isHTMX(e) {
		return ErrorToast(e, status, message)
	}

	body := map[string]any{"error": message}
	var verr validation.Errors
	if errors.As(err, &verr) {
		body["error"] = "Invalid request"
		body["fields"] = verr
	}
	return e.JSON(status, body)
}

// respond renders component for HTMX requests and data as JSON otherwise.
func respond(e *core.RequestEvent, status int, data any, component templ.Component) error {
	if isHTMX(e) && component != nil {
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		e.Response.WriteHeader(status)
		return component.Render(e.Request.Context(), e.Response)
	}
	return e.JSON(status, data)
}

// bindAndValidate decodes the request body into dst and runs its Validate
// method.
func bindAndValidate(e *core.RequestEvent, dst validation.Validatable) error {
	if err := e.BindBody(dst); err != nil {
		return validation.Errors{"body": validation.NewError("invalid_body", "request body could not be decoded")}
	}
	return dst.Validate()
}

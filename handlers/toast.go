package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// SetToast adds a showToast event to the HX-Trigger response header, keeping
// any events another handler already set. A short-lived flash cookie carries
// the same toast across non-HTMX redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	if cookieVal, err := json.Marshal(payload); err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // read by the toast script
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast sets an error toast and tells HTMX not to swap the response
// body into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

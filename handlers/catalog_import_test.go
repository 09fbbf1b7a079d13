package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lightingboq/services"
	"lightingboq/testhelpers"
)

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleCatalogImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	purged := 0
	handler := HandleCatalogImport(app, func() { purged++ })

	csv := "kind,code,name,unit_price,description,compatible_codes\n" +
		"DRIVER,CC-700,Driver 700mA,890,,\n" +
		"PRODUCT,LP-1200,Panel 1200,3150,,CC-700\n"
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, uploadRequest(t, "catalog.csv", csv), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)

	var result services.ImportResult
	decodeJSON(t, rec, &result)
	if result.Created != 2 || result.RolledBack {
		t.Errorf("result = %+v", result)
	}
	if purged != 1 {
		t.Errorf("onImported called %d times, want 1", purged)
	}
	if _, err := app.FindFirstRecordByData("products", "code", "LP-1200"); err != nil {
		t.Errorf("product not imported: %v", err)
	}
}

func TestHandleCatalogImport_InvalidRows(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	purged := 0
	handler := HandleCatalogImport(app, func() { purged++ })

	csv := "kind,code,name,unit_price\nDRIVER,CC-700,Driver,-3\n"
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, uploadRequest(t, "catalog.csv", csv), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertStatus(t, rec, http.StatusUnprocessableEntity)

	var result services.ValidationResult
	decodeJSON(t, rec, &result)
	if result.ErrorRows != 1 || result.Errors[0].Field != "unit_price" {
		t.Errorf("result = %+v", result)
	}
	if purged != 0 {
		t.Error("cache purged after a failed import")
	}
}

func TestHandleCatalogImport_BadUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"unsupported_type", "catalog.txt", "kind,code\n"},
		{"header_only", "catalog.csv", "kind,code,name,unit_price\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			rec := httptest.NewRecorder()
			err := HandleCatalogImport(app, nil)(newTestRequestEvent(app, uploadRequest(t, tt.filename, tt.content), rec))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			assertStatus(t, rec, http.StatusBadRequest)
			if toastOf(t, rec)["type"] != ToastError {
				t.Error("expected error toast")
			}
		})
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"lightingboq/engine"
	"lightingboq/services"
	"lightingboq/stores"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app core.App, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	eng      *engine.Engine
	projects *stores.MemoryProjects
}

// newTestEnv builds an engine over memory stores. Project p1 is configured
// per project (reference TPB-24), p2 per area with area a1 "Lobby".
// Product A (100) accepts driver D (20) and accessory X (5); D2 is
// unlinked.
func newTestEnv(t *testing.T, opts ...engine.Option) *testEnv {
	t.Helper()
	catalog := stores.NewMemoryCatalog(
		engine.CatalogItem{ID: "A", Kind: engine.KindProduct, Code: "LP-600", Name: "Panel 600x600", UnitPrice: dec("100"),
			CompatibleDriverIDs: []string{"D"}, CompatibleAccessoryIDs: []string{"X"}},
		engine.CatalogItem{ID: "D", Kind: engine.KindDriver, Code: "CC-350", Name: "CC driver 350mA", UnitPrice: dec("20")},
		engine.CatalogItem{ID: "D2", Kind: engine.KindDriver, Code: "DALI-1", Name: "DALI driver", UnitPrice: dec("45")},
		engine.CatalogItem{ID: "X", Kind: engine.KindAccessory, Code: "SMK", Name: "Surface mount kit", UnitPrice: dec("5")},
	)
	projects := stores.NewMemoryProjects()
	projects.AddProject(engine.Project{ID: "p1", Name: "Tech Park Block B", ReferenceNumber: "TPB-24", Mode: engine.ModeProject})
	projects.AddProject(engine.Project{ID: "p2", Name: "Hotel", Mode: engine.ModeArea})
	projects.AddArea(engine.Area{ID: "a1", ProjectID: "p2", Name: "Lobby"})

	base := []engine.Option{
		engine.WithDirectory(projects),
		engine.WithRenderer(services.NewRenderer("Test Lighting Co")),
		engine.WithClock(func() time.Time { return time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC) }),
	}
	eng := engine.New(catalog, stores.NewMemoryWorkingSets(), stores.NewMemoryVersions(), append(base, opts...)...)
	return &testEnv{eng: eng, projects: projects}
}

// request describes one handler call.
type request struct {
	method string
	target string
	body   any
	path   map[string]string
	htmx   bool
}

func (r request) build(t *testing.T) *http.Request {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	method := r.method
	if method == "" {
		method = http.MethodGet
	}
	target := r.target
	if target == "" {
		target = "/"
	}
	req := httptest.NewRequest(method, target, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.htmx {
		req.Header.Set("HX-Request", "true")
	}
	for k, v := range r.path {
		req.SetPathValue(k, v)
	}
	return req
}

// call runs handler against r and returns the recorder.
func call(t *testing.T, handler func(*core.RequestEvent) error, r request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(nil, r.build(t), rec)
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// toastOf returns the showToast payload of the HX-Trigger header.
func toastOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	trigger := rec.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast is not valid JSON: %v", err)
	}
	return toast
}

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"lightingboq/engine"
	"lightingboq/testhelpers"
)

func TestHandleCatalogList(t *testing.T) {
	tests := []struct {
		kind  string
		want  int
		count int
	}{
		{"products", http.StatusOK, 1},
		{"drivers", http.StatusOK, 2},
		{"Accessories", http.StatusOK, 1},
		{"lamps", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			env := newTestEnv(t)
			rec := call(t, HandleCatalogList(env.eng), request{path: map[string]string{"kind": tt.kind}})
			assertStatus(t, rec, tt.want)
			if tt.want != http.StatusOK {
				return
			}
			var items []engine.CatalogItem
			decodeJSON(t, rec, &items)
			if len(items) != tt.count {
				t.Errorf("got %d items, want %d", len(items), tt.count)
			}
		})
	}
}

func TestHandleCompatible(t *testing.T) {
	env := newTestEnv(t)

	rec := call(t, HandleCompatible(env.eng), request{path: map[string]string{"id": "A"}})
	assertStatus(t, rec, http.StatusOK)
	var compat engine.Compatible
	decodeJSON(t, rec, &compat)
	if len(compat.Drivers) != 1 || compat.Drivers[0].ID != "D" {
		t.Errorf("drivers = %+v", compat.Drivers)
	}

	rec = call(t, HandleCompatible(env.eng), request{path: map[string]string{"id": "A"}, htmx: true})
	assertStatus(t, rec, http.StatusOK)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `<option value="D">`, `<option value="X">`)
	if strings.Contains(rec.Body.String(), `value="D2"`) {
		t.Error("unlinked driver D2 offered")
	}

	rec = call(t, HandleCompatible(env.eng), request{path: map[string]string{"id": "missing"}})
	assertStatus(t, rec, http.StatusNotFound)
}

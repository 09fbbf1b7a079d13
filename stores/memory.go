// Package stores holds the implementations of the engine's storage
// collaborators: in-memory, PocketBase, badger, gorm and a cached catalog.
package stores

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"lightingboq/engine"
)

// MemoryCatalog is a fixed catalog held in memory. Listing order is the
// order items were added.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[engine.Kind][]engine.CatalogItem
}

func NewMemoryCatalog(items ...engine.CatalogItem) *MemoryCatalog {
	c := &MemoryCatalog{items: make(map[engine.Kind][]engine.CatalogItem)}
	for _, it := range items {
		c.Put(it)
	}
	return c
}

// Put adds or replaces an item.
func (c *MemoryCatalog) Put(item engine.CatalogItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.items[item.Kind]
	if i := slices.IndexFunc(list, func(x engine.CatalogItem) bool { return x.ID == item.ID }); i >= 0 {
		list[i] = item
		return
	}
	c.items[item.Kind] = append(list, item)
}

func (c *MemoryCatalog) get(kind engine.Kind, id string) (engine.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items[kind] {
		if it.ID == id {
			return copyItem(it), nil
		}
	}
	return engine.CatalogItem{}, &engine.NotFoundError{Entity: strings.ToLower(string(kind)), ID: id}
}

func (c *MemoryCatalog) list(kind engine.Kind) []engine.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.CatalogItem, 0, len(c.items[kind]))
	for _, it := range c.items[kind] {
		out = append(out, copyItem(it))
	}
	return out
}

func copyItem(it engine.CatalogItem) engine.CatalogItem {
	it.CompatibleDriverIDs = slices.Clone(it.CompatibleDriverIDs)
	it.CompatibleAccessoryIDs = slices.Clone(it.CompatibleAccessoryIDs)
	return it
}

func (c *MemoryCatalog) GetProduct(_ context.Context, id string) (engine.CatalogItem, error) {
	return c.get(engine.KindProduct, id)
}

func (c *MemoryCatalog) GetDriver(_ context.Context, id string) (engine.CatalogItem, error) {
	return c.get(engine.KindDriver, id)
}

func (c *MemoryCatalog) GetAccessory(_ context.Context, id string) (engine.CatalogItem, error) {
	return c.get(engine.KindAccessory, id)
}

func (c *MemoryCatalog) ListProducts(context.Context) ([]engine.CatalogItem, error) {
	return c.list(engine.KindProduct), nil
}

func (c *MemoryCatalog) ListDrivers(context.Context) ([]engine.CatalogItem, error) {
	return c.list(engine.KindDriver), nil
}

func (c *MemoryCatalog) ListAccessories(context.Context) ([]engine.CatalogItem, error) {
	return c.list(engine.KindAccessory), nil
}

// MemoryWorkingSets keeps working sets in a map. It loses everything on
// restart and suits tests and single-process demos.
type MemoryWorkingSets struct {
	mu    sync.RWMutex
	order []engine.ScopeKey
	sets  map[engine.ScopeKey]engine.WorkingSet
}

func NewMemoryWorkingSets() *MemoryWorkingSets {
	return &MemoryWorkingSets{sets: make(map[engine.ScopeKey]engine.WorkingSet)}
}

func (m *MemoryWorkingSets) LoadWorkingSet(_ context.Context, scope engine.ScopeKey) (engine.WorkingSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.sets[scope]
	if !ok {
		return engine.NewWorkingSet(scope), nil
	}
	return ws.Clone(), nil
}

func (m *MemoryWorkingSets) SaveWorkingSet(_ context.Context, ws engine.WorkingSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[ws.Scope]; !ok {
		m.order = append(m.order, ws.Scope)
	}
	m.sets[ws.Scope] = ws.Clone()
	return nil
}

func (m *MemoryWorkingSets) ListWorkingSets(_ context.Context, projectID string) ([]engine.WorkingSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []engine.WorkingSet{}
	for _, key := range m.order {
		if key.ProjectID == projectID {
			out = append(out, m.sets[key].Clone())
		}
	}
	return out, nil
}

// MemoryVersions keeps BOQ versions per project in insertion order.
type MemoryVersions struct {
	mu       sync.RWMutex
	projects map[string][]engine.BOQVersion
}

func NewMemoryVersions() *MemoryVersions {
	return &MemoryVersions{projects: make(map[string][]engine.BOQVersion)}
}

// SaveVersion inserts a version without an id, or updates the status and
// margin fields of an existing DRAFT. Line items are only written on insert.
func (m *MemoryVersions) SaveVersion(_ context.Context, v engine.BOQVersion) (engine.BOQVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.projects[v.ProjectID]

	if v.ID == "" {
		for _, existing := range list {
			if existing.Number == v.Number {
				return engine.BOQVersion{}, &engine.VersionLockedError{
					ProjectID: v.ProjectID,
					Number:    v.Number,
					Reason:    "version number already exists",
				}
			}
		}
		v.ID = uuid.NewString()
		v = copyVersion(v)
		m.projects[v.ProjectID] = append(list, v)
		return copyVersion(v), nil
	}

	i := slices.IndexFunc(list, func(x engine.BOQVersion) bool { return x.ID == v.ID })
	if i < 0 {
		return engine.BOQVersion{}, &engine.NotFoundError{Entity: "BOQ version", ID: v.ID}
	}
	stored := list[i]
	if stored.IsApproved() {
		return engine.BOQVersion{}, &engine.VersionLockedError{ProjectID: v.ProjectID, Number: stored.Number, Reason: "version is approved"}
	}
	stored.Status = v.Status
	stored.MarginPercent = v.MarginPercent
	stored.GrandTotal = v.GrandTotal
	stored.ApprovedAt = v.ApprovedAt
	list[i] = stored
	return copyVersion(stored), nil
}

func (m *MemoryVersions) LoadVersions(_ context.Context, projectID string) ([]engine.BOQVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.BOQVersion, 0, len(m.projects[projectID]))
	for _, v := range m.projects[projectID] {
		out = append(out, copyVersion(v))
	}
	return out, nil
}

func (m *MemoryVersions) LoadLatest(_ context.Context, projectID string) (*engine.BOQVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *engine.BOQVersion
	for _, v := range m.projects[projectID] {
		if latest == nil || v.Number > latest.Number {
			c := copyVersion(v)
			latest = &c
		}
	}
	return latest, nil
}

func copyVersion(v engine.BOQVersion) engine.BOQVersion {
	v.LineItems = slices.Clone(v.LineItems)
	if v.ApprovedAt != nil {
		at := *v.ApprovedAt
		v.ApprovedAt = &at
	}
	return v
}

// MemoryProjects is an in-memory project hierarchy.
type MemoryProjects struct {
	mu       sync.RWMutex
	projects map[string]engine.Project
	areas    map[string]engine.Area
	subAreas map[string]engine.SubArea
}

func NewMemoryProjects() *MemoryProjects {
	return &MemoryProjects{
		projects: make(map[string]engine.Project),
		areas:    make(map[string]engine.Area),
		subAreas: make(map[string]engine.SubArea),
	}
}

func (m *MemoryProjects) AddProject(p engine.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
}

func (m *MemoryProjects) AddArea(a engine.Area) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas[a.ID] = a
}

func (m *MemoryProjects) AddSubArea(s engine.SubArea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subAreas[s.ID] = s
}

func (m *MemoryProjects) GetProject(_ context.Context, id string) (engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.Project{}, &engine.NotFoundError{Entity: "project", ID: id}
	}
	return p, nil
}

func (m *MemoryProjects) GetArea(_ context.Context, id string) (engine.Area, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.areas[id]
	if !ok {
		return engine.Area{}, &engine.NotFoundError{Entity: "area", ID: id}
	}
	return a, nil
}

func (m *MemoryProjects) GetSubArea(_ context.Context, id string) (engine.SubArea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subAreas[id]
	if !ok {
		return engine.SubArea{}, &engine.NotFoundError{Entity: "sub-area", ID: id}
	}
	return s, nil
}

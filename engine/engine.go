package engine

import (
	"context"
	"time"
)

// Engine is the entry point used by the view layer. Every operation takes an
// explicit scope key or project id; mutations of one project are serialized.
type Engine struct {
	catalog   CatalogStore
	fresh     CatalogStore
	display   *Resolver
	checker   *Resolver
	sets      WorkingSetStore
	versions  VersionStore
	directory ProjectDirectory
	renderer  ExportRenderer
	now       func() time.Time
	locks     *projectLocks
}

type Option func(*Engine)

// WithDirectory validates scope keys against the project hierarchy and uses
// area names as line item scope labels.
func WithDirectory(d ProjectDirectory) Option {
	return func(e *Engine) { e.directory = d }
}

func WithRenderer(r ExportRenderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithClock overrides time.Now for version timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithValidationCatalog sets the store read when adding and attaching
// items. Use it when the main catalog is cached so that compatibility is
// always checked against current data.
func WithValidationCatalog(c CatalogStore) Option {
	return func(e *Engine) { e.fresh = c }
}

func New(catalog CatalogStore, sets WorkingSetStore, versions VersionStore, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		fresh:    catalog,
		sets:     sets,
		versions: versions,
		now:      time.Now,
		locks:    newProjectLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.display = NewResolver(e.catalog)
	e.checker = NewResolver(e.fresh)
	return e
}

// ResolveCompatible returns the drivers and accessories a product accepts.
// It reads through the main catalog, which may be cached.
func (e *Engine) ResolveCompatible(ctx context.Context, productID string) (Compatible, error) {
	return e.display.ResolveCompatible(ctx, productID)
}

// ListCatalog lists the catalog records of one kind.
func (e *Engine) ListCatalog(ctx context.Context, kind Kind) ([]CatalogItem, error) {
	switch kind {
	case KindProduct:
		return e.catalog.ListProducts(ctx)
	case KindDriver:
		return e.catalog.ListDrivers(ctx)
	case KindAccessory:
		return e.catalog.ListAccessories(ctx)
	}
	return nil, &NotFoundError{Entity: "catalog kind", ID: string(kind)}
}

// lockProject serializes mutations on a project. The returned context error
// is checked after the lock is held so a cancelled caller changes nothing.
func (e *Engine) lockProject(ctx context.Context, projectID string) (func(), error) {
	unlock := e.locks.lock(projectID)
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

// project returns the project record, or a bare one when no directory is
// configured.
func (e *Engine) project(ctx context.Context, projectID string) (Project, error) {
	if e.directory == nil {
		return Project{ID: projectID}, nil
	}
	return e.directory.GetProject(ctx, projectID)
}

// checkScope validates a scope key's shape and, with a directory, that the
// project exists, the depth matches its inquiry mode and the area and
// sub-area belong to it.
func (e *Engine) checkScope(ctx context.Context, scope ScopeKey) error {
	if e.directory == nil {
		return scope.Check("")
	}
	if err := scope.Check(""); err != nil {
		return err
	}
	project, err := e.directory.GetProject(ctx, scope.ProjectID)
	if err != nil {
		return err
	}
	if err := scope.Check(project.Mode); err != nil {
		return err
	}
	if scope.AreaID == "" {
		return nil
	}
	area, err := e.directory.GetArea(ctx, scope.AreaID)
	if err != nil {
		return err
	}
	if area.ProjectID != scope.ProjectID {
		return &InvalidScopeError{Scope: scope, Reason: "area belongs to another project"}
	}
	if scope.SubAreaID == "" {
		return nil
	}
	sub, err := e.directory.GetSubArea(ctx, scope.SubAreaID)
	if err != nil {
		return err
	}
	if sub.AreaID != scope.AreaID {
		return &InvalidScopeError{Scope: scope, Reason: "sub-area belongs to another area"}
	}
	return nil
}

// scopeLabel names a scope for frozen line items, e.g. "Ground Floor / Lobby".
func (e *Engine) scopeLabel(ctx context.Context, scope ScopeKey) (string, error) {
	if e.directory == nil {
		return scope.String(), nil
	}
	if scope.AreaID == "" {
		return "", nil
	}
	area, err := e.directory.GetArea(ctx, scope.AreaID)
	if err != nil {
		return "", err
	}
	if scope.SubAreaID == "" {
		return area.Name, nil
	}
	sub, err := e.directory.GetSubArea(ctx, scope.SubAreaID)
	if err != nil {
		return "", err
	}
	return area.Name + " / " + sub.Name, nil
}

package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"lightingboq/engine"
)

var catalogCollections = map[engine.Kind]string{
	engine.KindProduct:   "products",
	engine.KindDriver:    "drivers",
	engine.KindAccessory: "accessories",
}

// PBCatalog reads catalog master data from the products, drivers and
// accessories collections.
type PBCatalog struct {
	app core.App
}

func NewPBCatalog(app core.App) *PBCatalog {
	return &PBCatalog{app: app}
}

func (c *PBCatalog) get(ctx context.Context, kind engine.Kind, id string) (engine.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return engine.CatalogItem{}, err
	}
	rec, err := c.app.FindRecordById(catalogCollections[kind], id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.CatalogItem{}, &engine.NotFoundError{Entity: strings.ToLower(string(kind)), ID: id}
		}
		return engine.CatalogItem{}, fmt.Errorf("find %s %s: %w", catalogCollections[kind], id, err)
	}
	return catalogItemFromRecord(kind, rec), nil
}

func (c *PBCatalog) list(ctx context.Context, kind engine.Kind) ([]engine.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := c.app.FindRecordsByFilter(catalogCollections[kind], "1=1", "code", 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", catalogCollections[kind], err)
	}
	out := make([]engine.CatalogItem, 0, len(records))
	for _, r := range records {
		out = append(out, catalogItemFromRecord(kind, r))
	}
	return out, nil
}

func catalogItemFromRecord(kind engine.Kind, r *core.Record) engine.CatalogItem {
	item := engine.CatalogItem{
		ID:        r.Id,
		Kind:      kind,
		Code:      r.GetString("code"),
		Name:      r.GetString("name"),
		UnitPrice: decimal.NewFromFloat(r.GetFloat("unit_price")),
	}
	if kind == engine.KindProduct {
		item.CompatibleDriverIDs = r.GetStringSlice("compatible_drivers")
		item.CompatibleAccessoryIDs = r.GetStringSlice("compatible_accessories")
	}
	return item
}

func (c *PBCatalog) GetProduct(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindProduct, id)
}

func (c *PBCatalog) GetDriver(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindDriver, id)
}

func (c *PBCatalog) GetAccessory(ctx context.Context, id string) (engine.CatalogItem, error) {
	return c.get(ctx, engine.KindAccessory, id)
}

func (c *PBCatalog) ListProducts(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindProduct)
}

func (c *PBCatalog) ListDrivers(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindDriver)
}

func (c *PBCatalog) ListAccessories(ctx context.Context) ([]engine.CatalogItem, error) {
	return c.list(ctx, engine.KindAccessory)
}

// PBVersions stores BOQ versions in boq_versions and their frozen rows in
// boq_line_items. Amounts are kept as decimal strings.
type PBVersions struct {
	app core.App
}

func NewPBVersions(app core.App) *PBVersions {
	return &PBVersions{app: app}
}

func (s *PBVersions) SaveVersion(ctx context.Context, v engine.BOQVersion) (engine.BOQVersion, error) {
	if err := ctx.Err(); err != nil {
		return engine.BOQVersion{}, err
	}

	var saved engine.BOQVersion
	err := s.app.RunInTransaction(func(txApp core.App) error {
		var err error
		if v.ID == "" {
			saved, err = insertVersion(txApp, v)
		} else {
			saved, err = updateVersion(txApp, v)
		}
		return err
	})
	if err != nil {
		return engine.BOQVersion{}, err
	}
	return saved, nil
}

func insertVersion(txApp core.App, v engine.BOQVersion) (engine.BOQVersion, error) {
	existing, err := txApp.FindRecordsByFilter(
		"boq_versions",
		"project = {:project} && version_number = {:number}",
		"", 1, 0,
		map[string]any{"project": v.ProjectID, "number": v.Number},
	)
	if err != nil {
		return engine.BOQVersion{}, fmt.Errorf("check version number: %w", err)
	}
	if len(existing) > 0 {
		return engine.BOQVersion{}, &engine.VersionLockedError{
			ProjectID: v.ProjectID,
			Number:    v.Number,
			Reason:    "version number already exists",
		}
	}

	versionsCol, err := txApp.FindCollectionByNameOrId("boq_versions")
	if err != nil {
		return engine.BOQVersion{}, fmt.Errorf("find boq_versions collection: %w", err)
	}
	itemsCol, err := txApp.FindCollectionByNameOrId("boq_line_items")
	if err != nil {
		return engine.BOQVersion{}, fmt.Errorf("find boq_line_items collection: %w", err)
	}

	rec := core.NewRecord(versionsCol)
	rec.Set("project", v.ProjectID)
	rec.Set("version_number", v.Number)
	setVersionFields(rec, v)
	if !v.CreatedAt.IsZero() {
		rec.Set("generated_at", v.CreatedAt)
	}
	if err := txApp.Save(rec); err != nil {
		return engine.BOQVersion{}, fmt.Errorf("save version %d: %w", v.Number, err)
	}

	for _, li := range v.LineItems {
		item := core.NewRecord(itemsCol)
		item.Set("version", rec.Id)
		item.Set("sort_order", li.SortOrder)
		item.Set("kind", string(li.Kind))
		item.Set("item_id", li.ItemID)
		item.Set("code", li.Code)
		item.Set("name", li.Name)
		item.Set("scope", li.Scope)
		item.Set("quantity", li.Quantity)
		item.Set("unit_price", li.UnitPrice.String())
		item.Set("total", li.Total.String())
		if err := txApp.Save(item); err != nil {
			return engine.BOQVersion{}, fmt.Errorf("save line item %d: %w", li.SortOrder, err)
		}
	}

	return loadVersion(txApp, rec)
}

func updateVersion(txApp core.App, v engine.BOQVersion) (engine.BOQVersion, error) {
	rec, err := txApp.FindRecordById("boq_versions", v.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.BOQVersion{}, &engine.NotFoundError{Entity: "BOQ version", ID: v.ID}
		}
		return engine.BOQVersion{}, fmt.Errorf("find version %s: %w", v.ID, err)
	}
	if rec.GetString("status") == string(engine.StatusApproved) {
		return engine.BOQVersion{}, &engine.VersionLockedError{
			ProjectID: rec.GetString("project"),
			Number:    rec.GetInt("version_number"),
			Reason:    "version is approved",
		}
	}

	setVersionFields(rec, v)
	if err := txApp.Save(rec); err != nil {
		return engine.BOQVersion{}, fmt.Errorf("update version %s: %w", v.ID, err)
	}
	return loadVersion(txApp, rec)
}

// setVersionFields writes the fields that may change while a version is a
// DRAFT. Subtotal is included so inserts are complete.
func setVersionFields(rec *core.Record, v engine.BOQVersion) {
	rec.Set("status", string(v.Status))
	rec.Set("subtotal", v.Subtotal.String())
	rec.Set("margin_percent", v.MarginPercent.String())
	rec.Set("grand_total", v.GrandTotal.String())
	if v.ApprovedAt != nil {
		rec.Set("approved_at", *v.ApprovedAt)
	} else {
		rec.Set("approved_at", "")
	}
}

func (s *PBVersions) LoadVersions(ctx context.Context, projectID string) ([]engine.BOQVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.app.FindRecordsByFilter(
		"boq_versions",
		"project = {:project}",
		"version_number", 0, 0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("list versions of project %s: %w", projectID, err)
	}
	out := make([]engine.BOQVersion, 0, len(records))
	for _, r := range records {
		v, err := loadVersion(s.app, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *PBVersions) LoadLatest(ctx context.Context, projectID string) (*engine.BOQVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.app.FindRecordsByFilter(
		"boq_versions",
		"project = {:project}",
		"-version_number", 1, 0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("find latest version of project %s: %w", projectID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	v, err := loadVersion(s.app, records[0])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func loadVersion(app core.App, r *core.Record) (engine.BOQVersion, error) {
	v := engine.BOQVersion{
		ID:        r.Id,
		ProjectID: r.GetString("project"),
		Number:    r.GetInt("version_number"),
		Status:    engine.Status(r.GetString("status")),
		LineItems: []engine.BOQLineItem{},
	}

	var err error
	if v.Subtotal, err = parseAmount(r, "subtotal"); err != nil {
		return engine.BOQVersion{}, err
	}
	if v.MarginPercent, err = parseAmount(r, "margin_percent"); err != nil {
		return engine.BOQVersion{}, err
	}
	if v.GrandTotal, err = parseAmount(r, "grand_total"); err != nil {
		return engine.BOQVersion{}, err
	}

	if dt := r.GetDateTime("generated_at"); !dt.IsZero() {
		v.CreatedAt = dt.Time()
	} else if dt := r.GetDateTime("created"); !dt.IsZero() {
		v.CreatedAt = dt.Time()
	}
	if dt := r.GetDateTime("approved_at"); !dt.IsZero() {
		at := dt.Time()
		v.ApprovedAt = &at
	}

	items, err := app.FindRecordsByFilter(
		"boq_line_items",
		"version = {:version}",
		"sort_order", 0, 0,
		map[string]any{"version": r.Id},
	)
	if err != nil {
		return engine.BOQVersion{}, fmt.Errorf("list line items of version %s: %w", r.Id, err)
	}
	for _, it := range items {
		li := engine.BOQLineItem{
			SortOrder: it.GetInt("sort_order"),
			Kind:      engine.Kind(it.GetString("kind")),
			ItemID:    it.GetString("item_id"),
			Code:      it.GetString("code"),
			Name:      it.GetString("name"),
			Scope:     it.GetString("scope"),
			Quantity:  it.GetInt("quantity"),
		}
		if li.UnitPrice, err = parseAmount(it, "unit_price"); err != nil {
			return engine.BOQVersion{}, err
		}
		if li.Total, err = parseAmount(it, "total"); err != nil {
			return engine.BOQVersion{}, err
		}
		v.LineItems = append(v.LineItems, li)
	}
	return v, nil
}

func parseAmount(r *core.Record, field string) (decimal.Decimal, error) {
	raw := r.GetString(field)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s.%s of %s: %w", r.Collection().Name, field, r.Id, err)
	}
	return d, nil
}

// PBProjects resolves the project, area and sub-area hierarchy.
type PBProjects struct {
	app core.App
}

func NewPBProjects(app core.App) *PBProjects {
	return &PBProjects{app: app}
}

func (p *PBProjects) find(ctx context.Context, collection, entity, id string) (*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := p.app.FindRecordById(collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &engine.NotFoundError{Entity: entity, ID: id}
		}
		return nil, fmt.Errorf("find %s %s: %w", entity, id, err)
	}
	return rec, nil
}

func (p *PBProjects) GetProject(ctx context.Context, id string) (engine.Project, error) {
	rec, err := p.find(ctx, "projects", "project", id)
	if err != nil {
		return engine.Project{}, err
	}
	mode := engine.InquiryMode(rec.GetString("inquiry_mode"))
	if mode == "" {
		mode = engine.ModeProject
	}
	return engine.Project{
		ID:              rec.Id,
		Name:            rec.GetString("name"),
		ReferenceNumber: rec.GetString("reference_number"),
		Mode:            mode,
	}, nil
}

func (p *PBProjects) GetArea(ctx context.Context, id string) (engine.Area, error) {
	rec, err := p.find(ctx, "areas", "area", id)
	if err != nil {
		return engine.Area{}, err
	}
	return engine.Area{ID: rec.Id, ProjectID: rec.GetString("project"), Name: rec.GetString("name")}, nil
}

func (p *PBProjects) GetSubArea(ctx context.Context, id string) (engine.SubArea, error) {
	rec, err := p.find(ctx, "sub_areas", "sub-area", id)
	if err != nil {
		return engine.SubArea{}, err
	}
	return engine.SubArea{ID: rec.Id, AreaID: rec.GetString("area"), Name: rec.GetString("name")}, nil
}

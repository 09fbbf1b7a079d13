package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// InquiryModes are the values of projects.inquiry_mode.
var InquiryModes = []string{"project", "area", "sub_area"}

// Setup programmatically creates/ensures the project hierarchy, catalog and
// BOQ version collections exist. Fields added in later releases are
// appended to existing collections.
func Setup(app core.App) error {
	projects, err := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name"})
		c.Fields.Add(&core.TextField{Name: "reference_number"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "on_hold", "completed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	if err != nil {
		return err
	}
	if err := ensureField(app, projects, &core.SelectField{
		Name:      "inquiry_mode",
		Values:    InquiryModes,
		MaxSelect: 1,
	}); err != nil {
		return err
	}

	areas, err := ensureCollection(app, "areas", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
	})
	if err != nil {
		return err
	}

	if _, err := ensureCollection(app, "sub_areas", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "area",
			Required:      true,
			CollectionId:  areas.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
	}); err != nil {
		return err
	}

	drivers, err := ensureCollection(app, "drivers", catalogFields("drivers"))
	if err != nil {
		return err
	}
	accessories, err := ensureCollection(app, "accessories", catalogFields("accessories"))
	if err != nil {
		return err
	}

	if _, err := ensureCollection(app, "products", func(c *core.Collection) {
		catalogFields("products")(c)
		c.Fields.Add(&core.RelationField{
			Name:         "compatible_drivers",
			CollectionId: drivers.Id,
			MaxSelect:    999,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "compatible_accessories",
			CollectionId: accessories.Id,
			MaxSelect:    999,
		})
	}); err != nil {
		return err
	}

	versions, err := ensureCollection(app, "boq_versions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "version_number", Required: true, OnlyInt: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"DRAFT", "APPROVED"},
			MaxSelect: 1,
		})
		// Amounts are decimal strings so no precision is lost in storage.
		c.Fields.Add(&core.TextField{Name: "subtotal", Required: true})
		c.Fields.Add(&core.TextField{Name: "margin_percent", Required: true})
		c.Fields.Add(&core.TextField{Name: "grand_total", Required: true})
		c.Fields.Add(&core.DateField{Name: "generated_at"})
		c.Fields.Add(&core.DateField{Name: "approved_at"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_boq_versions_project_number", true, "project, version_number", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, "boq_line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "version",
			Required:      true,
			CollectionId:  versions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true, OnlyInt: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"PRODUCT", "DRIVER", "ACCESSORY"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "item_id"})
		c.Fields.Add(&core.TextField{Name: "code"})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "scope"})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "unit_price", Required: true})
		c.Fields.Add(&core.TextField{Name: "total", Required: true})
	})
	return err
}

// catalogFields returns the field set shared by products, drivers and
// accessories. Codes are unique per collection.
func catalogFields(name string) func(*core.Collection) {
	return func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_"+name+"_code", true, "code", "")
	}
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	log.Printf("collections: created %q (id=%s)", name, collection.Id)
	return collection, nil
}

// ensureField adds field to an existing collection when it is missing.
func ensureField(app core.App, c *core.Collection, field core.Field) error {
	if c.Fields.GetByName(field.GetName()) != nil {
		return nil
	}
	c.Fields.Add(field)
	if err := app.Save(c); err != nil {
		return fmt.Errorf("add field %q to %q: %w", field.GetName(), c.Name, err)
	}
	log.Printf("collections: added field %q to %q", field.GetName(), c.Name)
	return nil
}

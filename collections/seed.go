package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type catalogDef struct {
	code        string
	name        string
	unitPrice   float64
	description string
}

type productDef struct {
	catalogDef
	driverCodes    []string
	accessoryCodes []string
}

type areaDef struct {
	name     string
	subAreas []string
}

type projectDef struct {
	name            string
	clientName      string
	referenceNumber string
	inquiryMode     string
	areas           []areaDef
}

var seedDrivers = []catalogDef{
	{"CC-350", "Constant current driver 350mA 12W", 420, "Non-dimmable, IP20"},
	{"CC-700", "Constant current driver 700mA 40W", 890, "Non-dimmable, IP20"},
	{"DALI-40", "DALI-2 dimmable driver 40W", 2350, "DT6, 1-100% dimming"},
	{"DIM-010-150", "0-10V dimmable driver 150W", 3900, "IP67 for high-bay"},
}

var seedAccessories = []catalogDef{
	{"SMK-600", "Surface mount kit 600x600", 650, "Powder coated steel frame"},
	{"SUS-KIT", "Suspension kit 1.5m", 380, "Twin wire rope"},
	{"EMP-3H", "Emergency pack 3 hour", 1850, "Self-test Li-ion"},
	{"REF-60", "60 degree reflector", 540, "High-bay optic"},
}

var seedProducts = []productDef{
	{catalogDef{"LP-600-40", "LED panel 600x600 40W 4000K", 2150, "UGR<19, 4400lm"},
		[]string{"CC-700", "DALI-40"}, []string{"SMK-600", "SUS-KIT", "EMP-3H"}},
	{catalogDef{"DL-150-12", "Recessed downlight 150mm 12W 3000K", 780, "IP44 bathroom rated"},
		[]string{"CC-350"}, []string{"EMP-3H"}},
	{catalogDef{"LN-1200-36", "Linear batten 1200mm 36W", 1320, "Continuous row capable"},
		[]string{"CC-700", "DALI-40"}, []string{"SUS-KIT", "EMP-3H"}},
	{catalogDef{"HB-150", "High-bay 150W 5000K", 7400, "IP65 die-cast housing"},
		[]string{"DIM-010-150"}, []string{"REF-60", "SUS-KIT"}},
}

var seedProjects = []projectDef{
	{
		name:            "Tech Park Tower B",
		clientName:      "Meridian Developers",
		referenceNumber: "TPB-24",
		inquiryMode:     "area",
		areas: []areaDef{
			{name: "Ground Floor Lobby"},
			{name: "Level 1 Office"},
			{name: "Basement Parking"},
		},
	},
	{
		name:            "Logistics Hub Bhiwandi",
		clientName:      "Northline Warehousing",
		referenceNumber: "LHB-07",
		inquiryMode:     "sub_area",
		areas: []areaDef{
			{name: "Warehouse Block 1", subAreas: []string{"Racking Aisles", "Dispatch Bay"}},
			{name: "Admin Block", subAreas: []string{"Reception"}},
		},
	},
}

// Seed populates the lighting catalog and two demo projects. It is safe to
// call on every startup because it returns early if any product records
// already exist.
func Seed(app core.App) error {
	// ── idempotency: skip if the catalog already exists ──────────────
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	existing, err := app.FindAllRecords(productsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query products: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: catalog is empty, inserting seed data")

	return app.RunInTransaction(func(txApp core.App) error {
		createCatalog := func(colName string, d catalogDef) (*core.Record, error) {
			col, err := txApp.FindCollectionByNameOrId(colName)
			if err != nil {
				return nil, fmt.Errorf("seed: could not find %s collection: %w", colName, err)
			}
			r := core.NewRecord(col)
			r.Set("code", d.code)
			r.Set("name", d.name)
			r.Set("unit_price", d.unitPrice)
			r.Set("description", d.description)
			if err := txApp.Save(r); err != nil {
				return nil, fmt.Errorf("seed: save %s %q: %w", colName, d.code, err)
			}
			return r, nil
		}

		ids := make(map[string]string)
		for _, d := range seedDrivers {
			r, err := createCatalog("drivers", d)
			if err != nil {
				return err
			}
			ids[d.code] = r.Id
		}
		for _, d := range seedAccessories {
			r, err := createCatalog("accessories", d)
			if err != nil {
				return err
			}
			ids[d.code] = r.Id
		}

		for _, p := range seedProducts {
			r, err := createCatalog("products", p.catalogDef)
			if err != nil {
				return err
			}
			r.Set("compatible_drivers", lookupIDs(ids, p.driverCodes))
			r.Set("compatible_accessories", lookupIDs(ids, p.accessoryCodes))
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: link product %q: %w", p.code, err)
			}
		}

		for _, p := range seedProjects {
			if err := createProject(txApp, p); err != nil {
				return err
			}
		}

		log.Printf("seed: inserted %d products, %d drivers, %d accessories, %d projects",
			len(seedProducts), len(seedDrivers), len(seedAccessories), len(seedProjects))
		return nil
	})
}

func lookupIDs(ids map[string]string, codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if id, ok := ids[c]; ok {
			out = append(out, id)
		}
	}
	return out
}

func createProject(app core.App, p projectDef) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	areasCol, err := app.FindCollectionByNameOrId("areas")
	if err != nil {
		return fmt.Errorf("seed: could not find areas collection: %w", err)
	}
	subAreasCol, err := app.FindCollectionByNameOrId("sub_areas")
	if err != nil {
		return fmt.Errorf("seed: could not find sub_areas collection: %w", err)
	}

	project := core.NewRecord(projectsCol)
	project.Set("name", p.name)
	project.Set("client_name", p.clientName)
	project.Set("reference_number", p.referenceNumber)
	project.Set("status", "active")
	project.Set("inquiry_mode", p.inquiryMode)
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: save project %q: %w", p.name, err)
	}

	for i, a := range p.areas {
		area := core.NewRecord(areasCol)
		area.Set("project", project.Id)
		area.Set("name", a.name)
		area.Set("sort_order", i+1)
		if err := app.Save(area); err != nil {
			return fmt.Errorf("seed: save area %q: %w", a.name, err)
		}
		for j, name := range a.subAreas {
			sub := core.NewRecord(subAreasCol)
			sub.Set("area", area.Id)
			sub.Set("name", name)
			sub.Set("sort_order", j+1)
			if err := app.Save(sub); err != nil {
				return fmt.Errorf("seed: save sub-area %q: %w", name, err)
			}
		}
	}
	return nil
}

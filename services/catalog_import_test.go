package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"lightingboq/engine"
	"lightingboq/testhelpers"
)

func TestParseCSV_Valid(t *testing.T) {
	input := "kind,code,name,unit_price\nDRIVER,CC-350,Driver,420\nACCESSORY,SMK,Kit,650\n"
	headers, rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(headers) != 4 {
		t.Errorf("expected 4 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(rows))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("kind,code,name,unit_price\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
	if !strings.Contains(err.Error(), "at least one data row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseCatalogFile_Rows(t *testing.T) {
	tests := []struct {
		name      string
		row       string
		wantField string
	}{
		{"valid_product", "PRODUCT,LP-600,Panel,2150.50,,CC-700;SMK", ""},
		{"lowercase_kind", "driver,CC-700,Driver,890,,", ""},
		{"unknown_kind", "LAMP,L1,Lamp,10,,", "kind"},
		{"missing_code", "DRIVER,,Driver,10,,", "code"},
		{"missing_name", "DRIVER,D1,,10,,", "name"},
		{"bad_price", "DRIVER,D1,Driver,abc,,", "unit_price"},
		{"negative_price", "DRIVER,D1,Driver,-1,,", "unit_price"},
		{"codes_on_driver", "DRIVER,D1,Driver,10,,X1", "compatible_codes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "kind,code,name,unit_price,description,compatible_codes\n" + tt.row + "\n"
			result, err := ParseCatalogFile(strings.NewReader(input), "catalog.csv")
			if err != nil {
				t.Fatalf("ParseCatalogFile() error = %v", err)
			}
			if tt.wantField == "" {
				if result.ErrorRows != 0 || len(result.ParsedRows) != 1 {
					t.Fatalf("expected a valid row, got errors %+v", result.Errors)
				}
				return
			}
			if result.ErrorRows != 1 || len(result.ParsedRows) != 0 {
				t.Fatalf("expected one error row, got %+v", result)
			}
			if result.Errors[0].Field != tt.wantField || result.Errors[0].Row != 2 {
				t.Errorf("error = %+v, want field %q on row 2", result.Errors[0], tt.wantField)
			}
		})
	}
}

func TestParseCatalogFile_ParsedValues(t *testing.T) {
	input := "Kind,Code,Name,Unit_Price,Description,Compatible_Codes\n" +
		"PRODUCT, LP-600 ,Panel 600,2150.50,UGR<19, CC-700 ; SMK ;\n"
	result, err := ParseCatalogFile(strings.NewReader(input), "CATALOG.CSV")
	if err != nil {
		t.Fatalf("ParseCatalogFile() error = %v", err)
	}
	if len(result.ParsedRows) != 1 {
		t.Fatalf("parsed rows = %d, errors = %+v", len(result.ParsedRows), result.Errors)
	}
	row := result.ParsedRows[0]
	if row.Kind != engine.KindProduct || row.Code != "LP-600" || row.Description != "UGR<19" {
		t.Errorf("row = %+v", row)
	}
	if !row.UnitPrice.Equal(d("2150.50")) {
		t.Errorf("unit price = %s", row.UnitPrice)
	}
	if len(row.CompatibleCodes) != 2 || row.CompatibleCodes[0] != "CC-700" || row.CompatibleCodes[1] != "SMK" {
		t.Errorf("compatible codes = %v", row.CompatibleCodes)
	}
}

func TestParseCatalogFile_DuplicateCode(t *testing.T) {
	input := "kind,code,name,unit_price\nDRIVER,D1,One,10\nDRIVER,D1,Two,20\n"
	result, err := ParseCatalogFile(strings.NewReader(input), "catalog.csv")
	if err != nil {
		t.Fatalf("ParseCatalogFile() error = %v", err)
	}
	if result.TotalRows != 2 || result.ValidRows != 1 || result.ErrorRows != 1 {
		t.Errorf("counts = %d/%d/%d", result.TotalRows, result.ValidRows, result.ErrorRows)
	}
	if !strings.Contains(result.Errors[0].Message, "row 2") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
}

func TestParseCatalogFile_MissingColumn(t *testing.T) {
	_, err := ParseCatalogFile(strings.NewReader("kind,code,name\nDRIVER,D1,One\n"), "catalog.csv")
	if err == nil || !strings.Contains(err.Error(), "unit_price") {
		t.Errorf("expected missing unit_price error, got %v", err)
	}
}

func TestParseCatalogFile_UnsupportedFormat(t *testing.T) {
	_, err := ParseCatalogFile(strings.NewReader("x"), "catalog.txt")
	if err == nil {
		t.Error("expected error for .txt file")
	}
}

func TestParseCatalogFile_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"kind", "code", "name", "unit_price"},
		{"DRIVER", "DALI-40", "DALI driver", "2350"},
		{"ACCESSORY", "EMP-3H", "Emergency pack", "1850"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	result, err := ParseCatalogFile(bytesReader(buf.Bytes()), "catalog.xlsx")
	if err != nil {
		t.Fatalf("ParseCatalogFile() error = %v", err)
	}
	if result.ValidRows != 2 || result.ParsedRows[1].Kind != engine.KindAccessory {
		t.Errorf("result = %+v", result)
	}
}

func parseRows(t *testing.T, input string) []CatalogRow {
	t.Helper()
	result, err := ParseCatalogFile(strings.NewReader(input), "catalog.csv")
	if err != nil {
		t.Fatalf("ParseCatalogFile() error = %v", err)
	}
	if result.ErrorRows != 0 {
		t.Fatalf("unexpected validation errors: %+v", result.Errors)
	}
	return result.ParsedRows
}

func TestImportCatalog_CreatesAndLinks(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rows := parseRows(t, "kind,code,name,unit_price,description,compatible_codes\n"+
		"PRODUCT,LP-600,Panel,2150,,CC-700;SMK\n"+
		"DRIVER,CC-700,Driver,890,,\n"+
		"ACCESSORY,SMK,Kit,650,,\n")

	result, err := ImportCatalog(app, rows)
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	if result.RolledBack || result.Created != 3 || result.Updated != 0 {
		t.Fatalf("result = %+v", result)
	}

	product, err := app.FindFirstRecordByData("products", "code", "LP-600")
	if err != nil {
		t.Fatalf("product not imported: %v", err)
	}
	driver, _ := app.FindFirstRecordByData("drivers", "code", "CC-700")
	accessory, _ := app.FindFirstRecordByData("accessories", "code", "SMK")

	if ids := product.GetStringSlice("compatible_drivers"); len(ids) != 1 || ids[0] != driver.Id {
		t.Errorf("compatible_drivers = %v", ids)
	}
	if ids := product.GetStringSlice("compatible_accessories"); len(ids) != 1 || ids[0] != accessory.Id {
		t.Errorf("compatible_accessories = %v", ids)
	}
	if product.GetFloat("unit_price") != 2150 {
		t.Errorf("unit_price = %v", product.GetFloat("unit_price"))
	}
}

func TestImportCatalog_UpdatesByCode(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	existing := testhelpers.CreateTestDriver(t, app, "CC-350", 420)

	rows := parseRows(t, "kind,code,name,unit_price\nDRIVER,CC-350,Driver 350mA,450\n")
	result, err := ImportCatalog(app, rows)
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Errorf("result = %+v", result)
	}

	got, _ := app.FindRecordById("drivers", existing.Id)
	if got.GetFloat("unit_price") != 450 || got.GetString("name") != "Driver 350mA" {
		t.Errorf("driver not updated: %v / %q", got.GetFloat("unit_price"), got.GetString("name"))
	}
}

func TestImportCatalog_UsesExistingCatalogCodes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	drv := testhelpers.CreateTestDriver(t, app, "DALI-40", 2350)

	rows := parseRows(t, "kind,code,name,unit_price,description,compatible_codes\nPRODUCT,LN-1200,Linear,1320,,DALI-40\n")
	if _, err := ImportCatalog(app, rows); err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	product, _ := app.FindFirstRecordByData("products", "code", "LN-1200")
	if ids := product.GetStringSlice("compatible_drivers"); len(ids) != 1 || ids[0] != drv.Id {
		t.Errorf("compatible_drivers = %v", ids)
	}
}

func TestImportCatalog_UnknownCodeRollsBack(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rows := parseRows(t, "kind,code,name,unit_price,description,compatible_codes\n"+
		"DRIVER,CC-700,Driver,890,,\n"+
		"PRODUCT,LP-600,Panel,2150,,NOPE\n")

	result, err := ImportCatalog(app, rows)
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	if !result.RolledBack || len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("result = %+v", result)
	}
	if _, err := app.FindFirstRecordByData("drivers", "code", "CC-700"); err == nil {
		t.Error("driver should have been rolled back")
	}
}

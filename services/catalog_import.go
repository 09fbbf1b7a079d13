package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"lightingboq/engine"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows  int               `json:"total_rows"`
	ValidRows  int               `json:"valid_rows"`
	ErrorRows  int               `json:"error_rows"`
	Errors     []ValidationError `json:"errors"`
	ParsedRows []CatalogRow      `json:"-"`
	FileName   string            `json:"-"`
}

// CatalogRow is one validated line of a catalog import file.
type CatalogRow struct {
	Row             int
	Kind            engine.Kind
	Code            string
	Name            string
	UnitPrice       decimal.Decimal
	Description     string
	CompatibleCodes []string
}

// catalogColumns are the recognised headers, matched case-insensitively.
var catalogColumns = []string{"kind", "code", "name", "unit_price", "description", "compatible_codes"}

// ParseCatalogFile parses a .csv or .xlsx catalog sheet and validates every
// row. Rows with errors are reported, not returned in ParsedRows.
func ParseCatalogFile(file io.Reader, fileName string) (*ValidationResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"kind", "code", "name", "unit_price"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	result := &ValidationResult{
		TotalRows:  len(dataRows),
		FileName:   fileName,
		ParsedRows: make([]CatalogRow, 0, len(dataRows)),
	}
	seen := make(map[string]int)

	for rowIdx, raw := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		value := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[i])
		}

		row := CatalogRow{
			Row:         rowNum,
			Kind:        engine.Kind(strings.ToUpper(value("kind"))),
			Code:        value("code"),
			Name:        value("name"),
			Description: value("description"),
		}
		var rowErrors []ValidationError
		fail := func(field, msg string) {
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: field, Message: msg})
		}

		if !row.Kind.Valid() {
			fail("kind", fmt.Sprintf("kind must be PRODUCT, DRIVER or ACCESSORY, got %q", value("kind")))
		}
		if row.Code == "" {
			fail("code", "code is required")
		} else if first, dup := seen[row.Code]; dup {
			fail("code", fmt.Sprintf("code %q already used on row %d", row.Code, first))
		} else {
			seen[row.Code] = rowNum
		}
		if row.Name == "" {
			fail("name", "name is required")
		}
		price, err := decimal.NewFromString(value("unit_price"))
		switch {
		case err != nil:
			fail("unit_price", "unit price must be a number")
		case price.IsNegative():
			fail("unit_price", "unit price must not be negative")
		default:
			row.UnitPrice = price
		}
		if codes := value("compatible_codes"); codes != "" {
			if row.Kind != engine.KindProduct {
				fail("compatible_codes", "only products can list compatible codes")
			}
			for _, c := range strings.Split(codes, ";") {
				if c = strings.TrimSpace(c); c != "" {
					row.CompatibleCodes = append(row.CompatibleCodes, c)
				}
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.ParsedRows = append(result.ParsedRows, row)
	}
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// ImportResult holds the outcome of a catalog import.
type ImportResult struct {
	TotalRows  int               `json:"total_rows"`
	Created    int               `json:"created"`
	Updated    int               `json:"updated"`
	Errors     []ValidationError `json:"errors,omitempty"`
	RolledBack bool              `json:"rolled_back"`
}

var kindCollections = map[engine.Kind]string{
	engine.KindProduct:   "products",
	engine.KindDriver:    "drivers",
	engine.KindAccessory: "accessories",
}

// ImportCatalog upserts parsed rows by code inside one transaction. Drivers
// and accessories are written first so product compatibility codes can be
// resolved against both the file and the existing catalog. Any failure rolls
// the whole import back.
func ImportCatalog(app core.App, rows []CatalogRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ValidationError

	err := app.RunInTransaction(func(txApp core.App) error {
		created, updated := 0, 0
		upsert := func(row CatalogRow, extra func(*core.Record) error) error {
			colName := kindCollections[row.Kind]
			record, err := txApp.FindFirstRecordByData(colName, "code", row.Code)
			if err != nil {
				col, err := txApp.FindCollectionByNameOrId(colName)
				if err != nil {
					return fmt.Errorf("%s collection not found: %w", colName, err)
				}
				record = core.NewRecord(col)
				record.Set("code", row.Code)
				created++
			} else {
				updated++
			}
			record.Set("name", row.Name)
			record.Set("unit_price", row.UnitPrice.InexactFloat64())
			record.Set("description", row.Description)
			if extra != nil {
				if err := extra(record); err != nil {
					return err
				}
			}
			if err := txApp.Save(record); err != nil {
				rowErrors = append(rowErrors, ValidationError{Row: row.Row, Message: fmt.Sprintf("Failed to save: %s", err.Error())})
				return fmt.Errorf("save failed at row %d: %w", row.Row, err)
			}
			return nil
		}

		for _, row := range rows {
			if row.Kind == engine.KindProduct {
				continue
			}
			if err := upsert(row, nil); err != nil {
				return err
			}
		}

		for _, row := range rows {
			if row.Kind != engine.KindProduct {
				continue
			}
			err := upsert(row, func(record *core.Record) error {
				var driverIDs, accessoryIDs []string
				for _, code := range row.CompatibleCodes {
					if r, err := txApp.FindFirstRecordByData("drivers", "code", code); err == nil {
						driverIDs = append(driverIDs, r.Id)
						continue
					}
					if r, err := txApp.FindFirstRecordByData("accessories", "code", code); err == nil {
						accessoryIDs = append(accessoryIDs, r.Id)
						continue
					}
					rowErrors = append(rowErrors, ValidationError{
						Row:     row.Row,
						Field:   "compatible_codes",
						Message: fmt.Sprintf("no driver or accessory with code %q", code),
					})
					return fmt.Errorf("unknown compatible code %q at row %d", code, row.Row)
				}
				record.Set("compatible_drivers", driverIDs)
				record.Set("compatible_accessories", accessoryIDs)
				return nil
			})
			if err != nil {
				return err
			}
		}

		result.Created, result.Updated = created, updated
		return nil
	})

	if err != nil {
		log.Printf("catalog_import: import rolled back: %v", err)
		result.RolledBack = true
		result.Created, result.Updated = 0, 0
		if len(rowErrors) == 0 {
			return nil, fmt.Errorf("import catalog: %w", err)
		}
		result.Errors = rowErrors
	}
	return result, nil
}

package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel creates an Excel file from the given ExportData and returns
// the file contents as a byte slice.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := sheetTitle(data.Title)

	// Rename default sheet.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]

	widths := []float64{7, 46, 22, 8, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	groupStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EFEFEF"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create group style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge ref: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell(fmt.Sprintf("Ref: %s   Status: %s", data.ReferenceNumber, data.Status)))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Description", "Area", "Qty", "Unit Price", "Amount"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		if r.Level == 0 {
			f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Description))
			f.SetCellValue(sheetName, "F"+rowStr, FormatINR(r.Amount))
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, groupStyle)
			row++
			continue
		}

		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell("  "+r.Description))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Scope))
		f.SetCellValue(sheetName, "D"+rowStr, r.Qty)
		f.SetCellValue(sheetName, "E"+rowStr, FormatINR(r.UnitPrice))
		f.SetCellValue(sheetName, "F"+rowStr, FormatINR(r.Amount))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, itemStyle)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	summary := []struct {
		label string
		value string
	}{
		{"Subtotal:", FormatINR(data.Subtotal)},
		{fmt.Sprintf("Margin (%s):", FormatPercent(data.MarginPercent)), FormatINR(data.Margin)},
		{"Grand Total:", FormatINR(data.GrandTotal)},
	}
	for _, s := range summary {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "E"+rowStr, s.label)
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "F"+rowStr, s.value)
		f.SetCellStyle(sheetName, "F"+rowStr, "F"+rowStr, summaryValueStyle)
		row++
	}

	if data.AmountInWords != "" {
		rowStr := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge amount in words: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, data.AmountInWords)
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, subtitleStyle)
	}

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sheetTitle trims a title to Excel's 31 character sheet name limit and
// strips characters Excel rejects in sheet names.
func sheetTitle(title string) string {
	name := []rune(title)
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return "BOQ"
	}
	return string(out)
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}

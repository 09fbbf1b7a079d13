package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lightingboq/engine"
)

// ExportRow represents a single row in the BOQ export.
type ExportRow struct {
	Level       int    // 0 = kind group header, 1 = line item
	Index       string // "A", "A.1", "B.2" etc
	Description string
	Scope       string
	Qty         int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title           string
	CompanyName     string
	ReferenceNumber string
	CreatedDate     string
	Status          string
	Rows            []ExportRow
	Subtotal        decimal.Decimal
	MarginPercent   decimal.Decimal
	Margin          decimal.Decimal
	GrandTotal      decimal.Decimal
	AmountInWords   string
}

const exportDateLayout = "02 Jan 2006"

// BuildExportData flattens a grouped BOQ version into export rows: one header
// row per non-empty kind followed by its line items in version order.
func BuildExportData(view engine.ExportView, companyName string) ExportData {
	v := view.Version
	title := view.Project.Name
	if title == "" {
		title = "Project " + view.Project.ID
	}

	data := ExportData{
		Title:           fmt.Sprintf("%s - BOQ v%d", title, v.Number),
		CompanyName:     companyName,
		ReferenceNumber: VersionReference(view.Project.ReferenceNumber, v.ProjectID, v.Number, v.CreatedAt),
		CreatedDate:     v.CreatedAt.Format(exportDateLayout),
		Status:          string(v.Status),
		Rows:            []ExportRow{},
		Subtotal:        view.Summary.Subtotal,
		MarginPercent:   view.Summary.MarginPercent,
		Margin:          view.Summary.MarginAmount,
		GrandTotal:      view.Summary.GrandTotal,
		AmountInWords:   AmountToWords(view.Summary.GrandTotal),
	}

	letter := 'A'
	for _, kind := range engine.Kinds {
		g := view.Summary.Group(kind)
		if g.Count == 0 {
			continue
		}
		prefix := string(letter)
		data.Rows = append(data.Rows, ExportRow{
			Level:       0,
			Index:       prefix,
			Description: kind.Label(),
			Amount:      g.TotalAmount,
		})
		for i, item := range g.Items {
			data.Rows = append(data.Rows, ExportRow{
				Level:       1,
				Index:       fmt.Sprintf("%s.%d", prefix, i+1),
				Description: itemDescription(item),
				Scope:       item.Scope,
				Qty:         item.Quantity,
				UnitPrice:   item.UnitPrice,
				Amount:      item.Total,
			})
		}
		letter++
	}
	return data
}

func itemDescription(item engine.BOQLineItem) string {
	if item.Code == "" {
		return item.Name
	}
	return item.Code + " - " + item.Name
}

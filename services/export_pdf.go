package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF creates a PDF document from BOQ export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addTableHeader(m)
	for _, r := range data.Rows {
		addTableRow(m, r)
	}
	addSummary(m, data)
	addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

var mutedText = &props.Color{Red: 80, Green: 80, Blue: 80}

// addHeader adds the company, title, reference, status and date to the PDF.
func addHeader(m core.Maroto, data ExportData) {
	if data.CompanyName != "" {
		m.AddRows(
			row.New(7).Add(
				col.New(12).Add(
					text.New(data.CompanyName, props.Text{
						Size:  10,
						Style: fontstyle.Bold,
						Align: align.Left,
						Color: mutedText,
					}),
				),
			),
		)
	}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	meta := props.Text{Size: 9, Align: align.Left, Color: mutedText}
	metaRight := meta
	metaRight.Align = align.Right
	metaCenter := meta
	metaCenter.Align = align.Center

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(text.New("Reference: "+data.ReferenceNumber, meta)),
			col.New(4).Add(text.New("Status: "+data.Status, metaCenter)),
			col.New(4).Add(text.New("Date: "+data.CreatedDate, metaRight)),
		),
	)

	m.AddRows(row.New(4))
}

// addTableHeader adds the column header row for the BOQ table.
func addTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(4).Add(text.New("Description", headerTextLeft)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Area", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit Price", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Amount", headerText)).WithStyle(&headerCell),
		),
	)
}

// addTableRow adds a group header or line item row.
func addTableRow(m core.Maroto, r ExportRow) {
	if r.Level == 0 {
		groupCell := &props.Cell{BackgroundColor: &props.Color{Red: 235, Green: 235, Blue: 235}}
		bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
		boldRight := bold
		boldRight.Align = align.Right
		m.AddRows(
			row.New(7).Add(
				col.New(1).Add(text.New(r.Index, bold)).WithStyle(groupCell),
				col.New(9).Add(text.New(r.Description, bold)).WithStyle(groupCell),
				col.New(2).Add(text.New(FormatINR(r.Amount), boldRight)).WithStyle(groupCell),
			),
		)
		return
	}

	baseText := props.Text{Size: 7, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(r.Index, baseText)),
			col.New(4).Add(text.New("  "+r.Description, leftText)),
			col.New(2).Add(text.New(r.Scope, leftText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", r.Qty), rightText)),
			col.New(2).Add(text.New(FormatINR(r.UnitPrice), rightText)),
			col.New(2).Add(text.New(FormatINR(r.Amount), rightText)),
		),
	)
}

// addSummary adds subtotal, margin and grand total at the bottom of the PDF.
func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	style := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	lines := []struct {
		label string
		value string
	}{
		{"Subtotal", FormatINR(data.Subtotal)},
		{fmt.Sprintf("Margin (%s)", FormatPercent(data.MarginPercent)), FormatINR(data.Margin)},
		{"Grand Total", FormatINR(data.GrandTotal)},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, style)).WithStyle(summaryCell),
				col.New(4).Add(text.New(l.value, style)).WithStyle(summaryCell),
			),
		)
	}

	if data.AmountInWords != "" {
		m.AddRows(
			row.New(8).Add(
				col.New(12).Add(
					text.New("Amount in words: "+data.AmountInWords, props.Text{
						Size:  8,
						Style: fontstyle.Italic,
						Align: align.Left,
					}),
				),
			),
		)
	}
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

package services

import (
	"fmt"
	"strings"

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

var (
	pdfMuted   = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfFaint   = &props.Color{Red: 140, Green: 140, Blue: 140}
	pdfHeadBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfStripe  = &props.Color{Red: 245, Green: 245, Blue: 245}
	pdfTotalBg = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// GeneratePDF creates a PDF document from quote export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfFaint,
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

// addHeader adds the company block, the quote title and the job details.
func addHeader(m core.Maroto, data ExportData) {
	var contact []string
	if data.Company.ABN != "" {
		contact = append(contact, "ABN "+data.Company.ABN)
	}
	if data.Company.Phone != "" {
		contact = append(contact, data.Company.Phone)
	}
	if data.Company.Email != "" {
		contact = append(contact, data.Company.Email)
	}

	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(
				text.New(data.Company.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left}),
			),
			col.New(5).Add(
				text.New(data.Title(), props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New(strings.Join(contact, "  |  "), props.Text{Size: 8, Align: align.Left, Color: pdfMuted}),
			),
		),
	)

	m.AddRows(row.New(4))

	meta := props.Text{Size: 9, Align: align.Left, Color: pdfMuted}
	metaRight := meta
	metaRight.Align = align.Right

	job := data.JobReference
	if data.JobNumber != "" {
		job = data.JobNumber + " - " + job
	}

	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New("Client: "+data.ClientName, meta)),
			col.New(4).Add(text.New("Date: "+data.Date, metaRight)),
		),
		row.New(6).Add(
			col.New(8).Add(text.New("Job: "+job, meta)),
			col.New(4).Add(text.New(validUntilLabel(data), metaRight)),
		),
	)
	if data.ProjectName != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Project: "+data.ProjectName, meta))))
	}

	m.AddRows(row.New(4))
}

func validUntilLabel(data ExportData) string {
	if data.ValidUntil == "" {
		return ""
	}
	return "Valid until: " + data.ValidUntil
}

// addTableHeader adds the column header row for the items table.
func addTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: pdfHeadBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Item", headerTextLeft)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Size", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Amount (excl. GST)", headerText)).WithStyle(&headerCell),
		),
	)
}

// addTableRow adds one item: product and reference on the first line, the
// selected options and notes below in smaller text.
func addTableRow(m core.Maroto, r ExportRow) {
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	left.Style = fontstyle.Bold
	right := base
	right.Align = align.Right

	var style *props.Cell
	if r.Index%2 == 0 {
		style = &props.Cell{BackgroundColor: pdfStripe}
	}

	title := r.Product
	if r.Reference != "" {
		title += " (" + r.Reference + ")"
	}

	cols := []core.Col{
		col.New(1).Add(text.New(fmt.Sprint(r.Index), base)),
		col.New(5).Add(text.New(title, left)),
		col.New(2).Add(text.New(r.Size(), base)),
		col.New(1).Add(text.New(formatQty(r.Quantity), base)),
		col.New(3).Add(text.New(FormatMoney(r.CostExclGST), right)),
	}
	if style != nil {
		for i := range cols {
			cols[i] = cols[i].WithStyle(style)
		}
	}
	m.AddRows(row.New(7).Add(cols...))

	detail := strings.Join(r.Options, ", ")
	if r.Notes != "" {
		if detail != "" {
			detail += ". "
		}
		detail += r.Notes
	}
	if detail == "" {
		return
	}

	detailText := props.Text{Size: 7, Align: align.Left, Color: pdfMuted}
	spacer := col.New(1)
	body := col.New(11).Add(text.New(detail, detailText))
	if style != nil {
		spacer = spacer.WithStyle(style)
		body = body.WithStyle(style)
	}
	m.AddRows(row.New(6).Add(spacer, body))
}

// addSummary adds the subtotal, GST and total rows.
func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: pdfTotalBg}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		label  string
		amount string
	}{
		{"Subtotal (excl. GST)", FormatMoney(data.Totals.ExclGST)},
		{fmt.Sprintf("GST (%s%%)", GSTRate.Shift(2).String()), FormatMoney(data.Totals.GST)},
		{"Total (incl. GST)", FormatMoney(data.Totals.InclGST)},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, label)).WithStyle(cell),
				col.New(4).Add(text.New(l.amount, value)).WithStyle(cell),
			),
		)
	}
}

// addFooter adds the approval state and validity note at the bottom.
func addFooter(m core.Maroto, data ExportData) {
	note := "This quote is an estimate and subject to site measure."
	if data.Approved {
		note = "Approved quote."
	}
	if data.ValidUntil != "" {
		note += " Valid until " + data.ValidUntil + "."
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(note, props.Text{Size: 7, Align: align.Left, Color: pdfFaint}),
			),
		),
	)
}

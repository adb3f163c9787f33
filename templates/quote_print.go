// Package templates renders the quote builder's HTML views.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"quotebuilder/services"
)

const printStyles = `body{font-family:Helvetica,Arial,sans-serif;font-size:12px;color:#212529;margin:24px}
header{display:flex;justify-content:space-between;align-items:flex-start}
h1{font-size:20px;margin:0}
.muted{color:#6c757d}
table{width:100%;border-collapse:collapse;margin-top:16px}
th{background:#212529;color:#fff;text-align:left;padding:6px}
td{padding:6px;border-bottom:1px solid #dee2e6;vertical-align:top}
td.num,th.num{text-align:right}
.detail{font-size:10px;color:#6c757d}
.totals td{font-weight:bold;background:#f0f0f0}
footer{margin-top:24px;font-size:10px;color:#6c757d}
@media print{body{margin:0}}`

// htmlWriter writes escaped fragments and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) tag(name, class, content string) {
	if class != "" {
		h.raw(fmt.Sprintf(`<%s class="%s">`, name, class))
	} else {
		h.raw("<" + name + ">")
	}
	h.text(content)
	h.raw("</" + name + ">")
}

// QuotePrint renders a standalone printable page for a quote.
func QuotePrint(data services.ExportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(data.Title())
		h.raw(`</title><style>` + printStyles + `</style></head><body>`)

		printHeader(h, data)
		printItems(h, data)
		printFooter(h, data)

		h.raw(`</body></html>`)
		return h.err
	})
}

func printHeader(h *htmlWriter, data services.ExportData) {
	h.raw(`<header><div>`)
	h.tag("h1", "", data.Company.Name)
	var contact []string
	if data.Company.ABN != "" {
		contact = append(contact, "ABN "+data.Company.ABN)
	}
	for _, c := range []string{data.Company.Phone, data.Company.Email} {
		if c != "" {
			contact = append(contact, c)
		}
	}
	if len(contact) > 0 {
		h.tag("div", "muted", strings.Join(contact, " | "))
	}
	h.raw(`</div><div>`)
	h.tag("h1", "", data.Title())
	h.tag("div", "muted", "Date: "+data.Date)
	if data.ValidUntil != "" {
		h.tag("div", "muted", "Valid until: "+data.ValidUntil)
	}
	h.raw(`</div></header><section>`)

	job := data.JobReference
	if data.JobNumber != "" {
		job = data.JobNumber + " - " + job
	}
	h.tag("div", "", "Client: "+data.ClientName)
	h.tag("div", "", "Job: "+job)
	if data.ProjectName != "" {
		h.tag("div", "", "Project: "+data.ProjectName)
	}
	h.raw(`</section>`)
}

func printItems(h *htmlWriter, data services.ExportData) {
	h.raw(`<table><thead><tr><th>#</th><th>Item</th><th>Size</th><th class="num">Qty</th>` +
		`<th class="num">Excl. GST</th><th class="num">Incl. GST</th></tr></thead><tbody>`)

	for _, r := range data.Rows {
		title := r.Product
		if r.Reference != "" {
			title += " (" + r.Reference + ")"
		}
		h.raw(`<tr>`)
		h.tag("td", "", fmt.Sprint(r.Index))
		h.raw(`<td>`)
		h.tag("div", "", title)
		if opts := r.OptionSummary(); opts != "" {
			h.tag("div", "detail", opts)
		}
		if r.Notes != "" {
			h.tag("div", "detail", r.Notes)
		}
		h.raw(`</td>`)
		h.tag("td", "", r.Size())
		h.tag("td", "num", r.Quantity.String())
		h.tag("td", "num", services.FormatMoney(r.CostExclGST))
		h.tag("td", "num", services.FormatMoney(r.CostInclGST))
		h.raw(`</tr>`)
	}
	if len(data.Rows) == 0 {
		h.raw(`<tr><td colspan="6" class="muted">No items</td></tr>`)
	}
	h.raw(`</tbody><tbody class="totals">`)

	gstLabel := fmt.Sprintf("GST (%s%%)", services.GSTRate.Shift(2).String())
	for _, line := range [][2]string{
		{"Subtotal (excl. GST)", services.FormatMoney(data.Totals.ExclGST)},
		{gstLabel, services.FormatMoney(data.Totals.GST)},
		{"Total (incl. GST)", services.FormatMoney(data.Totals.InclGST)},
	} {
		h.raw(`<tr><td colspan="5" class="num">`)
		h.text(line[0])
		h.raw(`</td>`)
		h.tag("td", "num", line[1])
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}

func printFooter(h *htmlWriter, data services.ExportData) {
	note := "This quote is an estimate and subject to site measure."
	if data.Approved {
		note = "Approved quote."
	}
	h.tag("footer", "", note)
}

// Package invoice renders a placed order as a one-page PDF.
package invoice

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Filename is the download name for o's invoice.
func Filename(o domain.Order) string { return "order_" + o.ID + ".pdf" }

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// column widths in mm; they add up to the A4 text width
var cols = [4]float64{100, 30, 25, 35}

// Render lays out the invoice for o. Amounts come from the order's item
// snapshots, never from current product prices.
func Render(o domain.Order) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+o.ID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Invoice", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Order "+o.ID, "", 1, "L", false, 0, "")
	if !o.CreatedAt.IsZero() {
		pdf.CellFormat(0, 5, o.CreatedAt.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{o.FullName(), o.Email, o.Address, o.ZipCode + ", " + o.Country} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Product", "Price", "Quantity", "Cost"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(cols[0], 7, tr(it.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, money(it.TotalPrice()), "1", 1, "R", false, 0, "")
	}

	label := cols[0] + cols[1] + cols[2]
	row := func(name, value string) {
		pdf.CellFormat(label, 7, name, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	row("Subtotal", money(o.TotalPrice()))
	if o.CouponCode != "" {
		row(fmt.Sprintf("Discount (%s)", tr(o.CouponCode)), "-"+money(o.Discount))
	}
	row(fmt.Sprintf("Tax (%s%%)", domain.TaxRate.Shift(2).String()), money(o.TaxDue()))
	pdf.SetFont("Helvetica", "B", 11)
	row("Total", money(o.AmountDue()))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Status: "+o.Status.Label(), "", 1, "L", false, 0, "")
	return pdf
}

// Write renders o and writes the PDF to w.
func Write(w io.Writer, o domain.Order) error {
	return Render(o).Output(w)
}

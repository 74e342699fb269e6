package infra

// receipt_pdf.go: printable receipts using go-pdf/fpdf.
// Layout, top to bottom:
//   - Restaurant name and bill number
//   - Date, session, order type, customer
//   - Item table (name + customizations, qty, price, amount)
//   - Item count, bold total, amount in words
//   - Cash / online paid lines
//
// The output file is saved to storagePath/receipt_{billNo}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"messpos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptPDFOptions carries the presentation settings of a receipt.
type ReceiptPDFOptions struct {
	RestaurantName string
	Location       *time.Location
	StoragePath    string
}

// GenerateReceiptPDF renders the receipt of a completed order and returns the
// path of the written file.
func GenerateReceiptPDF(order *model.Order, opts ReceiptPDFOptions) (string, error) {
	if err := os.MkdirAll(opts.StoragePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	filePath := filepath.Join(opts.StoragePath, fmt.Sprintf("receipt_%s.pdf", order.BillNo))

	// 80mm roll width; height grows with the number of item rows
	rows := 0
	for _, it := range order.Items {
		rows++
		if len(it.Customizations) > 0 {
			rows++
		}
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 110 + float64(rows)*5},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(opts.RestaurantName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Bill No: "+order.BillNo, "", 1, "C", false, 0, "")
	pdf.Ln(1)

	at := order.CompletedAt.In(loc)
	pdf.SetFont("Helvetica", "", 7)
	half := contentW / 2
	pdf.CellFormat(half, 4, "Date: "+at.Format("02/01/2006 03:04 PM"), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 4, "Session: "+titleCase(string(order.Session)), "", 1, "R", false, 0, "")
	pdf.CellFormat(half, 4, "Type: "+titleCase(string(order.OrderType)), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 4, fmt.Sprintf("Items: %d", order.TotalItems()), "", 1, "R", false, 0, "")
	if order.CustomerName != nil && *order.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Customer: "+*order.CustomerName), "", 1, "L", false, 0, "")
	}
	if order.CustomerPhone != nil && *order.CustomerPhone != "" {
		pdf.CellFormat(contentW, 4, "Phone: "+*order.CustomerPhone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.46
	col2 := contentW * 0.12
	col3 := contentW * 0.20
	col4 := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Amount", "B", 1, "R", false, 0, "")

	for _, it := range order.Items {
		name := it.Name
		if len(name) > 24 {
			name = name[:23] + "."
		}
		unit := it.UnitPrice.Add(it.ExtrasTotal())
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, unit.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, it.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
		if len(it.Customizations) > 0 {
			labels := make([]string, len(it.Customizations))
			for i, c := range it.Customizations {
				labels[i] = c.Label
			}
			pdf.SetFont("Helvetica", "I", 6)
			pdf.CellFormat(contentW, 4, tr("  + "+strings.Join(labels, ", ")), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2+col3, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Rs. "+order.Total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "I", 6)
	pdf.MultiCell(contentW, 3.5, AmountInWords(order.Total), "", "L", false)
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 7)
	if order.OnlinePayment.IsPositive() {
		pdf.CellFormat(col1+col2+col3, 4, "Online paid:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 4, order.OnlinePayment.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if order.CashPayment.IsPositive() {
		pdf.CellFormat(col1+col2+col3, 4, "Cash paid:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 4, order.CashPayment.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your visit!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ── Amount in words ──────────────────────────────────────────────────────────

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells an amount using Indian grouping (Thousand, Lakh, Crore),
// e.g. 1250.50 → "One Thousand Two Hundred Fifty Rupees and Fifty Paise Only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).IntPart()

	out := NumberToWords(rupees) + " Rupees"
	if paise > 0 {
		out += " and " + NumberToWords(paise) + " Paise"
	}
	return out + " Only"
}

// NumberToWords spells a non-negative integer in the Indian numbering system.
func NumberToWords(n int64) string {
	switch {
	case n == 0:
		return "Zero"
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		return tens[n/10] + suffix(n%10)
	case n < 1000:
		return ones[n/100] + " Hundred" + suffix(n%100)
	case n < 100000:
		return NumberToWords(n/1000) + " Thousand" + suffix(n%1000)
	case n < 10000000:
		return NumberToWords(n/100000) + " Lakh" + suffix(n%100000)
	default:
		return NumberToWords(n/10000000) + " Crore" + suffix(n%10000000)
	}
}

func suffix(rest int64) string {
	if rest == 0 {
		return ""
	}
	return " " + NumberToWords(rest)
}

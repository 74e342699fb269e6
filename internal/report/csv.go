package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"messpos/internal/model"
)

// Layouts used for the date and time columns of order tables and exports.
const (
	RowDateLayout = "2/1/2006"
	RowTimeLayout = "3:04:05 pm"
)

// CSVHeader is the column list of the sales export.
var CSVHeader = []string{
	"Bill No", "Date", "Time", "Customer Name", "Phone", "Session", "Order Type",
	"Total Items", "Total Amount", "Cash Payment", "Online Payment", "Payment Method",
}

// WriteCSV writes the sales export. Every field is quoted, including numbers,
// and missing values are written as "". encoding/csv only quotes when it has
// to, which is why rows are formatted here.
func WriteCSV(w io.Writer, orders []model.Order, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, CSVHeader); err != nil {
		return err
	}
	for i := range orders {
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
		if err := writeRow(bw, csvRecord(&orders[i], loc)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func csvRecord(o *model.Order, loc *time.Location) []string {
	at := o.CompletedAt.In(loc)
	method := string(o.PaymentMethod)
	if method == "" {
		method = string(model.PaymentCash)
	}
	return []string{
		o.BillNo,
		at.Format(RowDateLayout),
		at.Format(RowTimeLayout),
		Deref(o.CustomerName),
		Deref(o.CustomerPhone),
		string(o.Session),
		string(o.OrderType),
		strconv.Itoa(o.TotalItems()),
		o.Total.String(),
		o.CashPayment.String(),
		o.OnlinePayment.String(),
		method,
	}
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return nil
}

// Deref returns "" for a nil string.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

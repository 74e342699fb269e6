package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"messpos/internal/model"
	"messpos/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, nil, time.UTC))
	assert.Equal(t,
		`"Bill No","Date","Time","Customer Name","Phone","Session","Order Type","Total Items","Total Amount","Cash Payment","Online Payment","Payment Method"`,
		buf.String())
}

func TestWriteCSV_NullCustomerRendersEmpty(t *testing.T) {
	o := order(model.SessionMorning, 50, 50, 0, item("Idli", 2), item("Vada", 1))
	o.BillNo = "2026101512"
	o.PaymentMethod = model.PaymentCash
	o.CompletedAt = time.Date(2026, 10, 5, 14, 7, 9, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, []model.Order{o}, time.UTC))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`"2026101512","5/10/2026","2:07:09 pm","","","morning","dine-in","3","50","50","0","cash"`,
		lines[1])
	assert.NotContains(t, lines[1], "null")
}

func TestWriteCSV_EscapesQuotesAndDefaultsMethod(t *testing.T) {
	name := `Ravi "RK" Kumar`
	phone := "98400 12345"
	o := order(model.SessionNight, 30, 15, 15)
	o.CustomerName = &name
	o.CustomerPhone = &phone

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, []model.Order{o}, time.UTC))

	row := strings.Split(buf.String(), "\n")[1]
	assert.Contains(t, row, `"Ravi ""RK"" Kumar","98400 12345"`)
	assert.True(t, strings.HasSuffix(row, `"cash"`))
}

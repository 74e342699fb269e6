package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"messpos/internal/dto"
	"messpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday 15 Oct 2026, 18:00 UTC.
var reportNow = time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

func reportOrder(billNo string, at time.Time, session model.Session, total int64, items ...string) *model.Order {
	o := &model.Order{
		ID: uuid.New(), BillNo: billNo, TerminalID: "t1", Session: session, OrderType: model.OrderTypeDineIn,
		Total: decimal.NewFromInt(total), CashPayment: decimal.NewFromInt(total), OnlinePayment: decimal.Zero,
		PaymentMethod: model.PaymentCash, CompletedAt: at,
	}
	for _, name := range items {
		o.Items = append(o.Items, model.OrderItem{Name: name, Quantity: 1})
	}
	return o
}

func newReportFixture() (*reportService, *stubOrderRepo) {
	repo := &stubOrderRepo{orders: []*model.Order{
		reportOrder("202610151", reportNow.Add(-9*time.Hour), model.SessionMorning, 40, "Idli", "Tea"),
		reportOrder("202610152", reportNow.Add(-1*time.Hour), model.SessionNight, 120, "Biryani"),
		reportOrder("202610131", time.Date(2026, 10, 13, 12, 0, 0, 0, time.UTC), model.SessionAfternoon, 60, "Meals"),
		reportOrder("202610021", time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC), model.SessionAfternoon, 80, "Meals"),
		reportOrder("202603011", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), model.SessionMorning, 25, "Dosa"),
		reportOrder("202512311", time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC), model.SessionNight, 500, "Biryani"),
	}}
	svc := NewReportService(repo, time.UTC).(*reportService)
	svc.now = func() time.Time { return reportNow }
	return svc, repo
}

func TestReportService_Summary(t *testing.T) {
	svc, _ := newReportFixture()

	resp, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Today.TotalOrders)
	assert.True(t, decimal.NewFromInt(160).Equal(resp.Today.TotalRevenue))
	assert.Equal(t, 3, resp.Week.TotalOrders)
	assert.Equal(t, 4, resp.Month.TotalOrders)
	assert.Equal(t, 5, resp.Year.TotalOrders)
	require.Len(t, resp.TodayItemSales, 3)
	assert.Equal(t, 1, resp.TodayItemSales[0].Total)
}

func TestReportService_ReportBySessionAndPeriod(t *testing.T) {
	svc, _ := newReportFixture()

	resp, err := svc.Report(context.Background(), dto.ReportQuery{Period: "month", Session: "afternoon"})
	require.NoError(t, err)

	assert.Equal(t, "month", resp.Period)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "afternoon", *resp.Session)
	assert.Equal(t, 2, resp.Stats.TotalOrders)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, "202610131", resp.Orders[0].BillNo)
	assert.Equal(t, "13/10/2026", resp.Orders[0].Date)
	assert.Equal(t, "12:00:00 pm", resp.Orders[0].Time)
	assert.Equal(t, "Cash", resp.Orders[0].Payment)
	require.Len(t, resp.Trend, 6)
	assert.Equal(t, "Oct 26", resp.Trend[5].Label)
	assert.True(t, decimal.NewFromInt(140).Equal(resp.Trend[5].Revenue))
}

func TestReportService_CustomRangeWithOpenStart(t *testing.T) {
	svc, repo := newReportFixture()

	resp, err := svc.Report(context.Background(), dto.ReportQuery{Period: "custom", End: "2026-03-31"})
	require.NoError(t, err)

	assert.Nil(t, repo.lastQuery.Start)
	assert.Equal(t, 2, resp.Stats.TotalOrders)
	assert.Nil(t, resp.Start)
}

func TestReportService_RejectsBadInput(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.Report(context.Background(), dto.ReportQuery{Period: "decade"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = svc.Report(context.Background(), dto.ReportQuery{Period: "custom", Start: "2026-10-10", End: "2026-10-01"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestReportService_ExportCSV(t *testing.T) {
	svc, _ := newReportFixture()
	var buf bytes.Buffer

	require.NoError(t, svc.ExportCSV(context.Background(), dto.ReportQuery{Period: "today"}, &buf))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `"Bill No","Date"`))
	assert.True(t, strings.HasPrefix(lines[1], `"202610152"`))
}

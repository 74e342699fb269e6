package service

import (
	"context"
	"testing"
	"time"

	"messpos/internal/dto"
	"messpos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_ListAppliesFilter(t *testing.T) {
	_, repo := newReportFixture()
	svc := NewOrderService(repo, newStubReceiptRepo(), time.UTC).(*orderService)
	svc.now = func() time.Time { return reportNow }

	resp, err := svc.List(context.Background(), dto.OrderFilter{Period: "week", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, "202610152", resp.Data[0].BillNo)

	resp, err = svc.List(context.Background(), dto.OrderFilter{Session: "night", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 10, repo.lastQuery.Offset)
	assert.Nil(t, repo.lastQuery.Start)
}

func TestOrderService_ReceiptPath(t *testing.T) {
	_, repo := newReportFixture()
	receipts := newStubReceiptRepo()
	svc := NewOrderService(repo, receipts, time.UTC)
	order := repo.orders[0]

	_, err := svc.ReceiptPath(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	receipts.byOrder[order.ID] = &model.Receipt{OrderID: order.ID, Status: model.ReceiptPending}
	_, err = svc.ReceiptPath(context.Background(), order.BillNo)
	assert.ErrorIs(t, err, ErrReceiptNotReady)

	path := "/var/receipts/receipt_202610151.pdf"
	receipts.byOrder[order.ID] = &model.Receipt{OrderID: order.ID, Status: model.ReceiptGenerated, PDFPath: &path}
	got, err := svc.ReceiptPath(context.Background(), order.BillNo)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	detail, err := svc.GetByBillNo(context.Background(), order.BillNo)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptGenerated, detail.ReceiptStatus)
	assert.Equal(t, 2, detail.TotalItems)
}

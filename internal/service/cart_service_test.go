package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"messpos/internal/cart"
	"messpos/internal/dto"
	"messpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 9, 15, 0, 0, time.UTC)

type cartFixture struct {
	svc        *cartService
	store      *stubCartStore
	counters   *stubCounterRepo
	orders     *stubOrderRepo
	receipts   *stubReceiptRepo
	dispatcher *recordingDispatcher
}

func newCartFixture() *cartFixture {
	menu := newStubMenuRepo(
		model.MenuItem{ID: 1, Name: "Idli", Price: decimal.NewFromInt(15), Category: "Breakfast", Active: true,
			Sessions: []model.Session{model.SessionMorning}},
		model.MenuItem{ID: 2, Name: "Dosa", Price: decimal.NewFromInt(25), Category: "Breakfast", Active: true,
			Sessions: []model.Session{model.SessionMorning, model.SessionNight},
			Customizations: []model.CustomizationOption{
				{Name: "Extra Ghee", Type: model.OptionCheckbox, Price: decimal.NewFromInt(10)},
				{Name: "Spice", Type: model.OptionRadio, Options: []model.RadioChoice{
					{Label: "Medium", Price: decimal.Zero},
					{Label: "Hot", Price: decimal.NewFromInt(2)},
				}},
			}},
	)
	f := &cartFixture{
		store:      newStubCartStore(),
		counters:   newStubCounterRepo(),
		orders:     &stubOrderRepo{},
		receipts:   newStubReceiptRepo(),
		dispatcher: &recordingDispatcher{},
	}
	seq := NewBillSequencer(f.counters, nil, time.UTC)
	f.svc = NewCartService(f.store, menu, f.orders, f.receipts, seq, f.dispatcher).(*cartService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *cartFixture) add(t *testing.T, terminal string, req dto.AddCartItemRequest) *dto.CartResponse {
	t.Helper()
	resp, err := f.svc.AddItem(context.Background(), terminal, req)
	require.NoError(t, err)
	return resp
}

func dp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ── Cart editing ─────────────────────────────────────────────────────────────

func TestCartService_AddMergesPlainItems(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	resp := f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(resp.Total))
	assert.Equal(t, 2, resp.TotalItems)
	assert.Nil(t, resp.PendingBillNo)
}

func TestCartService_AddResolvesCustomizations(t *testing.T) {
	f := newCartFixture()
	resp := f.add(t, "t1", dto.AddCartItemRequest{
		MenuItemID: 2,
		Checkboxes: []string{"Extra Ghee"},
		Radios:     map[string]string{"Spice": "Hot"},
	})

	require.Len(t, resp.Lines, 1)
	line := resp.Lines[0]
	require.Len(t, line.Customizations, 2)
	assert.Equal(t, "Extra Ghee", line.Customizations[0].Label)
	assert.Equal(t, "Hot", line.Customizations[1].Label)
	assert.True(t, decimal.NewFromInt(37).Equal(line.LineTotal))
}

func TestCartService_AddUnknownItem(t *testing.T) {
	f := newCartFixture()
	_, err := f.svc.AddItem(context.Background(), "t1", dto.AddCartItemRequest{MenuItemID: 99})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestCartService_AddUnknownOption(t *testing.T) {
	f := newCartFixture()
	_, err := f.svc.AddItem(context.Background(), "t1", dto.AddCartItemRequest{MenuItemID: 2, Checkboxes: []string{"Cheese"}})
	assert.ErrorIs(t, err, cart.ErrUnknownOption)
}

func TestCartService_ChangeQuantityToZeroRemovesLine(t *testing.T) {
	f := newCartFixture()
	resp := f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})

	resp, err := f.svc.ChangeQuantity(context.Background(), "t1", resp.Lines[0].LineID, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
}

func TestCartService_SetDetailsKeepsUnsetFields(t *testing.T) {
	f := newCartFixture()
	night, name := "night", "Ravi"
	_, err := f.svc.SetDetails(context.Background(), "t1", dto.CartDetailsRequest{Session: &night, CustomerName: &name})
	require.NoError(t, err)

	parcel := "parcel"
	resp, err := f.svc.SetDetails(context.Background(), "t1", dto.CartDetailsRequest{OrderType: &parcel})
	require.NoError(t, err)
	assert.Equal(t, model.SessionNight, resp.Session)
	assert.Equal(t, model.OrderTypeParcel, resp.OrderType)
	assert.Equal(t, "Ravi", resp.CustomerName)
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func TestCartService_CheckoutEmptyCart(t *testing.T) {
	f := newCartFixture()
	_, err := f.svc.Checkout(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, f.counters.calls)
}

func TestCartService_CheckoutReusesPendingNumber(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})

	first, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)
	second, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "202610151", first.BillNo)
	assert.Equal(t, first.BillNo, second.BillNo)
	assert.Equal(t, 1, f.counters.calls)
	require.NotNil(t, second.Cart.PendingBillNo)
}

func TestCartService_CheckoutWhileLocked(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	f.store.locked["t1"] = "held-elsewhere"

	_, err := f.svc.Checkout(context.Background(), "t1")

	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Equal(t, 0, f.counters.calls)
	assert.Empty(t, f.store.carts["t1"].PendingBillNo)
	assert.Equal(t, "held-elsewhere", f.store.locked["t1"])
}

func TestCartService_CheckoutReleasesLock(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})

	_, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)
	_, err = f.svc.Checkout(context.Background(), "t2")
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Equal(t, 2, f.store.locks)
	assert.Empty(t, f.store.locked)
}

func TestCartService_ClearDropsPendingNumber(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	night, parcel, name := "night", "parcel", "Asha"
	_, err := f.svc.SetDetails(context.Background(), "t1",
		dto.CartDetailsRequest{Session: &night, OrderType: &parcel, CustomerName: &name})
	require.NoError(t, err)
	_, err = f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(context.Background(), "t1"))
	cleared, err := f.svc.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, cleared.Lines)
	assert.Nil(t, cleared.PendingBillNo)
	assert.Equal(t, model.SessionMorning, cleared.Session)
	assert.Equal(t, model.OrderTypeDineIn, cleared.OrderType)
	assert.Empty(t, cleared.CustomerName)

	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	next, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "202610152", next.BillNo)
}

// ── Complete ─────────────────────────────────────────────────────────────────

func TestCartService_CompleteCash(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 2})
	email := "guest@example.com"

	resp, err := f.svc.Complete(context.Background(), "t1", nil,
		dto.CompleteOrderRequest{PaymentMethod: "cash", CustomerEmail: &email})
	require.NoError(t, err)

	assert.Equal(t, "202610151", resp.BillNo)
	assert.True(t, decimal.NewFromInt(40).Equal(resp.Total))
	assert.True(t, decimal.NewFromInt(40).Equal(resp.CashPayment))
	assert.True(t, resp.OnlinePayment.IsZero())
	assert.Equal(t, model.ReceiptPending, resp.ReceiptStatus)
	assert.Equal(t, fixedNow, resp.CompletedAt)

	require.Len(t, f.orders.orders, 1)
	saved := f.orders.orders[0]
	assert.Equal(t, 0, saved.Items[0].Position)
	assert.Equal(t, "Idli", saved.Items[0].Name)
	assert.Equal(t, "Medium", saved.Items[1].Customizations[0].Label)

	rc := f.receipts.byOrder[saved.ID]
	require.NotNil(t, rc)
	assert.Equal(t, &email, rc.CustomerEmail)
	require.NotNil(t, rc.NextRetryAt)

	require.Len(t, f.dispatcher.receipts, 1)
	assert.Equal(t, saved.ID.String(), f.dispatcher.receipts[0].OrderID)
	require.Len(t, f.dispatcher.notifies, 1)
	assert.Equal(t, 2, f.dispatcher.notifies[0].TotalItems)

	_, stillThere := f.store.carts["t1"]
	assert.False(t, stillThere)
	assert.NotContains(t, f.store.locked, "t1")
}

func TestCartService_CompleteSplit(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 2})

	resp, err := f.svc.Complete(context.Background(), "t1", nil,
		dto.CompleteOrderRequest{PaymentMethod: "split", CashPayment: dp(20), OnlinePayment: dp(5)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(resp.CashPayment))
	assert.True(t, decimal.NewFromInt(5).Equal(resp.OnlinePayment))
}

func TestCartService_CompleteSplitMismatchWritesNothing(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 2})

	_, err := f.svc.Complete(context.Background(), "t1", nil,
		dto.CompleteOrderRequest{PaymentMethod: "split", CashPayment: dp(20), OnlinePayment: dp(10)})

	assert.ErrorIs(t, err, ErrPaymentMismatch)
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 0, f.counters.calls)
	assert.Empty(t, f.dispatcher.receipts)
	assert.Len(t, f.store.carts["t1"].Lines, 1)
}

func TestCartService_CompleteSplitSubCentWritesNothing(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 2})
	cash, online := decimal.RequireFromString("12.505"), decimal.RequireFromString("12.495")

	_, err := f.svc.Complete(context.Background(), "t1", nil,
		dto.CompleteOrderRequest{PaymentMethod: "split", CashPayment: &cash, OnlinePayment: &online})

	assert.ErrorIs(t, err, ErrPaymentPrecision)
	assert.Empty(t, f.orders.orders)
	assert.Equal(t, 0, f.counters.calls)
	assert.NotContains(t, f.store.locked, "t1")
}

func TestCartService_CompleteEmptyCart(t *testing.T) {
	f := newCartFixture()
	_, err := f.svc.Complete(context.Background(), "t1", nil, dto.CompleteOrderRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.NotContains(t, f.store.locked, "t1")
}

func TestCartService_CompleteWhileLocked(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	f.store.locked["t1"] = "held-elsewhere"

	_, err := f.svc.Complete(context.Background(), "t1", nil, dto.CompleteOrderRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Empty(t, f.orders.orders)
}

func TestCartService_CompleteRetryReturnsStoredOrder(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	_, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)

	// The first completion was saved but the cart survived, e.g. a lost response.
	existing := &model.Order{ID: uuid.New(), BillNo: "202610151", TerminalID: "t1", Total: decimal.NewFromInt(15)}
	f.orders.orders = append(f.orders.orders, existing)

	resp, err := f.svc.Complete(context.Background(), "t1", nil, dto.CompleteOrderRequest{PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), resp.ID)
	assert.Len(t, f.orders.orders, 1)
	assert.Empty(t, f.dispatcher.receipts)
	_, stillThere := f.store.carts["t1"]
	assert.False(t, stillThere)
}

func TestCartService_CompleteCollisionFromOtherTerminal(t *testing.T) {
	f := newCartFixture()
	f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
	_, err := f.svc.Checkout(context.Background(), "t1")
	require.NoError(t, err)
	f.orders.orders = append(f.orders.orders, &model.Order{ID: uuid.New(), BillNo: "202610151", TerminalID: "t2"})

	_, err = f.svc.Complete(context.Background(), "t1", nil, dto.CompleteOrderRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, ErrBillConflict)
}

func TestCartService_CompleteKeepsCounterMonotonic(t *testing.T) {
	f := newCartFixture()
	for i := 1; i <= 3; i++ {
		f.add(t, "t1", dto.AddCartItemRequest{MenuItemID: 1})
		resp, err := f.svc.Complete(context.Background(), "t1", nil, dto.CompleteOrderRequest{PaymentMethod: "online"})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("20261015%d", i), resp.BillNo)
		assert.True(t, resp.CashPayment.IsZero())
	}
}

// ── Payment and order validation ────────────────────────────────────────────

func TestResolvePayments(t *testing.T) {
	total := decimal.NewFromInt(100)

	cash, online, err := ResolvePayments(model.PaymentCash, total, dp(3), nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(cash))
	assert.True(t, online.IsZero())

	cash, online, err = ResolvePayments(model.PaymentOnline, total, nil, nil)
	require.NoError(t, err)
	assert.True(t, cash.IsZero())
	assert.True(t, total.Equal(online))

	_, _, err = ResolvePayments(model.PaymentSplit, total, dp(100), nil)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	_, _, err = ResolvePayments(model.PaymentSplit, total, dp(120), dp(-20))
	assert.ErrorIs(t, err, ErrNegativePayment)

	_, _, err = ResolvePayments(model.PaymentSplit, total, dp(60), dp(30))
	assert.ErrorIs(t, err, ErrPaymentMismatch)

	// Adds up exactly, but each half would round to 15.01 + 15.00 in storage.
	thirty := decimal.NewFromInt(30)
	subCash, subOnline := decimal.RequireFromString("15.005"), decimal.RequireFromString("14.995")
	_, _, err = ResolvePayments(model.PaymentSplit, thirty, &subCash, &subOnline)
	assert.ErrorIs(t, err, ErrPaymentPrecision)

	halves, halvesOnline := decimal.RequireFromString("15.50"), decimal.RequireFromString("14.5")
	cash, online, err = ResolvePayments(model.PaymentSplit, thirty, &halves, &halvesOnline)
	require.NoError(t, err)
	assert.Equal(t, "15.50", cash.StringFixed(2))
	assert.Equal(t, "14.50", online.StringFixed(2))

	cash, online, err = ResolvePayments(model.PaymentSplit, total, dp(0), dp(100))
	require.NoError(t, err)
	assert.True(t, cash.IsZero())
	assert.True(t, total.Equal(online))

	_, _, err = ResolvePayments("card", total, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func validOrder() *model.Order {
	return &model.Order{
		BillNo:    "202610151",
		Session:   model.SessionMorning,
		OrderType: model.OrderTypeDineIn,
		Items: []model.OrderItem{{
			Name: "Dosa", UnitPrice: decimal.NewFromInt(25), Quantity: 2,
			Customizations: []model.Customization{{Label: "Extra Ghee", ExtraPrice: decimal.NewFromInt(10)}},
			LineTotal:      decimal.NewFromInt(70),
		}},
		Total:         decimal.NewFromInt(70),
		CashPayment:   decimal.NewFromInt(70),
		OnlinePayment: decimal.Zero,
		PaymentMethod: model.PaymentCash,
	}
}

func TestValidateOrder(t *testing.T) {
	require.NoError(t, ValidateOrder(validOrder()))

	cases := map[string]func(o *model.Order){
		"no items":         func(o *model.Order) { o.Items = nil },
		"zero quantity":    func(o *model.Order) { o.Items[0].Quantity = 0 },
		"bad session":      func(o *model.Order) { o.Session = "brunch" },
		"bad order type":   func(o *model.Order) { o.OrderType = "delivery" },
		"bad line total":   func(o *model.Order) { o.Items[0].LineTotal = decimal.NewFromInt(60) },
		"total mismatch":   func(o *model.Order) { o.Total = decimal.NewFromInt(71) },
		"payment mismatch": func(o *model.Order) { o.CashPayment = decimal.NewFromInt(69) },
		"sub-cent payment": func(o *model.Order) {
			o.CashPayment = decimal.RequireFromString("35.005")
			o.OnlinePayment = decimal.RequireFromString("34.995")
		},
		"missing bill no":  func(o *model.Order) { o.BillNo = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := validOrder()
			mutate(o)
			assert.Error(t, ValidateOrder(o))
		})
	}
}

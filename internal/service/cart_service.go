package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"messpos/internal/cart"
	"messpos/internal/dto"
	"messpos/internal/model"
	"messpos/internal/repository"
	"messpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrPaymentRequired    = errors.New("split payment requires cash_payment and online_payment")
	ErrNegativePayment    = errors.New("payment amounts cannot be negative")
	ErrPaymentMismatch    = errors.New("cash_payment + online_payment must equal the order total")
	ErrPaymentPrecision   = errors.New("payment amounts allow at most 2 decimal places")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress for this terminal")
	ErrBillConflict       = errors.New("bill number already used by another terminal")
)

const (
	checkoutLockTTL = 30 * time.Second
	// receiptSafetyDelay lets the retry cron pick up a receipt whose first job
	// never ran.
	receiptSafetyDelay = 2 * time.Minute
)

// JobDispatcher is implemented by *worker.Dispatcher.
type JobDispatcher interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) error
	EnqueueNotify(ctx context.Context, payload worker.NotifyJobPayload) error
}

type CartService interface {
	Get(ctx context.Context, terminalID string) (*dto.CartResponse, error)
	AddItem(ctx context.Context, terminalID string, req dto.AddCartItemRequest) (*dto.CartResponse, error)
	ChangeQuantity(ctx context.Context, terminalID, lineID string, delta int) (*dto.CartResponse, error)
	RemoveLine(ctx context.Context, terminalID, lineID string) (*dto.CartResponse, error)
	SetDetails(ctx context.Context, terminalID string, req dto.CartDetailsRequest) (*dto.CartResponse, error)
	Clear(ctx context.Context, terminalID string) error
	Checkout(ctx context.Context, terminalID string) (*dto.CheckoutResponse, error)
	Complete(ctx context.Context, terminalID string, userID *uuid.UUID, req dto.CompleteOrderRequest) (*dto.OrderResponse, error)
}

type cartService struct {
	store       cart.Store
	menuRepo    repository.MenuRepository
	orderRepo   repository.OrderRepository
	receiptRepo repository.ReceiptRepository
	sequencer   BillSequencer
	dispatcher  JobDispatcher
	now         func() time.Time
}

func NewCartService(
	store cart.Store,
	menuRepo repository.MenuRepository,
	orderRepo repository.OrderRepository,
	receiptRepo repository.ReceiptRepository,
	sequencer BillSequencer,
	dispatcher JobDispatcher,
) CartService {
	return &cartService{
		store:       store,
		menuRepo:    menuRepo,
		orderRepo:   orderRepo,
		receiptRepo: receiptRepo,
		sequencer:   sequencer,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Cart editing ─────────────────────────────────────────────────────────────

func (s *cartService) Get(ctx context.Context, terminalID string) (*dto.CartResponse, error) {
	c, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

func (s *cartService) AddItem(ctx context.Context, terminalID string, req dto.AddCartItemRequest) (*dto.CartResponse, error) {
	item, err := s.menuRepo.FindByID(ctx, req.MenuItemID)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}
	customs, err := cart.ResolveCustomizations(item, cart.Selection{Checkboxes: req.Checkboxes, Radios: req.Radios})
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, terminalID, func(c *cart.Cart) error {
		_, err := c.Add(item, customs)
		return err
	})
}

func (s *cartService) ChangeQuantity(ctx context.Context, terminalID, lineID string, delta int) (*dto.CartResponse, error) {
	return s.mutate(ctx, terminalID, func(c *cart.Cart) error {
		return c.ChangeQuantity(lineID, delta)
	})
}

func (s *cartService) RemoveLine(ctx context.Context, terminalID, lineID string) (*dto.CartResponse, error) {
	return s.mutate(ctx, terminalID, func(c *cart.Cart) error {
		return c.Remove(lineID)
	})
}

func (s *cartService) SetDetails(ctx context.Context, terminalID string, req dto.CartDetailsRequest) (*dto.CartResponse, error) {
	return s.mutate(ctx, terminalID, func(c *cart.Cart) error {
		session, orderType := c.Session, c.OrderType
		name, phone := c.CustomerName, c.CustomerPhone
		if req.Session != nil {
			session = model.Session(*req.Session)
		}
		if req.OrderType != nil {
			orderType = model.OrderType(*req.OrderType)
		}
		if req.CustomerName != nil {
			name = *req.CustomerName
		}
		if req.CustomerPhone != nil {
			phone = *req.CustomerPhone
		}
		return c.SetDetails(session, orderType, name, phone)
	})
}

func (s *cartService) Clear(ctx context.Context, terminalID string) error {
	return s.store.Delete(ctx, terminalID)
}

func (s *cartService) mutate(ctx context.Context, terminalID string, fn func(c *cart.Cart) error) (*dto.CartResponse, error) {
	c, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// ── Checkout ─────────────────────────────────────────────────────────────────
// A bill number is issued once per non-empty cart and kept in the cart until
// the order is saved, so abandoning and reopening the payment step does not
// burn counter values.

func (s *cartService) Checkout(ctx context.Context, terminalID string) (*dto.CheckoutResponse, error) {
	unlock, err := s.lockCheckout(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	bn, err := s.ensureBillNumber(ctx, c)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{
		BillNo:   bn.Value,
		Degraded: bn.Degraded,
		Warning:  bn.Warning,
		Total:    c.Total(),
		Cart:     *toCartResponse(c),
	}, nil
}

// lockCheckout takes the terminal's checkout lock and returns its release.
func (s *cartService) lockCheckout(ctx context.Context, terminalID string) (func(), error) {
	token, ok, err := s.store.Lock(ctx, terminalID, checkoutLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCheckoutInProgress
	}
	return func() {
		if err := s.store.Unlock(context.WithoutCancel(ctx), terminalID, token); err != nil {
			log.Warn().Err(err).Str("terminal", terminalID).Msg("failed to release checkout lock")
		}
	}, nil
}

func (s *cartService) ensureBillNumber(ctx context.Context, c *cart.Cart) (BillNumber, error) {
	if c.PendingBillNo != "" {
		return BillNumber{Value: c.PendingBillNo, Degraded: c.PendingDegraded}, nil
	}
	bn, err := s.sequencer.NextBillNumber(ctx, s.sequencer.DateKey(s.now()))
	if err != nil {
		return BillNumber{}, err
	}
	c.PendingBillNo = bn.Value
	c.PendingDegraded = bn.Degraded
	if err := s.store.Save(ctx, c); err != nil {
		return BillNumber{}, err
	}
	return bn, nil
}

// ── Complete ─────────────────────────────────────────────────────────────────
//   1. Take the per-terminal checkout lock (409 when held)
//   2. Issue or reuse the bill number
//   3. Resolve and validate payments, build and validate the order
//   4. TX: insert order + receipt row
//   5. Clear the cart, enqueue receipt + notify jobs (best-effort)

func (s *cartService) Complete(ctx context.Context, terminalID string, userID *uuid.UUID, req dto.CompleteOrderRequest) (*dto.OrderResponse, error) {
	unlock, err := s.lockCheckout(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.store.Load(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total := c.Total()
	cash, online, err := ResolvePayments(model.PaymentMethod(req.PaymentMethod), total, req.CashPayment, req.OnlinePayment)
	if err != nil {
		return nil, err
	}

	bn, err := s.ensureBillNumber(ctx, c)
	if err != nil {
		return nil, err
	}

	if existing, err := s.orderRepo.FindByBillNo(ctx, bn.Value); err == nil {
		return s.resolveDuplicate(ctx, c, existing)
	}

	order := buildOrder(c, bn.Value, userID, model.PaymentMethod(req.PaymentMethod), cash, online, s.now())
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}

	retryAt := order.CompletedAt.Add(receiptSafetyDelay)
	rc := &model.Receipt{
		ID:            uuid.New(),
		OrderID:       order.ID,
		BillNo:        order.BillNo,
		Status:        model.ReceiptPending,
		CustomerEmail: req.CustomerEmail,
		NextRetryAt:   &retryAt,
	}

	txErr := runTx(ctx, s.orderRepo.DB(), func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.receiptRepo.Create(ctx, tx, rc)
	})
	if txErr != nil {
		// Lost a race on the unique bill number.
		if existing, err := s.orderRepo.FindByBillNo(ctx, bn.Value); err == nil {
			return s.resolveDuplicate(ctx, c, existing)
		}
		return nil, fmt.Errorf("save order %s: %w", bn.Value, txErr)
	}

	if err := s.store.Delete(ctx, terminalID); err != nil {
		log.Warn().Err(err).Str("terminal", terminalID).Msg("order saved but cart could not be cleared")
	}
	s.dispatchJobs(ctx, order)

	log.Info().Str("bill_no", order.BillNo).Str("terminal", terminalID).
		Str("total", order.Total.StringFixed(2)).Bool("degraded", bn.Degraded).Msg("order completed")

	resp := toOrderResponse(order, rc.Status)
	resp.Degraded = bn.Degraded
	return &resp, nil
}

// resolveDuplicate handles a bill number that is already stored. From the
// same terminal it is a retried completion and the stored order is returned;
// otherwise two terminals collided on a fallback number.
func (s *cartService) resolveDuplicate(ctx context.Context, c *cart.Cart, existing *model.Order) (*dto.OrderResponse, error) {
	if existing.TerminalID != c.TerminalID {
		log.Error().Str("bill_no", existing.BillNo).Str("terminal", c.TerminalID).
			Str("owner", existing.TerminalID).Msg("bill number collision")
		return nil, ErrBillConflict
	}
	if err := s.store.Delete(ctx, c.TerminalID); err != nil {
		log.Warn().Err(err).Str("terminal", c.TerminalID).Msg("failed to clear cart after duplicate completion")
	}
	status := ""
	if rc, err := s.receiptRepo.FindByOrderID(ctx, existing.ID); err == nil {
		status = rc.Status
	}
	resp := toOrderResponse(existing, status)
	return &resp, nil
}

func (s *cartService) dispatchJobs(ctx context.Context, o *model.Order) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{OrderID: o.ID.String()}); err != nil {
		log.Warn().Err(err).Str("bill_no", o.BillNo).Msg("failed to enqueue receipt job")
	}
	if err := s.dispatcher.EnqueueNotify(ctx, notifyPayload(o)); err != nil {
		log.Warn().Err(err).Str("bill_no", o.BillNo).Msg("failed to enqueue notify job")
	}
}

// ResolvePayments splits total into cash and online amounts for method.
// Cash and online take the whole total; split needs both amounts and they
// must add up exactly.
func ResolvePayments(method model.PaymentMethod, total decimal.Decimal, cash, online *decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	switch method {
	case model.PaymentCash:
		return total, decimal.Zero, nil
	case model.PaymentOnline:
		return decimal.Zero, total, nil
	case model.PaymentSplit:
		if cash == nil || online == nil {
			return decimal.Zero, decimal.Zero, ErrPaymentRequired
		}
		if cash.IsNegative() || online.IsNegative() {
			return decimal.Zero, decimal.Zero, ErrNegativePayment
		}
		// Stored as numeric(12,2); sub-cent amounts would be rounded on insert.
		if !isCents(*cash) || !isCents(*online) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s, %s", ErrPaymentPrecision, cash.String(), online.String())
		}
		if !cash.Add(*online).Equal(total) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s + %s != %s", ErrPaymentMismatch,
				cash.StringFixed(2), online.StringFixed(2), total.StringFixed(2))
		}
		return *cash, *online, nil
	}
	return decimal.Zero, decimal.Zero, fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, method)
}

func isCents(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

// ValidateOrder checks the shape of an order before it is written.
func ValidateOrder(o *model.Order) error {
	if o.BillNo == "" {
		return fmt.Errorf("%w: missing bill number", ErrInvalidOrder)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	if !o.Session.Valid() {
		return fmt.Errorf("%w: session %q", ErrInvalidOrder, o.Session)
	}
	if !o.OrderType.Valid() {
		return fmt.Errorf("%w: order type %q", ErrInvalidOrder, o.OrderType)
	}
	if !o.PaymentMethod.Valid() {
		return fmt.Errorf("%w: payment method %q", ErrInvalidOrder, o.PaymentMethod)
	}
	sum := decimal.Zero
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: %s has quantity %d", ErrInvalidOrder, it.Name, it.Quantity)
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		want := it.UnitPrice.Add(it.ExtrasTotal()).Mul(qty)
		if !it.LineTotal.Equal(want) {
			return fmt.Errorf("%w: line total of %s", ErrInvalidOrder, it.Name)
		}
		sum = sum.Add(it.LineTotal)
	}
	if !sum.Equal(o.Total) {
		return fmt.Errorf("%w: total does not match items", ErrInvalidOrder)
	}
	if !isCents(o.CashPayment) || !isCents(o.OnlinePayment) {
		return ErrPaymentPrecision
	}
	if !o.CashPayment.Add(o.OnlinePayment).Equal(o.Total) {
		return ErrPaymentMismatch
	}
	return nil
}

func buildOrder(c *cart.Cart, billNo string, userID *uuid.UUID, method model.PaymentMethod, cash, online decimal.Decimal, now time.Time) *model.Order {
	o := &model.Order{
		ID:            uuid.New(),
		BillNo:        billNo,
		TerminalID:    c.TerminalID,
		UserID:        userID,
		Session:       c.Session,
		OrderType:     c.OrderType,
		CustomerName:  optional(c.CustomerName),
		CustomerPhone: optional(c.CustomerPhone),
		Total:         c.Total(),
		CashPayment:   cash,
		OnlinePayment: online,
		PaymentMethod: method,
		CompletedAt:   now,
	}
	o.Items = make([]model.OrderItem, len(c.Lines))
	for i, l := range c.Lines {
		o.Items[i] = model.OrderItem{
			ID:             uuid.New(),
			OrderID:        o.ID,
			Position:       i,
			MenuItemID:     l.MenuItemID,
			Name:           l.Name,
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			Customizations: l.Customizations,
			LineTotal:      l.Total(),
		}
	}
	return o
}

func notifyPayload(o *model.Order) worker.NotifyJobPayload {
	items := make([]worker.NotifyItem, len(o.Items))
	for i, it := range o.Items {
		ni := worker.NotifyItem{Name: it.Name, Quantity: it.Quantity}
		for _, c := range it.Customizations {
			ni.Customizations = append(ni.Customizations, c.Label)
		}
		items[i] = ni
	}
	return worker.NotifyJobPayload{
		OrderID:       o.ID.String(),
		BillNo:        o.BillNo,
		TerminalID:    o.TerminalID,
		Session:       string(o.Session),
		OrderType:     string(o.OrderType),
		PaymentMethod: string(o.PaymentMethod),
		Total:         o.Total,
		TotalItems:    o.TotalItems(),
		Items:         items,
		CompletedAt:   o.CompletedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func toCartResponse(c *cart.Cart) *dto.CartResponse {
	lines := make([]dto.CartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = dto.CartLineResponse{
			LineID:         l.LineID,
			MenuItemID:     l.MenuItemID,
			Name:           l.Name,
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			Customizations: l.Customizations,
			LineTotal:      l.Total(),
		}
	}
	return &dto.CartResponse{
		TerminalID:    c.TerminalID,
		Session:       c.Session,
		OrderType:     c.OrderType,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		Lines:         lines,
		TotalItems:    c.TotalItems(),
		Total:         c.Total(),
		PendingBillNo: optional(c.PendingBillNo),
	}
}

func toOrderResponse(o *model.Order, receiptStatus string) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = dto.OrderItemResponse{
			MenuItemID:     it.MenuItemID,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
			LineTotal:      it.LineTotal,
		}
	}
	return dto.OrderResponse{
		ID:            o.ID.String(),
		BillNo:        o.BillNo,
		TerminalID:    o.TerminalID,
		Session:       o.Session,
		OrderType:     o.OrderType,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Items:         items,
		TotalItems:    o.TotalItems(),
		Total:         o.Total,
		CashPayment:   o.CashPayment,
		OnlinePayment: o.OnlinePayment,
		PaymentMethod: o.PaymentMethod,
		CompletedAt:   o.CompletedAt,
		ReceiptStatus: receiptStatus,
	}
}

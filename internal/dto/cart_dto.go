package dto

import (
	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AddCartItemRequest adds one unit of a menu item. Radios maps an option
// group name to the chosen label; groups left out take their first choice.
type AddCartItemRequest struct {
	MenuItemID int               `json:"menu_item_id" validate:"required,gt=0"`
	Checkboxes []string          `json:"checkboxes"`
	Radios     map[string]string `json:"radios"`
}

// ChangeQuantityRequest moves a line's quantity by Delta; a result <= 0
// removes the line.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartDetailsRequest updates the order header. Nil fields are left unchanged.
type CartDetailsRequest struct {
	Session       *string `json:"session"        validate:"omitempty,oneof=morning afternoon night"`
	OrderType     *string `json:"order_type"     validate:"omitempty,oneof=dine-in parcel"`
	CustomerName  *string `json:"customer_name"  validate:"omitempty,max=120"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,max=30"`
}

// CompleteOrderRequest settles the cart. For split payments both amounts are
// required and must add up to the cart total.
type CompleteOrderRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash online split"`
	CashPayment   *decimal.Decimal `json:"cash_payment"`
	OnlinePayment *decimal.Decimal `json:"online_payment"`
	CustomerEmail *string          `json:"customer_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CartLineResponse struct {
	LineID         string                `json:"line_id"`
	MenuItemID     int                   `json:"menu_item_id"`
	Name           string                `json:"name"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	Quantity       int                   `json:"quantity"`
	Customizations []model.Customization `json:"customizations"`
	LineTotal      decimal.Decimal       `json:"line_total"`
}

type CartResponse struct {
	TerminalID    string             `json:"terminal_id"`
	Session       model.Session      `json:"session"`
	OrderType     model.OrderType    `json:"order_type"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Lines         []CartLineResponse `json:"lines"`
	TotalItems    int                `json:"total_items"`
	Total         decimal.Decimal    `json:"total"`
	PendingBillNo *string            `json:"pending_bill_no"`
}

type CheckoutResponse struct {
	BillNo   string          `json:"bill_no"`
	Degraded bool            `json:"degraded"`
	Warning  string          `json:"warning,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Cart     CartResponse    `json:"cart"`
}

package dto

import (
	"time"

	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Period     string `form:"period"      validate:"omitempty,oneof=today week month year custom all"`
	Start      string `form:"start"`      // YYYY-MM-DD, custom period only
	End        string `form:"end"`        // YYYY-MM-DD, custom period only
	Session    string `form:"session"     validate:"omitempty,oneof=morning afternoon night"`
	TerminalID string `form:"terminal_id" validate:"max=64"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderItemResponse struct {
	MenuItemID     int                   `json:"menu_item_id"`
	Name           string                `json:"name"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	Quantity       int                   `json:"quantity"`
	Customizations []model.Customization `json:"customizations"`
	LineTotal      decimal.Decimal       `json:"line_total"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	BillNo        string              `json:"bill_no"`
	TerminalID    string              `json:"terminal_id"`
	Session       model.Session       `json:"session"`
	OrderType     model.OrderType     `json:"order_type"`
	CustomerName  *string             `json:"customer_name"`
	CustomerPhone *string             `json:"customer_phone"`
	Items         []OrderItemResponse `json:"items"`
	TotalItems    int                 `json:"total_items"`
	Total         decimal.Decimal     `json:"total"`
	CashPayment   decimal.Decimal     `json:"cash_payment"`
	OnlinePayment decimal.Decimal     `json:"online_payment"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	CompletedAt   time.Time           `json:"completed_at"`
	ReceiptStatus string              `json:"receipt_status,omitempty"`
	// Degraded is set when the bill number came from the fallback generator.
	Degraded bool `json:"degraded,omitempty"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

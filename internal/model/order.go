package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customization is a selected add-on frozen into a line item at sale time.
type Customization struct {
	Label      string          `json:"label"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}

// Order is append-only: it is written once at completion and never updated.
// Invariant: CashPayment + OnlinePayment == Total.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillNo        string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	TerminalID    string          `gorm:"type:varchar(64);not null"`
	UserID        *uuid.UUID      `gorm:"type:uuid"`
	Session       Session         `gorm:"type:varchar(20);not null;index"`
	OrderType     OrderType       `gorm:"type:varchar(20);not null"`
	CustomerName  *string         `gorm:"type:varchar(120)"`
	CustomerPhone *string         `gorm:"type:varchar(30)"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashPayment   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OnlinePayment decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null"`
	CompletedAt   time.Time       `gorm:"not null;index"`
	CreatedAt     time.Time
}

// TotalItems is the sum of line quantities.
func (o *Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderItem is a line of an order. Position keeps the cart order.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position       int             `gorm:"not null"`
	MenuItemID     int             `gorm:"not null"`
	Name           string          `gorm:"type:varchar(120);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity       int             `gorm:"not null"`
	Customizations []Customization `gorm:"type:jsonb;serializer:json"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// ExtrasTotal is the per-unit sum of customization prices.
func (i *OrderItem) ExtrasTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range i.Customizations {
		sum = sum.Add(c.ExtraPrice)
	}
	return sum
}

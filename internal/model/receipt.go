package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReceiptPending   = "pending"
	ReceiptGenerated = "generated"
	ReceiptError     = "error"
)

// Receipt tracks PDF generation for an order. Kept apart from Order so that
// orders stay immutable while receipts are retried.
type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BillNo        string    `gorm:"type:varchar(32);index;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PDFPath       *string   `gorm:"column:pdf_path"`
	CustomerEmail *string
	RetryCount    int        `gorm:"not null;default:0"`
	NextRetryAt   *time.Time `gorm:"column:next_retry_at"`
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package repository

import (
	"context"
	"time"

	"messpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Receipt, error)
	Update(ctx context.Context, rc *model.Receipt) error
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Receipt, error)
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) Create(ctx context.Context, tx *gorm.DB, rc *model.Receipt) error {
	return conn(tx, r.db).WithContext(ctx).Create(rc).Error
}

func (r *receiptRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rc).Error
	return &rc, err
}

func (r *receiptRepo) Update(ctx context.Context, rc *model.Receipt) error {
	return r.db.WithContext(ctx).Save(rc).Error
}

// ListPendingRetries returns pending receipts whose next attempt is due, oldest first.
func (r *receiptRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Receipt, error) {
	var out []model.Receipt
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ReceiptPending, now).
		Order("next_retry_at").
		Limit(limit).
		Find(&out).Error
	return out, err
}

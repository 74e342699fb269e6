package repository

import (
	"context"
	"time"

	"messpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderQuery narrows order listings. Zero values mean "no restriction";
// Limit 0 returns every match. End is exclusive.
type OrderQuery struct {
	Start      *time.Time
	End        *time.Time
	Session    *model.Session
	TerminalID string
	Limit      int
	Offset     int
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByBillNo(ctx context.Context, billNo string) (*model.Order, error)
	List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

// Create inserts the order and its items.
func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return conn(tx, r.db).WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items", itemsInCartOrder).Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *orderRepo) FindByBillNo(ctx context.Context, billNo string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items", itemsInCartOrder).
		Where("bill_no = ?", billNo).First(&o).Error
	return &o, err
}

// List returns matches newest first, with the total count before paging.
func (r *orderRepo) List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
	if q.Start != nil {
		db = db.Where("completed_at >= ?", *q.Start)
	}
	if q.End != nil {
		db = db.Where("completed_at < ?", *q.End)
	}
	if q.Session != nil {
		db = db.Where("session = ?", *q.Session)
	}
	if q.TerminalID != "" {
		db = db.Where("terminal_id = ?", q.TerminalID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Items", itemsInCartOrder).Order("completed_at DESC")
	if q.Limit > 0 {
		db = db.Offset(q.Offset).Limit(q.Limit)
	}
	err := db.Find(&orders).Error
	return orders, total, err
}

func itemsInCartOrder(db *gorm.DB) *gorm.DB { return db.Order("position") }

// conn picks the transaction when one is open.
func conn(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

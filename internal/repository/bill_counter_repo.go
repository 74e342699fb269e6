package repository

import (
	"context"
	"errors"

	"messpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillCounterRepository interface {
	// Increment atomically bumps the counter for dateKey and returns the new
	// value. The first call of a day returns 1.
	Increment(ctx context.Context, dateKey string) (int64, error)
}

type billCounterRepo struct{ db *gorm.DB }

func NewBillCounterRepository(db *gorm.DB) BillCounterRepository {
	return &billCounterRepo{db: db}
}

// Increment runs read → branch on existence → write inside one transaction.
// The row is locked with SELECT … FOR UPDATE so concurrent terminals
// serialize on it. When two terminals race to create the day's row, the loser's
// INSERT … ON CONFLICT DO NOTHING affects no rows and it falls through to the
// locked read of the winner's row.
func (r *billCounterRepo) Increment(ctx context.Context, dateKey string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.BillCounter
		err := lockCounter(tx, dateKey, &row)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.BillCounter{DateKey: dateKey, Counter: 1})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				next = 1
				return nil
			}
			if err := lockCounter(tx, dateKey, &row); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		next = row.Counter + 1
		return tx.Model(&model.BillCounter{}).
			Where("date_key = ?", dateKey).
			Update("counter", next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func lockCounter(tx *gorm.DB, dateKey string, row *model.BillCounter) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("date_key = ?", dateKey).
		Take(row).Error
}

package repository

import (
	"context"

	"messpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository interface {
	List(ctx context.Context) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id int) (*model.MenuItem, error)
	Upsert(ctx context.Context, items []model.MenuItem) error
	SetActive(ctx context.Context, id int, active bool) error
}

type menuRepo struct{ db *gorm.DB }

func NewMenuRepository(db *gorm.DB) MenuRepository { return &menuRepo{db: db} }

func (r *menuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

func (r *menuRepo) FindByID(ctx context.Context, id int) (*model.MenuItem, error) {
	var it model.MenuItem
	err := r.db.WithContext(ctx).First(&it, id).Error
	return &it, err
}

// Upsert inserts new items and overwrites existing ones by id in one statement.
func (r *menuRepo) Upsert(ctx context.Context, items []model.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "category", "description", "sessions", "image_url", "customizations", "active", "updated_at"}),
		}).
		Create(&items).Error
}

func (r *menuRepo) SetActive(ctx context.Context, id int, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

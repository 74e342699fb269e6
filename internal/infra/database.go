package infra

import (
	"fmt"

	"messpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables, then applies the idempotent
// patches AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.MenuItem{},
		&model.BillCounter{},
		&model.Order{},
		&model.OrderItem{},
		&model.Receipt{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that AutoMigrate does not handle (partial and
// composite indexes, check constraints). Each statement is safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// partial index for the receipt retry cron query
		`CREATE INDEX IF NOT EXISTS idx_receipts_pending_retry
		    ON receipts (next_retry_at)
		    WHERE status = 'pending' AND next_retry_at IS NOT NULL`,
		// report queries filter by time range and optionally session
		`CREATE INDEX IF NOT EXISTS idx_orders_completed_session
		    ON orders (completed_at, session)`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_orders_payment_sum') THEN
		    ALTER TABLE orders ADD CONSTRAINT chk_orders_payment_sum
		        CHECK (cash_payment + online_payment = total);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_order_items_quantity') THEN
		    ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity CHECK (quantity > 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bill_counters_counter') THEN
		    ALTER TABLE bill_counters ADD CONSTRAINT chk_bill_counters_counter CHECK (counter >= 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

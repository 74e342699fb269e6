package model

import "time"

// BillCounter holds the last issued sequence for one calendar day.
// Rows are created on the first bill of a day and never deleted.
type BillCounter struct {
	DateKey   string `gorm:"type:char(8);primaryKey"` // YYYYMMDD
	Counter   int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customization option types.
const (
	OptionCheckbox = "checkbox"
	OptionRadio    = "radio"
	OptionHeading  = "heading" // display only, never selectable
)

// RadioChoice is one choice inside a radio customization group.
type RadioChoice struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// CustomizationOption describes an add-on the cashier can pick for an item.
// Checkbox options carry their own Price; radio groups carry Options and
// default to the first one when nothing is selected.
type CustomizationOption struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Price   decimal.Decimal `json:"price"`
	Options []RadioChoice   `json:"options,omitempty"`
}

// MenuItem is keyed by its natural numeric id so that bulk imports can upsert.
type MenuItem struct {
	ID             int                   `gorm:"primaryKey;autoIncrement:false"`
	Name           string                `gorm:"type:varchar(120);not null"`
	Price          decimal.Decimal       `gorm:"type:decimal(10,2);not null"`
	Category       string                `gorm:"type:varchar(60);index"`
	Description    string
	Sessions       []Session             `gorm:"type:jsonb;serializer:json"`
	ImageURL       *string               `gorm:"column:image_url"`
	Customizations []CustomizationOption `gorm:"type:jsonb;serializer:json"`
	Active         bool                  `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailableIn reports whether the item is served during s.
func (m *MenuItem) AvailableIn(s Session) bool {
	for _, x := range m.Sessions {
		if x == s {
			return true
		}
	}
	return false
}

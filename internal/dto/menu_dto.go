package dto

import (
	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// MenuQuery is bound from the query string of GET /v1/menu.
// With a session the search is a prefix match, without one a substring match.
type MenuQuery struct {
	Session  string `form:"session"  validate:"omitempty,oneof=morning afternoon night"`
	Q        string `form:"q"        validate:"max=100"`
	Category string `form:"category" validate:"max=60"`
}

type RadioChoiceRequest struct {
	Label string          `json:"label" validate:"required,max=60"`
	Price decimal.Decimal `json:"price" validate:"min=0"`
}

type CustomizationOptionRequest struct {
	Name    string               `json:"name"    validate:"required,max=60"`
	Type    string               `json:"type"    validate:"required,oneof=checkbox radio heading"`
	Price   decimal.Decimal      `json:"price"   validate:"min=0"`
	Options []RadioChoiceRequest `json:"options" validate:"omitempty,dive"`
}

type MenuItemRequest struct {
	ID                   int                          `json:"id"                    validate:"required,gt=0"`
	Name                 string                       `json:"name"                  validate:"required,min=1,max=120"`
	Price                decimal.Decimal              `json:"price"                 validate:"min=0"`
	Category             string                       `json:"category"              validate:"required,max=60"`
	Description          string                       `json:"description"           validate:"max=500"`
	Sessions             []string                     `json:"sessions"              validate:"required,min=1,dive,oneof=morning afternoon night"`
	ImageURL             *string                      `json:"image_url"             validate:"omitempty,url"`
	CustomizationOptions []CustomizationOptionRequest `json:"customization_options" validate:"omitempty,dive"`
	Active               *bool                        `json:"active"` // nil = true
}

type ImportMenuRequest struct {
	Items []MenuItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type MenuItemResponse struct {
	ID                   int                         `json:"id"`
	Name                 string                      `json:"name"`
	Price                decimal.Decimal             `json:"price"`
	Category             string                      `json:"category"`
	Description          string                      `json:"description"`
	Sessions             []model.Session             `json:"sessions"`
	ImageURL             *string                     `json:"image_url"`
	CustomizationOptions []model.CustomizationOption `json:"customization_options"`
	Active               bool                        `json:"active"`
}

type ImportMenuResponse struct {
	Imported int `json:"imported"`
}

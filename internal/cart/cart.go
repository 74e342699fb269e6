// Package cart holds the in-progress order of one terminal. A Cart is a plain
// state object: every mutation goes through its methods and the whole value is
// persisted by a Store between requests.
package cart

import (
	"errors"
	"time"

	"messpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound   = errors.New("line not found in cart")
	ErrUnknownOption  = errors.New("unknown customization option")
	ErrInactiveItem   = errors.New("menu item is not active")
	ErrInvalidSession = errors.New("invalid session")
	ErrInvalidType    = errors.New("invalid order type")
)

// Line is one row of the cart.
type Line struct {
	LineID         string                `json:"line_id"`
	MenuItemID     int                   `json:"menu_item_id"`
	Name           string                `json:"name"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	Quantity       int                   `json:"quantity"`
	Customizations []model.Customization `json:"customizations,omitempty"`
}

// Total = (unit price + extras) * quantity.
func (l Line) Total() decimal.Decimal {
	unit := l.UnitPrice
	for _, c := range l.Customizations {
		unit = unit.Add(c.ExtraPrice)
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) customized() bool { return len(l.Customizations) > 0 }

// Cart is the working order of a terminal.
type Cart struct {
	TerminalID    string          `json:"terminal_id"`
	Session       model.Session   `json:"session"`
	OrderType     model.OrderType `json:"order_type"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Lines         []Line          `json:"lines"`
	// PendingBillNo is issued at checkout and reused until the order is saved.
	PendingBillNo   string    `json:"pending_bill_no,omitempty"`
	PendingDegraded bool      `json:"pending_degraded,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// New returns an empty cart with the default session and order type.
func New(terminalID string) *Cart {
	return &Cart{
		TerminalID: terminalID,
		Session:    model.SessionMorning,
		OrderType:  model.OrderTypeDineIn,
		Lines:      []Line{},
	}
}

// Add puts an item in the cart. An item without customizations is merged
// into an existing uncustomized line of the same item; anything customized
// always gets its own line.
func (c *Cart) Add(item *model.MenuItem, customs []model.Customization) (Line, error) {
	if !item.Active {
		return Line{}, ErrInactiveItem
	}
	if len(customs) == 0 {
		for i := range c.Lines {
			if c.Lines[i].MenuItemID == item.ID && !c.Lines[i].customized() {
				c.Lines[i].Quantity++
				return c.Lines[i], nil
			}
		}
	}
	line := Line{
		LineID:         uuid.NewString(),
		MenuItemID:     item.ID,
		Name:           item.Name,
		UnitPrice:      item.Price,
		Quantity:       1,
		Customizations: customs,
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// ChangeQuantity adds delta to a line; the line is dropped when it reaches zero.
func (c *Cart) ChangeQuantity(lineID string, delta int) error {
	for i := range c.Lines {
		if c.Lines[i].LineID != lineID {
			continue
		}
		c.Lines[i].Quantity += delta
		if c.Lines[i].Quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return nil
	}
	return ErrLineNotFound
}

func (c *Cart) Remove(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetDetails updates the order header. Empty values leave fields untouched,
// except customer fields which are always replaced.
func (c *Cart) SetDetails(session model.Session, orderType model.OrderType, name, phone string) error {
	if session != "" {
		if !session.Valid() {
			return ErrInvalidSession
		}
		c.Session = session
	}
	if orderType != "" {
		if !orderType.Valid() {
			return ErrInvalidType
		}
		c.OrderType = orderType
	}
	c.CustomerName = name
	c.CustomerPhone = phone
	return nil
}

func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// ── Customization selection ──────────────────────────────────────────────────

// Selection is what the cashier picked in the customization dialog.
// Checkboxes holds option names; Radios maps a group name to a choice label.
type Selection struct {
	Checkboxes []string          `json:"checkboxes"`
	Radios     map[string]string `json:"radios"`
}

// ResolveCustomizations turns a selection into priced customizations following
// the item's option list order. Radio groups that were not picked fall back to
// their first choice.
func ResolveCustomizations(item *model.MenuItem, sel Selection) ([]model.Customization, error) {
	checked := make(map[string]bool, len(sel.Checkboxes))
	for _, name := range sel.Checkboxes {
		checked[name] = true
	}
	known := make(map[string]bool)
	var out []model.Customization

	for _, opt := range item.Customizations {
		switch opt.Type {
		case model.OptionCheckbox:
			known[opt.Name] = true
			if checked[opt.Name] {
				out = append(out, model.Customization{Label: opt.Name, ExtraPrice: opt.Price})
			}
		case model.OptionRadio:
			if len(opt.Options) == 0 {
				continue
			}
			known[opt.Name] = true
			choice := opt.Options[0]
			if label, ok := sel.Radios[opt.Name]; ok {
				found := false
				for _, o := range opt.Options {
					if o.Label == label {
						choice, found = o, true
						break
					}
				}
				if !found {
					return nil, ErrUnknownOption
				}
			}
			out = append(out, model.Customization{Label: choice.Label, ExtraPrice: choice.Price})
		}
	}

	for name := range checked {
		if !known[name] {
			return nil, ErrUnknownOption
		}
	}
	for group := range sel.Radios {
		if !known[group] {
			return nil, ErrUnknownOption
		}
	}
	return out, nil
}

package report

import (
	"time"

	"messpos/internal/model"
)

// Filter selects orders by completion time and session. Start is
// inclusive and End exclusive; a nil bound is open on that side.
type Filter struct {
	Start   *time.Time
	End     *time.Time
	Session *model.Session
}

func (f Filter) Match(o *model.Order) bool {
	if f.Start != nil && o.CompletedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && !o.CompletedAt.Before(*f.End) {
		return false
	}
	if f.Session != nil && o.Session != *f.Session {
		return false
	}
	return true
}

// Apply returns the orders matching f, preserving input order.
func Apply(orders []model.Order, f Filter) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for i := range orders {
		if f.Match(&orders[i]) {
			out = append(out, orders[i])
		}
	}
	return out
}

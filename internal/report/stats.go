// Package report computes sales statistics over completed orders. Everything
// here is pure: the same input always yields the same output and nothing is
// read from or written to a store.
package report

import (
	"sort"

	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// TopItemsLimit is how many best sellers PeriodStats carries.
const TopItemsLimit = 5

type SessionStats struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Night     int `json:"night"`
}

type OrderTypeStats struct {
	DineIn int `json:"dine_in"`
	Parcel int `json:"parcel"`
}

type ItemCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PeriodStats is the aggregated view of a set of orders.
type PeriodStats struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	CashPayments      decimal.Decimal `json:"cash_payments"`
	OnlinePayments    decimal.Decimal `json:"online_payments"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	SessionStats      SessionStats    `json:"session_stats"`
	OrderTypeStats    OrderTypeStats  `json:"order_type_stats"`
	TopItems          []ItemCount     `json:"top_items"`
}

// Aggregate folds orders into PeriodStats.
//
// Orders whose session or order type is not one of the known values still
// count toward totals but fall into no bucket. Items are bucketed by name, so
// two menu items sharing a name are reported together. Ties in TopItems keep
// the order in which the names were first seen.
func Aggregate(orders []model.Order) PeriodStats {
	st := PeriodStats{
		TotalOrders:       len(orders),
		TotalRevenue:      decimal.Zero,
		CashPayments:      decimal.Zero,
		OnlinePayments:    decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TopItems:          []ItemCount{},
	}

	counts := make(map[string]int)
	var seen []string

	for i := range orders {
		o := &orders[i]
		st.TotalRevenue = st.TotalRevenue.Add(o.Total)
		st.CashPayments = st.CashPayments.Add(o.CashPayment)
		st.OnlinePayments = st.OnlinePayments.Add(o.OnlinePayment)

		switch o.Session {
		case model.SessionMorning:
			st.SessionStats.Morning++
		case model.SessionAfternoon:
			st.SessionStats.Afternoon++
		case model.SessionNight:
			st.SessionStats.Night++
		}

		switch o.OrderType {
		case model.OrderTypeDineIn:
			st.OrderTypeStats.DineIn++
		case model.OrderTypeParcel:
			st.OrderTypeStats.Parcel++
		}

		for _, it := range o.Items {
			if _, ok := counts[it.Name]; !ok {
				seen = append(seen, it.Name)
			}
			counts[it.Name] += it.Quantity
		}
	}

	if st.TotalOrders > 0 {
		st.AverageOrderValue = st.TotalRevenue.Div(decimal.NewFromInt(int64(st.TotalOrders)))
	}

	ranked := make([]ItemCount, 0, len(seen))
	for _, name := range seen {
		ranked = append(ranked, ItemCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > TopItemsLimit {
		ranked = ranked[:TopItemsLimit]
	}
	st.TopItems = ranked
	return st
}

// ── Item sales breakdown ─────────────────────────────────────────────────────

// ItemSales is the quantity sold of one item name, split by session.
type ItemSales struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Morning   int    `json:"morning"`
	Afternoon int    `json:"afternoon"`
	Night     int    `json:"night"`
}

// ItemBreakdown lists every item name sold in orders, best sellers first.
func ItemBreakdown(orders []model.Order) []ItemSales {
	idx := make(map[string]int)
	out := []ItemSales{}
	for i := range orders {
		o := &orders[i]
		for _, it := range o.Items {
			pos, ok := idx[it.Name]
			if !ok {
				pos = len(out)
				idx[it.Name] = pos
				out = append(out, ItemSales{Name: it.Name})
			}
			row := &out[pos]
			row.Total += it.Quantity
			switch o.Session {
			case model.SessionMorning:
				row.Morning += it.Quantity
			case model.SessionAfternoon:
				row.Afternoon += it.Quantity
			case model.SessionNight:
				row.Night += it.Quantity
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// PaymentLabel is the short payment description shown in order tables.
func PaymentLabel(o *model.Order) string {
	switch {
	case o.CashPayment.IsPositive() && o.OnlinePayment.IsPositive():
		return "Split"
	case o.CashPayment.IsPositive():
		return "Cash"
	default:
		return "Online"
	}
}

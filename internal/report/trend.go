package report

import (
	"time"

	"messpos/internal/model"

	"github.com/shopspring/decimal"
)

// TrendPoint is one bucket of the revenue trend, covering [Start, End).
type TrendPoint struct {
	Label   string          `json:"label"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type bucket struct {
	label      string
	start, end time.Time
}

// trendBuckets: today → last 7 days, week → last 4 Monday-Sunday weeks,
// anything else → last 6 calendar months. Oldest first.
func trendBuckets(p Period, now time.Time, loc *time.Location) []bucket {
	now = now.In(loc)
	var out []bucket
	switch p {
	case PeriodToday:
		for i := 6; i >= 0; i-- {
			d := now.AddDate(0, 0, -i)
			out = append(out, bucket{d.Format("Jan 2"), startOfDay(d), nextDay(d)})
		}
	case PeriodWeek:
		for i := 3; i >= 0; i-- {
			d := now.AddDate(0, 0, -7*i)
			ws := WeekStart(d)
			out = append(out, bucket{"Week " + d.Format("Jan 2"), ws, ws.AddDate(0, 0, 7)})
		}
	default:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		for i := 5; i >= 0; i-- {
			ms := first.AddDate(0, -i, 0)
			out = append(out, bucket{ms.Format("Jan 06"), ms, ms.AddDate(0, 1, 0)})
		}
	}
	return out
}

// TrendWindow is the span RevenueTrend looks at, for fetching only what it needs.
func TrendWindow(p Period, now time.Time, loc *time.Location) (time.Time, time.Time) {
	b := trendBuckets(p, now, loc)
	return b[0].start, b[len(b)-1].end
}

// RevenueTrend buckets order revenue over the window that matches p.
func RevenueTrend(orders []model.Order, p Period, now time.Time, loc *time.Location) []TrendPoint {
	buckets := trendBuckets(p, now, loc)
	points := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		points[i] = TrendPoint{Label: b.label, Start: b.start, End: b.end, Revenue: decimal.Zero}
	}
	for i := range orders {
		at := orders[i].CompletedAt.In(loc)
		for j := range buckets {
			if !at.Before(buckets[j].start) && at.Before(buckets[j].end) {
				points[j].Revenue = points[j].Revenue.Add(orders[i].Total)
				points[j].Orders++
				break
			}
		}
	}
	return points
}

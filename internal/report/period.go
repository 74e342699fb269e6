package report

import (
	"fmt"
	"time"
)

// Period names a reporting window.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

const dateLayout = "2006-01-02"

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return p, nil
	case "":
		return PeriodToday, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextDay is 00:00 of the day after t. Calendar arithmetic keeps it right
// on 23h and 25h days.
func nextDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}

// WeekStart returns Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return startOfDay(t).AddDate(0, 0, 1-wd)
}

// Range returns the half-open [start, end) of a named period around now,
// evaluated in loc. Weeks run Monday to Sunday.
func Range(p Period, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	now = now.In(loc)
	switch p {
	case PeriodToday:
		return startOfDay(now), nextDay(now), nil
	case PeriodWeek:
		start := WeekStart(now)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("period %q has no implicit range", p)
}

// CustomFilter builds a filter from optional YYYY-MM-DD dates. The end date
// covers the whole day: End is the following midnight, exclusive.
func CustomFilter(startDate, endDate string, loc *time.Location) (Filter, error) {
	var f Filter
	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return f, fmt.Errorf("invalid start date: %w", err)
		}
		f.Start = &t
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return f, fmt.Errorf("invalid end date: %w", err)
		}
		e := nextDay(t)
		f.End = &e
	}
	if f.Start != nil && f.End != nil && !f.End.After(*f.Start) {
		return f, fmt.Errorf("end date before start date")
	}
	return f, nil
}

// PeriodFilter resolves a period (and, for custom, explicit dates) to a Filter.
func PeriodFilter(p Period, startDate, endDate string, now time.Time, loc *time.Location) (Filter, error) {
	if p == PeriodCustom {
		return CustomFilter(startDate, endDate, loc)
	}
	start, end, err := Range(p, now, loc)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Start: &start, End: &end}, nil
}

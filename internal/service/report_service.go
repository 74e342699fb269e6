package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"messpos/internal/dto"
	"messpos/internal/model"
	"messpos/internal/report"
	"messpos/internal/repository"
)

// ErrInvalidFilter wraps unknown periods and malformed or inverted dates.
var ErrInvalidFilter = errors.New("invalid report filter")

type ReportService interface {
	// Summary returns the stats of today, this week, month and year plus
	// today's item sales.
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	Report(ctx context.Context, q dto.ReportQuery) (*dto.ReportResponse, error)
	ExportCSV(ctx context.Context, q dto.ReportQuery, w io.Writer) error
}

type reportService struct {
	repo repository.OrderRepository
	loc  *time.Location
	now  func() time.Time
}

func NewReportService(repo repository.OrderRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{repo: repo, loc: loc, now: time.Now}
}

func (s *reportService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	now := s.now()
	ranges := make(map[report.Period]report.Filter, 4)
	var earliest time.Time
	for _, p := range []report.Period{report.PeriodToday, report.PeriodWeek, report.PeriodMonth, report.PeriodYear} {
		start, end, err := report.Range(p, now, s.loc)
		if err != nil {
			return nil, err
		}
		ranges[p] = report.Filter{Start: &start, End: &end}
		if earliest.IsZero() || start.Before(earliest) {
			earliest = start
		}
	}

	// The week can start in the previous year, so load from the earliest bound.
	orders, _, err := s.repo.List(ctx, repository.OrderQuery{Start: &earliest})
	if err != nil {
		return nil, err
	}
	today := report.Apply(orders, ranges[report.PeriodToday])
	return &dto.SummaryResponse{
		Today:          report.Aggregate(today),
		Week:           report.Aggregate(report.Apply(orders, ranges[report.PeriodWeek])),
		Month:          report.Aggregate(report.Apply(orders, ranges[report.PeriodMonth])),
		Year:           report.Aggregate(report.Apply(orders, ranges[report.PeriodYear])),
		TodayItemSales: report.ItemBreakdown(today),
	}, nil
}

func (s *reportService) Report(ctx context.Context, q dto.ReportQuery) (*dto.ReportResponse, error) {
	now := s.now()
	period, f, err := s.filter(q, now)
	if err != nil {
		return nil, err
	}

	// One query covering both the selected range and the trend window.
	trendStart, trendEnd := report.TrendWindow(period, now, s.loc)
	oq := repository.OrderQuery{Start: widerStart(f.Start, trendStart), End: widerEnd(f.End, trendEnd), Session: f.Session}
	loaded, _, err := s.repo.List(ctx, oq)
	if err != nil {
		return nil, err
	}

	selected := report.Apply(loaded, f)
	rows := make([]dto.ReportRow, len(selected))
	for i := range selected {
		rows[i] = s.row(&selected[i])
	}
	resp := &dto.ReportResponse{
		Period:    string(period),
		Start:     f.Start,
		End:       f.End,
		Stats:     report.Aggregate(selected),
		Orders:    rows,
		ItemSales: report.ItemBreakdown(selected),
		Trend:     report.RevenueTrend(loaded, period, now, s.loc),
	}
	if f.Session != nil {
		sess := string(*f.Session)
		resp.Session = &sess
	}
	return resp, nil
}

func (s *reportService) ExportCSV(ctx context.Context, q dto.ReportQuery, w io.Writer) error {
	_, f, err := s.filter(q, s.now())
	if err != nil {
		return err
	}
	orders, _, err := s.repo.List(ctx, repository.OrderQuery{Start: f.Start, End: f.End, Session: f.Session})
	if err != nil {
		return err
	}
	return report.WriteCSV(w, orders, s.loc)
}

func (s *reportService) filter(q dto.ReportQuery, now time.Time) (report.Period, report.Filter, error) {
	period, err := report.ParsePeriod(q.Period)
	if err != nil {
		return "", report.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	f, err := report.PeriodFilter(period, q.Start, q.End, now, s.loc)
	if err != nil {
		return "", report.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if q.Session != "" {
		sess := model.Session(q.Session)
		f.Session = &sess
	}
	return period, f, nil
}

// widerStart is the earlier of bound and t; a nil bound stays open.
func widerStart(bound *time.Time, t time.Time) *time.Time {
	if bound == nil {
		return nil
	}
	if bound.Before(t) {
		return bound
	}
	return &t
}

func widerEnd(bound *time.Time, t time.Time) *time.Time {
	if bound == nil {
		return nil
	}
	if bound.After(t) {
		return bound
	}
	return &t
}

func (s *reportService) row(o *model.Order) dto.ReportRow {
	at := o.CompletedAt.In(s.loc)
	return dto.ReportRow{
		BillNo:        o.BillNo,
		Date:          at.Format(report.RowDateLayout),
		Time:          at.Format(report.RowTimeLayout),
		CustomerName:  report.Deref(o.CustomerName),
		CustomerPhone: report.Deref(o.CustomerPhone),
		Session:       string(o.Session),
		OrderType:     string(o.OrderType),
		TotalItems:    o.TotalItems(),
		Total:         o.Total,
		CashPayment:   o.CashPayment,
		OnlinePayment: o.OnlinePayment,
		Payment:       report.PaymentLabel(o),
	}
}

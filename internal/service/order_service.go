package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"messpos/internal/dto"
	"messpos/internal/model"
	"messpos/internal/report"
	"messpos/internal/repository"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrReceiptNotReady = errors.New("receipt has not been generated yet")
)

type OrderService interface {
	List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error)
	GetByBillNo(ctx context.Context, billNo string) (*dto.OrderResponse, error)
	// ReceiptPath returns the PDF file of a generated receipt.
	ReceiptPath(ctx context.Context, billNo string) (string, error)
}

type orderService struct {
	repo        repository.OrderRepository
	receiptRepo repository.ReceiptRepository
	loc         *time.Location
	now         func() time.Time
}

func NewOrderService(repo repository.OrderRepository, receiptRepo repository.ReceiptRepository, loc *time.Location) OrderService {
	if loc == nil {
		loc = time.Local
	}
	return &orderService{repo: repo, receiptRepo: receiptRepo, loc: loc, now: time.Now}
}

func (s *orderService) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	q := repository.OrderQuery{TerminalID: f.TerminalID, Limit: f.Limit, Offset: (f.Page - 1) * f.Limit}
	if f.Period != "" && f.Period != "all" {
		rf, err := report.PeriodFilter(report.Period(f.Period), f.Start, f.End, s.now(), s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		q.Start, q.End = rf.Start, rf.End
	}
	if f.Session != "" {
		sess := model.Session(f.Session)
		q.Session = &sess
	}

	orders, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		data[i] = toOrderResponse(&orders[i], "")
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *orderService) GetByBillNo(ctx context.Context, billNo string) (*dto.OrderResponse, error) {
	o, err := s.repo.FindByBillNo(ctx, billNo)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	status := ""
	if rc, err := s.receiptRepo.FindByOrderID(ctx, o.ID); err == nil {
		status = rc.Status
	}
	resp := toOrderResponse(o, status)
	return &resp, nil
}

func (s *orderService) ReceiptPath(ctx context.Context, billNo string) (string, error) {
	o, err := s.repo.FindByBillNo(ctx, billNo)
	if err != nil {
		return "", ErrOrderNotFound
	}
	rc, err := s.receiptRepo.FindByOrderID(ctx, o.ID)
	if err != nil || rc.Status != model.ReceiptGenerated || rc.PDFPath == nil {
		return "", ErrReceiptNotReady
	}
	return *rc.PDFPath, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"messpos/internal/infra"
	"messpos/internal/repository"

	"github.com/rs/zerolog/log"
)

// DateKeyLayout formats the calendar day a bill number belongs to.
const DateKeyLayout = "20060102"

var ErrInvalidDateKey = errors.New("date key must be 8 digits (YYYYMMDD)")

// BillNumber is the result of a sequencer call. Degraded numbers come from the
// time-based fallback and are not guaranteed unique.
type BillNumber struct {
	Value    string
	Degraded bool
	Warning  string
}

type BillSequencer interface {
	// NextBillNumber atomically increments the counter of dateKey and returns
	// "{dateKey}{counter}". It never fails on storage errors; it degrades.
	NextBillNumber(ctx context.Context, dateKey string) (BillNumber, error)
	// DateKey is the key of the restaurant-local day containing t.
	DateKey(t time.Time) string
}

type billSequencer struct {
	repo repository.BillCounterRepository
	cb   *infra.CircuitBreaker
	loc  *time.Location
	now  func() time.Time
}

func NewBillSequencer(repo repository.BillCounterRepository, cb *infra.CircuitBreaker, loc *time.Location) BillSequencer {
	if loc == nil {
		loc = time.Local
	}
	return &billSequencer{repo: repo, cb: cb, loc: loc, now: time.Now}
}

// DateKey formats t in loc as YYYYMMDD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

func (s *billSequencer) DateKey(t time.Time) string { return DateKey(t, s.loc) }

func (s *billSequencer) NextBillNumber(ctx context.Context, dateKey string) (BillNumber, error) {
	if !validDateKey(dateKey) {
		return BillNumber{}, ErrInvalidDateKey
	}

	var counter int64
	increment := func() error {
		n, err := s.repo.Increment(ctx, dateKey)
		if err != nil {
			return err
		}
		counter = n
		return nil
	}

	var err error
	if s.cb != nil {
		err = s.cb.Execute(increment)
	} else {
		err = increment()
	}
	if err != nil {
		fallback := FallbackBillNumber(dateKey, s.now())
		log.Warn().Err(err).Str("date_key", dateKey).Str("bill_no", fallback).
			Msg("bill counter unavailable, using time-based fallback")
		return BillNumber{
			Value:    fallback,
			Degraded: true,
			Warning:  "bill counter unavailable; number generated from the clock and may not be unique",
		}, nil
	}
	return BillNumber{Value: dateKey + strconv.FormatInt(counter, 10)}, nil
}

// FallbackBillNumber is dateKey followed by the last six digits of the epoch
// milliseconds of now, zero padded.
func FallbackBillNumber(dateKey string, now time.Time) string {
	return fmt.Sprintf("%s%06d", dateKey, now.UnixMilli()%1_000_000)
}

func validDateKey(k string) bool {
	if len(k) != 8 {
		return false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package worker

// retry_cron.go
// Background goroutine that re-enqueues receipts stuck in status "pending"
// with a next_retry_at in the past. This also picks up receipts whose first
// job was lost before a worker ran it.

import (
	"context"
	"time"

	"messpos/internal/infra"
	"messpos/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxReceiptRetries is how many failed generations a receipt survives.
	MaxReceiptRetries = 5
)

// ReceiptEnqueuer is implemented by *Dispatcher.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ReceiptRepo repository.ReceiptRepository
	Dispatcher  ReceiptEnqueuer
	// CB is the database breaker; while it is open the tick is skipped.
	CB *infra.CircuitBreaker
}

// StartRetryCron ticks every 30s until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg, time.Now())
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig, now time.Time) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	receipts, err := cfg.ReceiptRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return 0
	}

	queued := 0
	for i := range receipts {
		rc := &receipts[i]
		// Push the deadline out so the next tick does not enqueue it twice
		// while the job is still waiting in the queue.
		next := now.Add(computeRetryBackoff(rc.RetryCount + 1))
		rc.NextRetryAt = &next
		if err := cfg.ReceiptRepo.Update(ctx, rc); err != nil {
			log.Error().Err(err).Str("bill_no", rc.BillNo).Msg("retry_cron: failed to reschedule receipt")
			continue
		}
		if err := cfg.Dispatcher.EnqueueReceipt(ctx, ReceiptJobPayload{OrderID: rc.OrderID.String()}); err != nil {
			log.Error().Err(err).Str("bill_no", rc.BillNo).Msg("retry_cron: failed to enqueue receipt")
			continue
		}
		queued++
	}
	if queued > 0 {
		log.Info().Int("count", queued).Msg("retry_cron: receipts re-enqueued")
	}
	return queued
}

// computeRetryBackoff: 30s, 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := 30 * time.Second << uint(retry-1)
	if d > 30*time.Minute || d <= 0 {
		d = 30 * time.Minute
	}
	return d
}

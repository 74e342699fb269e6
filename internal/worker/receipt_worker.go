package worker

// receipt_worker.go
// Renders the PDF receipt of a completed order and records the outcome on the
// receipt row. Failures are retried in-process first, then handed to the
// retry cron through next_retry_at.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"messpos/internal/infra"
	"messpos/internal/model"
	"messpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	OrderID string `json:"order_id"`
}

type ReceiptWorker struct {
	receipts   repository.ReceiptRepository
	orders     repository.OrderRepository
	dispatcher *Dispatcher
	rdb        *redis.Client
	opts       infra.ReceiptPDFOptions
}

func NewReceiptWorker(
	receipts repository.ReceiptRepository,
	orders repository.OrderRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	opts infra.ReceiptPDFOptions,
) *ReceiptWorker {
	return &ReceiptWorker{receipts: receipts, orders: orders, dispatcher: dispatcher, rdb: rdb, opts: opts}
}

// Process handles a single receipt job:
//  1. Load the order and its receipt row
//  2. Render the PDF (up to 3 attempts, 1s / 2s backoff)
//  3. Mark the receipt generated, or schedule a retry / give up
//  4. Enqueue the customer email if one was given at checkout
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		log.Error().Str("order_id", payload.OrderID).Msg("receipt_worker: invalid order_id")
		return
	}

	order, err := w.orders.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: order not found")
		return
	}
	rc, err := w.receipts.FindByOrderID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("bill_no", order.BillNo).Msg("receipt_worker: receipt row not found")
		return
	}
	if rc.Status == model.ReceiptGenerated {
		return
	}

	var pdfPath string
	genErr := withRetry(ctx, 3, func(attempt int) error {
		p, err := infra.GenerateReceiptPDF(order, w.opts)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("bill_no", order.BillNo).
				Msg("receipt_worker: PDF attempt failed")
			return err
		}
		pdfPath = p
		return nil
	})

	if genErr != nil {
		w.recordFailure(ctx, rc, genErr)
		return
	}

	rc.Status = model.ReceiptGenerated
	rc.PDFPath = &pdfPath
	rc.NextRetryAt = nil
	rc.LastError = nil
	if err := w.receipts.Update(ctx, rc); err != nil {
		log.Error().Err(err).Str("bill_no", order.BillNo).Msg("receipt_worker: failed to update receipt")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("bill_no", order.BillNo).Msg("receipt_worker: PDF generated")

	if rc.CustomerEmail != nil && *rc.CustomerEmail != "" && w.dispatcher != nil {
		job := EmailJobPayload{
			ToEmail: *rc.CustomerEmail,
			Subject: fmt.Sprintf("%s receipt, bill %s", w.opts.RestaurantName, order.BillNo),
			Body:    fmt.Sprintf("Thank you for your visit!\nBill %s\nTotal: Rs. %s", order.BillNo, order.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Str("email", *rc.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
}

// recordFailure bumps the retry counter; past MaxReceiptRetries the receipt is
// parked in "error" and the job goes to the DLQ.
func (w *ReceiptWorker) recordFailure(ctx context.Context, rc *model.Receipt, cause error) {
	rc.RetryCount++
	msg := cause.Error()
	rc.LastError = &msg

	if rc.RetryCount >= MaxReceiptRetries {
		rc.Status = model.ReceiptError
		rc.NextRetryAt = nil
		log.Error().Str("bill_no", rc.BillNo).Int("retries", rc.RetryCount).
			Msg("receipt_worker: max retries exceeded, moving to error/DLQ")
		payload, _ := json.Marshal(ReceiptJobPayload{OrderID: rc.OrderID.String()})
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxReceiptRetries, msg), rc.RetryCount)
	} else {
		next := time.Now().Add(computeRetryBackoff(rc.RetryCount))
		rc.NextRetryAt = &next
		log.Warn().Str("bill_no", rc.BillNo).Int("retry_count", rc.RetryCount).Time("next_retry_at", next).
			Msg("receipt_worker: generation failed, scheduled retry")
	}
	if err := w.receipts.Update(ctx, rc); err != nil {
		log.Error().Err(err).Str("bill_no", rc.BillNo).Msg("receipt_worker: failed to update receipt")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

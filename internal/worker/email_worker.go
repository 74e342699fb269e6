package worker

// email_worker.go
// Mails PDF receipts to customers who left an address at checkout.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// ReceiptMailer is implemented by infra.Mailer.
type ReceiptMailer interface {
	Enabled() bool
	SendReceipt(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer ReceiptMailer
	rdb    *redis.Client
}

func NewEmailWorker(mailer ReceiptMailer, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}
	if !w.mailer.Enabled() {
		log.Debug().Str("to", payload.ToEmail).Msg("email_worker: smtp not configured, skipping")
		return
	}

	err := withRetry(ctx, 2, func(int) error {
		return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw, err.Error(), 2)
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent")
}

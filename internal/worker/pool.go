package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"
	QueueNotify  = "jobs:notify"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Processor handles the payload of one job type.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Handlers maps each queue to its processor. Nil entries drop their jobs.
type Handlers struct {
	Receipt Processor
	Email   Processor
	Notify  Processor
}

func (h *Handlers) forQueue(queue string) Processor {
	if h == nil {
		return nil
	}
	switch queue {
	case QueueReceipt:
		return h.Receipt
	case QueueEmail:
		return h.Email
	case QueueNotify:
		return h.Notify
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) EnqueueNotify(ctx context.Context, payload NotifyJobPayload) error {
	return d.enqueue(ctx, QueueNotify, "notify", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP, so idle workers use no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// popErrorBackoff is how long a worker waits after a failed BRPOP, e.g.
// while Redis is down.
var popErrorBackoff = time.Second

// jobSource is the part of *redis.Client a worker reads from.
type jobSource interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

func runWorker(ctx context.Context, src jobSource, handlers *Handlers, id int) {
	queues := []string{QueueReceipt, QueueNotify, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := src.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Msg("BRPOP failed, backing off")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	p := handlers.forQueue(queue)
	if p == nil {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no processor for queue, job dropped")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("queue", queue).Msg("job processor panicked")
		}
	}()
	p.Process(ctx, job.Payload)
}

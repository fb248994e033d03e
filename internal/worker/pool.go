package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueRecordatorio = "jobs:recordatorio"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RecordatorioJobPayload is the job envelope sent to QueueRecordatorio.
// The HTTP path records the reminder row synchronously; delivery over the
// chosen channel happens here, off the request path.
type RecordatorioJobPayload struct {
	RecordatorioID string  `json:"recordatorio_id"`
	FacturaID      string  `json:"factura_id"`
	NumeroFactura  string  `json:"numero_factura"`
	Canal          string  `json:"canal"`
	Mensaje        string  `json:"mensaje"`
	Email          *string `json:"email,omitempty"`
	Telefono       *string `json:"telefono,omitempty"`
	PDFPath        string  `json:"pdf_path,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecordatorio pushes a reminder delivery job to Redis.
// A nil Redis client (unit test mode) is a silent no-op.
func (d *Dispatcher) EnqueueRecordatorio(ctx context.Context, payload RecordatorioJobPayload) error {
	if d.rdb == nil {
		return nil
	}
	return d.enqueue(ctx, QueueRecordatorio, "recordatorio", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers routes dequeued jobs to their processors.
type Handlers struct {
	Recordatorio *RecordatorioWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the reminder queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers Handlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueRecordatorio).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "recordatorio":
		if handlers.Recordatorio != nil {
			handlers.Recordatorio.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type, dropping")
	}
}

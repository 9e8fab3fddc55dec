package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/models"
	"github.com/eventplanner/backend/pkg/queue"
)

// JobSource is the queue side the processor drains. Implemented by
// queue.Queue; faked in tests.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Sink persists archived check-ins. Implemented by checkin.Repository.
type Sink interface {
	Insert(ctx context.Context, rec *models.CheckIn) error
}

// CheckInArchiveProcessor drains check-in archive jobs into the database so
// the search endpoint has durable history to query.
type CheckInArchiveProcessor struct {
	sink   Sink
	queue  JobSource
	logger *zap.Logger
}

// NewCheckInArchiveProcessor creates a check-in archive processor.
func NewCheckInArchiveProcessor(sink Sink, q JobSource, logger *zap.Logger) *CheckInArchiveProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInArchiveProcessor{sink: sink, queue: q, logger: logger}
}

// Process executes one archive job.
func (p *CheckInArchiveProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCheckInArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CheckInArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.sink.Insert(ctx, &payload.CheckIn); err != nil {
		return fmt.Errorf("insert check-in: %w", err)
	}

	p.logger.Debug("check-in archived",
		zap.String("event_id", payload.CheckIn.EventID.String()),
		zap.Uint64("seq", payload.CheckIn.ID))
	return nil
}

// Run drains the queue until ctx is cancelled: dequeue, process, retry on
// error. Cancellation is honored on every path, including the backoff waits.
func (p *CheckInArchiveProcessor) Run(ctx context.Context) {
	for {
		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("check-in archive worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			if !p.backoff(ctx) {
				return
			}
			continue
		}
		if job == nil {
			if ctx.Err() != nil {
				p.logger.Info("check-in archive worker stopping")
				return
			}
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if !p.backoff(ctx) {
				return
			}
		}
	}
}

// backoff waits one retry interval. Returns false when ctx ends first.
func (p *CheckInArchiveProcessor) backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		p.logger.Info("check-in archive worker stopping")
		return false
	case <-time.After(queue.RetryBackoff):
		return true
	}
}

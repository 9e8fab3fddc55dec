package checkin

import (
	"context"

	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/models"
	"github.com/eventplanner/backend/pkg/queue"
)

// QueueArchiver forwards accepted submissions to the Redis job queue for the
// archive worker. Enqueue failures are logged and dropped: persistence is an
// extension, never a reason to fail a check-in.
type QueueArchiver struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueueArchiver creates a queue-backed archiver.
func NewQueueArchiver(q *queue.Queue, logger *zap.Logger) *QueueArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueArchiver{queue: q, logger: logger}
}

func (a *QueueArchiver) Archive(ctx context.Context, rec models.CheckIn) {
	if err := a.queue.EnqueueCheckInArchive(ctx, queue.CheckInArchivePayload{CheckIn: rec}); err != nil {
		a.logger.Warn("check-in archive enqueue failed",
			zap.String("event_id", rec.EventID.String()),
			zap.Uint64("seq", rec.ID),
			zap.Error(err))
	}
}

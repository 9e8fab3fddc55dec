package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventplanner/backend/internal/models"
	"github.com/eventplanner/backend/pkg/queue"
)

// fakeSource hands out queued jobs, then blocks until ctx ends.
type fakeSource struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retries []*queue.Job
}

func (s *fakeSource) Dequeue(ctx context.Context) (*queue.Job, string, error) {
	s.mu.Lock()
	if len(s.jobs) > 0 {
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		s.mu.Unlock()
		return job, queue.QueueCheckIns, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return nil, "", ctx.Err()
}

func (s *fakeSource) Retry(_ context.Context, job *queue.Job) error {
	s.mu.Lock()
	s.retries = append(s.retries, job)
	s.mu.Unlock()
	return nil
}

type fakeSink struct {
	mu   sync.Mutex
	recs []models.CheckIn
	err  error
	done chan struct{} // closed on first insert attempt
}

func (s *fakeSink) Insert(_ context.Context, rec *models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, *rec)
	return nil
}

func archiveJob(t *testing.T, rec models.CheckIn) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.CheckInArchivePayload{CheckIn: rec})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &queue.Job{
		ID:      uuid.NewString(),
		Type:    queue.JobTypeCheckInArchive,
		Payload: payload,
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestRunPersistsJobThenStopsOnCancel(t *testing.T) {
	t.Parallel()

	rec := models.CheckIn{ID: 7, EventID: uuid.New(), Scope: models.ScopeEvent, Name: "Asha", Code: "QR-7"}
	sink := &fakeSink{done: make(chan struct{})}
	inserted := sink.done
	source := &fakeSource{jobs: []*queue.Job{archiveJob(t, rec)}}
	p := NewCheckInArchiveProcessor(sink, source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-inserted:
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
	cancel()
	waitDone(t, done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.recs) != 1 || sink.recs[0].Code != "QR-7" || sink.recs[0].ID != 7 {
		t.Fatalf("unexpected archived records: %+v", sink.recs)
	}
}

// Cancellation must end the loop promptly, not after a retry backoff.
func TestRunStopsPromptlyOnCancel(t *testing.T) {
	t.Parallel()

	p := NewCheckInArchiveProcessor(&fakeSink{}, &fakeSource{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	waitDone(t, done)
}

func TestRunRetriesFailedJob(t *testing.T) {
	t.Parallel()

	rec := models.CheckIn{ID: 9, EventID: uuid.New(), Code: "QR-9"}
	sink := &fakeSink{err: errors.New("insert failed"), done: make(chan struct{})}
	attempted := sink.done
	source := &fakeSource{jobs: []*queue.Job{archiveJob(t, rec)}}
	p := NewCheckInArchiveProcessor(sink, source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-attempted:
	case <-time.After(time.Second):
		t.Fatal("job was never attempted")
	}
	// The loop is now in its backoff wait; cancellation must cut it short.
	cancel()
	waitDone(t, done)

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.retries) != 1 {
		t.Fatalf("expected 1 retried job, got %d", len(source.retries))
	}
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	t.Parallel()

	p := NewCheckInArchiveProcessor(&fakeSink{}, &fakeSource{}, nil)
	err := p.Process(context.Background(), &queue.Job{ID: uuid.NewString(), Type: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown job type")
	}
}

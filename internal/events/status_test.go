package events

import (
	"testing"
	"time"

	"github.com/eventplanner/backend/internal/models"
)

func statusPtr(s models.EventStatus) *models.EventStatus { return &s }
func timePtr(t time.Time) *time.Time                     { return &t }

func TestResolve(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	scheduled := func(status *models.EventStatus) *models.Event {
		return &models.Event{Status: status, StartsAt: timePtr(t0), EndsAt: timePtr(t1)}
	}

	tests := []struct {
		name string
		e    *models.Event
		now  time.Time
		want models.EventStatus
	}{
		{"before window is draft", scheduled(nil), t0.Add(-time.Hour), models.StatusDraft},
		{"one ns before start is draft", scheduled(nil), t0.Add(-time.Nanosecond), models.StatusDraft},
		{"start boundary is live", scheduled(nil), t0, models.StatusLive},
		{"inside window is live", scheduled(nil), t0.Add(4 * time.Hour), models.StatusLive},
		{"end boundary is live", scheduled(nil), t1, models.StatusLive},
		{"one ns after end is completed", scheduled(nil), t1.Add(time.Nanosecond), models.StatusCompleted},
		{"after window is completed", scheduled(nil), t1.Add(time.Hour), models.StatusCompleted},

		{"missing starts_at is draft", &models.Event{EndsAt: timePtr(t1)}, t0, models.StatusDraft},
		{"missing ends_at is draft", &models.Event{StartsAt: timePtr(t0)}, t0, models.StatusDraft},
		{"missing both is draft", &models.Event{}, t0, models.StatusDraft},

		{"cancelled override wins mid-window", scheduled(statusPtr(models.StatusCancelled)), t0.Add(time.Hour), models.StatusCancelled},
		{"trashed override wins mid-window", scheduled(statusPtr(models.StatusTrashed)), t0.Add(time.Hour), models.StatusTrashed},
		{"cancelled override wins with no schedule", &models.Event{Status: statusPtr(models.StatusCancelled)}, t0, models.StatusCancelled},
		{"trashed override wins after window", scheduled(statusPtr(models.StatusTrashed)), t1.Add(time.Hour), models.StatusTrashed},

		{"explicit live defers to schedule before start", scheduled(statusPtr(models.StatusLive)), t0.Add(-time.Hour), models.StatusDraft},
		{"explicit draft defers to schedule mid-window", scheduled(statusPtr(models.StatusDraft)), t0.Add(time.Hour), models.StatusLive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.e, tc.now); got != tc.want {
				t.Fatalf("Resolve() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e := &models.Event{
		Name:     "conf",
		StartsAt: timePtr(t0),
		EndsAt:   timePtr(t0.Add(8 * time.Hour)),
	}
	now := t0.Add(time.Hour)

	first := Resolve(e, now)
	for i := 0; i < 100; i++ {
		if got := Resolve(e, now); got != first {
			t.Fatalf("Resolve not deterministic: got %s then %s", first, got)
		}
	}

	// Fields other than the override and the schedule must not matter.
	other := *e
	other.Name = "renamed"
	other.Description = "different"
	tenant := "tenant-b"
	other.TenantID = &tenant
	if got := Resolve(&other, now); got != first {
		t.Fatalf("Resolve depends on unrelated fields: got %s, want %s", got, first)
	}
}

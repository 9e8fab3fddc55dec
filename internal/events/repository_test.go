package events

import (
	"strings"
	"testing"
)

func TestStatusPredicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{
			key:  "DRAFT",
			want: `(status IS NULL OR status NOT IN ('CANCELLED','TRASHED')) AND (starts_at IS NULL OR ends_at IS NULL OR starts_at > $3)`,
		},
		{
			key:  "LIVE",
			want: `(status IS NULL OR status NOT IN ('CANCELLED','TRASHED')) AND starts_at <= $3 AND ends_at >= $3`,
		},
		{
			key:  "COMPLETED",
			want: `(status IS NULL OR status NOT IN ('CANCELLED','TRASHED')) AND ends_at < $3`,
		},
		{key: "CANCELLED", want: `status = 'CANCELLED'`},
		{key: "TRASHED", want: `status = 'TRASHED'`},
		{key: "ALL", want: ""},
		{key: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := statusPredicate(tt.key, "$3"); got != tt.want {
				t.Fatalf("predicate for %q:\n got %q\nwant %q", tt.key, got, tt.want)
			}
		})
	}

	// A record in an explicit override state must never satisfy a
	// schedule-derived predicate; the shared guard enforces that.
	for _, key := range []string{"DRAFT", "LIVE", "COMPLETED"} {
		if !strings.Contains(statusPredicate(key, "$1"), `status NOT IN ('CANCELLED','TRASHED')`) {
			t.Fatalf("predicate for %q does not exclude overridden records", key)
		}
	}
}

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurrenceNext(t *testing.T) {
	r := NewRecurrence()
	now := time.Date(2026, 3, 10, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{
			name: "every hour on the hour",
			expr: "0 * * * *",
			want: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		},
		{
			name: "every minute",
			expr: "* * * * *",
			want: time.Date(2026, 3, 10, 14, 31, 0, 0, time.UTC),
		},
		{
			name: "daily descriptor",
			expr: "@daily",
			want: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Next(tt.expr, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(now), "next run is strictly after now")
		})
	}
}

func TestRecurrenceNext_InvalidExpression(t *testing.T) {
	r := NewRecurrence()
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	for _, expr := range []string{"not a cron", "99 * * * *", ""} {
		got, err := r.Next(expr, now)
		assert.Error(t, err, "expr %q should fail to parse", expr)
		assert.Equal(t, now.Add(24*time.Hour), got, "fallback is a daily retry")
	}
}

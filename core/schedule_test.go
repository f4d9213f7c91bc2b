package core

import (
	"testing"
	"time"
)

func TestFixedRetryScheduleFollowsDelayTable(t *testing.T) {
	schedule := DefaultRetrySchedule()

	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{retryCount: 1, want: time.Second},
		{retryCount: 2, want: 5 * time.Second},
		{retryCount: 3, want: 15 * time.Second},
		{retryCount: 4, want: time.Minute},
		{retryCount: 5, want: 5 * time.Minute},
		{retryCount: 9, want: 5 * time.Minute},
		{retryCount: 0, want: time.Second},
		{retryCount: -3, want: time.Second},
	}
	for _, tc := range cases {
		if got := schedule.NextDelay(tc.retryCount); got != tc.want {
			t.Fatalf("retry %d: expected %s, got %s", tc.retryCount, tc.want, got)
		}
	}
}

func TestFixedRetryScheduleEmptyTableFallsBack(t *testing.T) {
	schedule := FixedRetrySchedule{}
	if got := schedule.NextDelay(2); got != 5*time.Second {
		t.Fatalf("expected default table fallback, got %s", got)
	}
}

func TestFixedRetryScheduleCustomTable(t *testing.T) {
	schedule := FixedRetrySchedule{Delays: []time.Duration{time.Second, time.Hour}}
	if got := schedule.NextDelay(1); got != time.Second {
		t.Fatalf("expected first custom delay, got %s", got)
	}
	if got := schedule.NextDelay(7); got != time.Hour {
		t.Fatalf("expected last custom delay to repeat, got %s", got)
	}
}

package core

import "time"

// DefaultRetryDelays is the escalating backoff table applied between retry
// attempts. The last entry repeats when retries outnumber the table.
var DefaultRetryDelays = []time.Duration{
	time.Second,
	5 * time.Second,
	15 * time.Second,
	time.Minute,
	5 * time.Minute,
}

// FixedRetrySchedule indexes a fixed delay table rather than computing a
// closed-form curve, so the exact delays stay reproducible.
type FixedRetrySchedule struct {
	Delays []time.Duration
}

func DefaultRetrySchedule() FixedRetrySchedule {
	return FixedRetrySchedule{Delays: DefaultRetryDelays}
}

func (s FixedRetrySchedule) NextDelay(retryCount int) time.Duration {
	delays := s.Delays
	if len(delays) == 0 {
		delays = DefaultRetryDelays
	}
	if retryCount < 1 {
		retryCount = 1
	}
	index := retryCount - 1
	if index >= len(delays) {
		index = len(delays) - 1
	}
	return delays[index]
}

var _ RetrySchedule = FixedRetrySchedule{}

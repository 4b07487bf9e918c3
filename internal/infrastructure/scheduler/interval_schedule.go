package scheduler

import (
	"fmt"
	"time"
)

// minInterval guards against spin loops from zero or negative intervals.
const minInterval = time.Second

// IntervalSchedule fires a fixed duration after each run. Both periodic
// jobs here (cache sweep, board refresh) run on intervals, so this is the
// only Schedule implementation.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a schedule that fires every interval.
// Intervals below one second are raised to one second.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the run time following t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String renders the schedule in cron-style "@every" form.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

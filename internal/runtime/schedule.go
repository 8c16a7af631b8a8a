package runtime

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/c-fraser/connekted/internal/runtime/errors"
)

// Schedule determines when a sender runs next. Implementations are pure:
// given the current time and the previous execution time (zero on the first
// invocation) they return the next execution instant without side effects.
type Schedule interface {
	NextExecutionTime(now, previous time.Time) (time.Time, error)
}

type fixedIntervalSchedule struct {
	interval time.Duration
}

// NewFixedIntervalSchedule returns a schedule that fires every interval,
// anchored on the previous execution time. The interval must be positive.
func NewFixedIntervalSchedule(interval time.Duration) (Schedule, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrNonPositiveInterval, interval)
	}
	return &fixedIntervalSchedule{interval: interval}, nil
}

func (s *fixedIntervalSchedule) NextExecutionTime(now, previous time.Time) (time.Time, error) {
	if previous.IsZero() {
		return now.Add(s.interval), nil
	}
	return previous.Add(s.interval), nil
}

type initialDelaySchedule struct {
	delay time.Duration
	inner Schedule
}

// NewInitialDelaySchedule delays the first execution by delay, then delegates
// every subsequent computation to the wrapped schedule.
func NewInitialDelaySchedule(delay time.Duration, inner Schedule) (Schedule, error) {
	if delay < 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrNonPositiveInterval, delay)
	}
	if inner == nil {
		return nil, errors.ErrScheduleRequired
	}
	return &initialDelaySchedule{delay: delay, inner: inner}, nil
}

func (s *initialDelaySchedule) NextExecutionTime(now, previous time.Time) (time.Time, error) {
	if previous.IsZero() {
		return now.Add(s.delay), nil
	}
	return s.inner.NextExecutionTime(now, previous)
}

type cronSchedule struct {
	schedule cron.Schedule
	location *time.Location
}

// NewCronSchedule parses a standard five-field cron expression and returns a
// schedule that fires on the earliest matching instant strictly after the
// current time, evaluated in the given location. A nil location means UTC.
func NewCronSchedule(expression string, location *time.Location) (Schedule, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := cron.ParseStandard(expression)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expression, err)
	}
	return &cronSchedule{schedule: parsed, location: location}, nil
}

func (s *cronSchedule) NextExecutionTime(now, _ time.Time) (time.Time, error) {
	next := s.schedule.Next(now.In(s.location))
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%w: no instant after %s", errors.ErrNoNextExecution, now)
	}
	return next, nil
}

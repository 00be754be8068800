// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Click count and interval bounds accepted by the worker and the UI inputs.
const (
	MinClickCount     = 1
	MaxClickCount     = 99999
	DefaultClickCount = 10

	MinIntervalMs     = 100
	MaxIntervalMs     = 10000
	DefaultIntervalMs = 1000
)

// ErrInvalidConfig is returned when a ClickConfig is outside the accepted bounds.
var ErrInvalidConfig = errors.New("invalid click config")

// Point is a screen coordinate in pixels.
type Point struct {
	X int
	Y int
}

// String renders the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// ClickEvent records a single performed click.
type ClickEvent struct {
	Sequence  int
	Timestamp time.Time
	Position  Point
}

// ClickConfig defines one clicking run.
type ClickConfig struct {
	ClickCount int
	IntervalMs int
}

// DefaultClickConfig returns the startup values of the UI inputs.
func DefaultClickConfig() ClickConfig {
	return ClickConfig{ClickCount: DefaultClickCount, IntervalMs: DefaultIntervalMs}
}

// Interval returns the pause between clicks.
func (c ClickConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Validate checks the count and interval bounds.
func (c ClickConfig) Validate() error {
	if c.ClickCount < MinClickCount || c.ClickCount > MaxClickCount {
		return fmt.Errorf("%w: click count must be between %d and %d, got %d", ErrInvalidConfig, MinClickCount, MaxClickCount, c.ClickCount)
	}
	if c.IntervalMs < MinIntervalMs || c.IntervalMs > MaxIntervalMs {
		return fmt.Errorf("%w: interval must be between %d and %d ms, got %d", ErrInvalidConfig, MinIntervalMs, MaxIntervalMs, c.IntervalMs)
	}
	return nil
}

// RunResult is reported by the worker when a run ends.
type RunResult struct {
	Clicks    int
	Cancelled bool
	Err       error
}

// RunSummary describes a finished or in-progress run kept in the history.
type RunSummary struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	Config    ClickConfig
	Clicks    int
	Cancelled bool
	Error     string
}

// Finished reports whether the run has an end time recorded.
func (s RunSummary) Finished() bool {
	return !s.EndedAt.IsZero()
}

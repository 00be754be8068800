package model

import (
	"errors"
	"testing"
	"time"
)

func TestClickConfigValidateBounds(t *testing.T) {
	valid := []ClickConfig{
		{ClickCount: 1, IntervalMs: 100},
		{ClickCount: 99999, IntervalMs: 10000},
		DefaultClickConfig(),
	}
	for _, cfg := range valid {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected %+v to be valid, got %v", cfg, err)
		}
	}

	invalid := []ClickConfig{
		{ClickCount: 0, IntervalMs: 1000},
		{ClickCount: 100000, IntervalMs: 1000},
		{ClickCount: 10, IntervalMs: 99},
		{ClickCount: 10, IntervalMs: 10001},
	}
	for _, cfg := range invalid {
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("expected %+v to be rejected", cfg)
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	}
}

func TestClickConfigInterval(t *testing.T) {
	cfg := ClickConfig{ClickCount: 3, IntervalMs: 250}
	if got := cfg.Interval(); got != 250*time.Millisecond {
		t.Fatalf("unexpected interval: %v", got)
	}
}

func TestPointString(t *testing.T) {
	if got := (Point{X: 10, Y: -20}).String(); got != "(10, -20)" {
		t.Fatalf("unexpected point string: %q", got)
	}
}

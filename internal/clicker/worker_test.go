package clicker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/autoclick/internal/logging"
	"github.com/verte-zerg/autoclick/internal/model"
)

type fakeExecutor struct {
	mu        sync.Mutex
	positions []model.Point
	clicked   []model.Point
	failAt    int
}

func (f *fakeExecutor) Position() (model.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.clicked)
	if idx < len(f.positions) {
		return f.positions[idx], nil
	}
	return model.Point{X: idx, Y: idx * 2}, nil
}

func (f *fakeExecutor) Click(p model.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.clicked)+1 == f.failAt {
		return errors.New("input injection denied")
	}
	f.clicked = append(f.clicked, p)
	return nil
}

func (f *fakeExecutor) clicks() []model.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Point(nil), f.clicked...)
}

type recorder struct {
	mu     sync.Mutex
	events []model.ClickEvent
	result model.RunResult
}

func (r *recorder) attach(w *Worker) {
	w.OnClick(func(ev model.ClickEvent) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	w.OnFinished(func(res model.RunResult) {
		r.mu.Lock()
		r.result = res
		r.mu.Unlock()
	})
}

func waitDone(t *testing.T, w *Worker, timeout time.Duration) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(timeout):
		t.Fatalf("worker did not finish within %v", timeout)
	}
}

func instantSleeper(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func TestWorkerCompletesAllClicksInOrder(t *testing.T) {
	exec := &fakeExecutor{positions: []model.Point{{X: 10, Y: 20}, {X: 15, Y: 25}}}
	var slept []time.Duration
	var sleptMu sync.Mutex
	w, err := NewWorker(model.ClickConfig{ClickCount: 3, IntervalMs: 200}, Options{
		Executor: exec,
		Sleeper: func(ctx context.Context, d time.Duration) error {
			sleptMu.Lock()
			slept = append(slept, d)
			sleptMu.Unlock()
			return ctx.Err()
		},
	})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, time.Second)

	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.events))
	}
	for i, ev := range rec.events {
		if ev.Sequence != i+1 {
			t.Fatalf("event %d has sequence %d", i, ev.Sequence)
		}
		if ev.Timestamp.IsZero() {
			t.Fatalf("event %d has no timestamp", i)
		}
	}
	if rec.events[0].Position != (model.Point{X: 10, Y: 20}) || rec.events[1].Position != (model.Point{X: 15, Y: 25}) {
		t.Fatalf("positions were not sampled per click: %+v", rec.events)
	}
	if got := exec.clicks(); len(got) != 3 || got[1] != rec.events[1].Position {
		t.Fatalf("executor clicks do not match events: %+v", got)
	}
	if rec.result.Clicks != 3 || rec.result.Cancelled || rec.result.Err != nil {
		t.Fatalf("unexpected result: %+v", rec.result)
	}
	if len(slept) != 3 || slept[0] != 200*time.Millisecond {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestWorkerStopDuringIntervalEndsWithinOneInterval(t *testing.T) {
	exec := &fakeExecutor{}
	cfg := model.ClickConfig{ClickCount: 10, IntervalMs: 5000}
	w, err := NewWorker(cfg, Options{Executor: exec})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	var stoppedAt time.Time
	w.OnClick(func(ev model.ClickEvent) {
		if ev.Sequence == 1 {
			stoppedAt = time.Now()
			w.Stop()
		}
	})
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, 2*time.Second)
	if latency := time.Since(stoppedAt); latency >= cfg.Interval() {
		t.Fatalf("stop took a full interval to take effect: %v", latency)
	}
	if len(rec.events) != 1 || len(exec.clicks()) != 1 {
		t.Fatalf("expected a single click after stop, got %d events", len(rec.events))
	}
	if !rec.result.Cancelled || rec.result.Clicks != 1 {
		t.Fatalf("unexpected result: %+v", rec.result)
	}
}

func TestWorkerStopAfterSecondClick(t *testing.T) {
	exec := &fakeExecutor{}
	w, err := NewWorker(model.ClickConfig{ClickCount: 10, IntervalMs: 5000}, Options{Executor: exec, Sleeper: instantSleeper})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	w.OnClick(func(ev model.ClickEvent) {
		if ev.Sequence == 2 {
			w.Stop()
		}
	})
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, 2*time.Second)
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events after stop, got %d", len(rec.events))
	}
	if !rec.result.Cancelled || rec.result.Clicks != 2 {
		t.Fatalf("unexpected result: %+v", rec.result)
	}
}

func TestWorkerStopBeforeStartProducesNoClicks(t *testing.T) {
	exec := &fakeExecutor{}
	w, err := NewWorker(model.ClickConfig{ClickCount: 5, IntervalMs: 100}, Options{Executor: exec, Sleeper: instantSleeper})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	w.Stop()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, time.Second)
	if len(rec.events) != 0 || !rec.result.Cancelled {
		t.Fatalf("expected cancelled run with no events, got %d events, %+v", len(rec.events), rec.result)
	}
}

func TestWorkerRealSleepInterval(t *testing.T) {
	w, err := NewWorker(model.ClickConfig{ClickCount: 3, IntervalMs: 100}, Options{Executor: &fakeExecutor{}})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, 3*time.Second)
	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.events))
	}
	gap := rec.events[1].Timestamp.Sub(rec.events[0].Timestamp)
	if gap < 90*time.Millisecond {
		t.Fatalf("clicks were not spaced by the interval: %v", gap)
	}
}

func TestWorkerClickFailureEndsRun(t *testing.T) {
	exec := &fakeExecutor{failAt: 2}
	w, err := NewWorker(model.ClickConfig{ClickCount: 5, IntervalMs: 100}, Options{Executor: exec, Sleeper: instantSleeper})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, time.Second)
	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event before failure, got %d", len(rec.events))
	}
	if rec.result.Err == nil || rec.result.Clicks != 1 {
		t.Fatalf("expected failure result, got %+v", rec.result)
	}
}

type panickingExecutor struct{}

func (panickingExecutor) Position() (model.Point, error) {
	return model.Point{X: 1, Y: 2}, nil
}

func (panickingExecutor) Click(model.Point) error {
	panic("display connection lost")
}

func TestWorkerPanicEndsRunWithCriticalLog(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Console: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	w, err := NewWorker(model.ClickConfig{ClickCount: 3, IntervalMs: 100}, Options{
		Executor: panickingExecutor{},
		Sleeper:  instantSleeper,
		Logger:   log,
	})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	rec := &recorder{}
	rec.attach(w)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, w, time.Second)
	if rec.result.Err == nil || !strings.Contains(rec.result.Err.Error(), "display connection lost") {
		t.Fatalf("expected panic to fail the run, got %+v", rec.result)
	}
	out := buf.String()
	if !strings.Contains(out, " - CRITICAL - Critical error in click worker: display connection lost") {
		t.Fatalf("missing critical line: %q", out)
	}
	if !strings.Contains(out, "goroutine ") {
		t.Fatalf("missing stack trace: %q", out)
	}
}

func TestWorkerStartTwice(t *testing.T) {
	w, err := NewWorker(model.ClickConfig{ClickCount: 1, IntervalMs: 100}, Options{Executor: &fakeExecutor{}, Sleeper: instantSleeper})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	waitDone(t, w, time.Second)
}

func TestNewWorkerRejectsInvalidConfig(t *testing.T) {
	if _, err := NewWorker(model.ClickConfig{ClickCount: 0, IntervalMs: 100}, Options{Executor: &fakeExecutor{}}); !errors.Is(err, model.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewWorker(model.DefaultClickConfig(), Options{}); err == nil {
		t.Fatalf("expected error without executor")
	}
}

// Package clicker runs the background click loop.
package clicker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/verte-zerg/autoclick/internal/logging"
	"github.com/verte-zerg/autoclick/internal/model"
)

// ErrAlreadyStarted is returned when Start is called more than once.
var ErrAlreadyStarted = errors.New("click worker already started")

// Executor reads the pointer and performs native clicks.
type Executor interface {
	Position() (model.Point, error)
	Click(p model.Point) error
}

// Options configure a Worker.
type Options struct {
	Executor Executor
	Clock    func() time.Time
	Sleeper  func(context.Context, time.Duration) error
	Logger   logging.Logger
}

// Worker performs a bounded, cancelable sequence of clicks on its own goroutine.
type Worker struct {
	cfg      model.ClickConfig
	executor Executor
	clock    func() time.Time
	sleeper  func(context.Context, time.Duration) error
	log      logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	// clicks is owned by the loop goroutine.
	clicks int

	mu         sync.Mutex
	started    bool
	onClick    []func(model.ClickEvent)
	onFinished []func(model.RunResult)
}

// NewWorker validates the config and returns an idle worker.
func NewWorker(cfg model.ClickConfig, opts Options) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Executor == nil {
		return nil, errors.New("click executor is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = defaultSleeper
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		cfg:      cfg,
		executor: opts.Executor,
		clock:    clock,
		sleeper:  sleeper,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// OnClick registers fn to receive every click event. Register before Start.
func (w *Worker) OnClick(fn func(model.ClickEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClick = append(w.onClick, fn)
}

// OnFinished registers fn to receive the run result. Register before Start.
func (w *Worker) OnFinished(fn func(model.RunResult)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onFinished = append(w.onFinished, fn)
}

// Start launches the click loop.
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	onClick := slices.Clone(w.onClick)
	onFinished := slices.Clone(w.onFinished)
	w.mu.Unlock()

	w.log.Info("Click worker started",
		logging.Int("click_count", w.cfg.ClickCount),
		logging.Int("interval_ms", w.cfg.IntervalMs))
	go w.run(onClick, onFinished)
	return nil
}

// Stop requests cancellation. The loop exits before its next click.
func (w *Worker) Stop() {
	w.cancel()
}

// Done is closed once the loop has exited and finished callbacks returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) run(onClick []func(model.ClickEvent), onFinished []func(model.RunResult)) {
	defer close(w.done)
	result := w.safeLoop(onClick)
	switch {
	case result.Err != nil:
		w.log.Error("Click worker failed", logging.Int("clicks", result.Clicks), logging.Error(result.Err))
	default:
		w.log.Info("Click worker stopped",
			logging.Int("clicks", result.Clicks),
			logging.Bool("cancelled", result.Cancelled))
	}
	for _, fn := range onFinished {
		fn(result)
	}
}

// safeLoop turns a panic in the loop, such as one raised by the native
// input layer, into a failed run.
func (w *Worker) safeLoop(onClick []func(model.ClickEvent)) (result model.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			w.cancel()
			w.log.Critical(fmt.Sprintf("Critical error in click worker: %v", r), logging.Stack(debug.Stack()))
			result = model.RunResult{Clicks: w.clicks, Err: fmt.Errorf("click worker panic: %v", r)}
		}
	}()
	return w.loop(onClick)
}

func (w *Worker) loop(onClick []func(model.ClickEvent)) model.RunResult {
	defer w.cancel()
	clicks := 0
	for clicks < w.cfg.ClickCount {
		if w.ctx.Err() != nil {
			return model.RunResult{Clicks: clicks, Cancelled: true}
		}
		pos, err := w.executor.Position()
		if err != nil {
			return model.RunResult{Clicks: clicks, Err: fmt.Errorf("read pointer position: %w", err)}
		}
		if err := w.executor.Click(pos); err != nil {
			return model.RunResult{Clicks: clicks, Err: fmt.Errorf("click at %s: %w", pos, err)}
		}
		event := model.ClickEvent{
			Sequence:  clicks + 1,
			Timestamp: w.clock(),
			Position:  pos,
		}
		w.log.Debug(fmt.Sprintf("Click recorded: #%d at %s", event.Sequence, event.Position))
		for _, fn := range onClick {
			fn(event)
		}
		clicks++
		w.clicks = clicks

		if err := w.sleeper(w.ctx, w.cfg.Interval()); err != nil {
			return model.RunResult{Clicks: clicks, Cancelled: clicks < w.cfg.ClickCount}
		}
	}
	return model.RunResult{Clicks: clicks}
}

func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package clicker

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/autoclick/internal/model"
)

func TestRunDeliversEventsInOrder(t *testing.T) {
	w, err := NewWorker(model.ClickConfig{ClickCount: 5, IntervalMs: 100}, Options{Executor: &fakeExecutor{}, Sleeper: instantSleeper})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	var seqs []int
	res, err := Run(context.Background(), w, func(ev model.ClickEvent) {
		seqs = append(seqs, ev.Sequence)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Clicks != 5 || res.Cancelled {
		t.Fatalf("unexpected result: %+v", res)
	}
	for i, seq := range seqs {
		if seq != i+1 {
			t.Fatalf("out of order delivery: %v", seqs)
		}
	}
	if len(seqs) != 5 {
		t.Fatalf("expected 5 events, got %d", len(seqs))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	w, err := NewWorker(model.ClickConfig{ClickCount: 100, IntervalMs: 10000}, Options{Executor: &fakeExecutor{}})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		res    model.RunResult
		clicks int
	}
	out := make(chan outcome, 1)
	go func() {
		clicks := 0
		res, _ := Run(ctx, w, func(model.ClickEvent) {
			clicks++
			cancel()
		})
		out <- outcome{res: res, clicks: clicks}
	}()

	select {
	case o := <-out:
		if o.clicks != 1 || o.res.Clicks != 1 || !o.res.Cancelled {
			t.Fatalf("unexpected outcome: %+v", o)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

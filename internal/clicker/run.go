package clicker

import (
	"context"

	"github.com/verte-zerg/autoclick/internal/model"
)

type runMsg struct {
	event  *model.ClickEvent
	result *model.RunResult
}

// Run starts w and blocks until it finishes. onClick is called on the
// calling goroutine, in emission order. Cancelling ctx stops the worker.
func Run(ctx context.Context, w *Worker, onClick func(model.ClickEvent)) (model.RunResult, error) {
	msgs := make(chan runMsg, 64)
	w.OnClick(func(ev model.ClickEvent) {
		msgs <- runMsg{event: &ev}
	})
	w.OnFinished(func(res model.RunResult) {
		msgs <- runMsg{result: &res}
	})
	if err := w.Start(); err != nil {
		return model.RunResult{}, err
	}

	done := ctx.Done()
	for {
		select {
		case <-done:
			w.Stop()
			done = nil
		case msg := <-msgs:
			if msg.result != nil {
				return *msg.result, nil
			}
			if onClick != nil {
				onClick(*msg.event)
			}
		}
	}
}

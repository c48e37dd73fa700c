package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and hands them to a sink.
// It keeps background processing testable without wiring queue
// implementations into domain services.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Sink failures are logged
// and skipped; losing one audit record must not take the service down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

// drain flushes whatever is still buffered at shutdown.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "audit sink append failed",
			"action", event.Action,
			"error", err,
		)
	}
}

package audit

import (
	"context"
	"log/slog"

	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// Publisher hands events to the pipeline. Domain services depend on this
// narrow surface so tests can swap in a recording fake.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit stamps the event with request-scoped metadata and queues it. A
// full inbox drops the event with a warning rather than blocking the
// request path.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	if base.StaffID == "" {
		base.StaffID = requestcontext.StaffID(ctx)
	}
	if base.ClientIP == "" {
		base.ClientIP = requestcontext.ClientIP(ctx)
	}
	if base.Device == "" {
		base.Device = requestcontext.DeviceSummary(ctx)
	}

	select {
	case p.inbox <- base:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", base.Action,
				"subject", base.Subject,
			)
		}
	}
	return nil
}

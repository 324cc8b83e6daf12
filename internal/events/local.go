package events

import (
	"context"
	"log/slog"
)

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (n *NoopPublisher) Close() error { return nil }

// LogPublisher writes each event to a logger at debug level instead of a bus.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "event", "topic", topic, "graph", graphOf(event))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

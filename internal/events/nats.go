package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// clientName identifies hypergraph connections in NATS monitoring.
	clientName = "hypergraph"

	// HeaderGraph carries the graph id of a published event so subscribers
	// can filter without decoding the payload.
	HeaderGraph = "Hypergraph-Graph"

	defaultBuffer = 64
)

// connect dials url with reconnection enabled. Caller options are applied
// after the defaults and may override them.
func connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	defaults := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher publishes JSON-encoded events to NATS subjects named by topic.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	msg := nats.NewMsg(topic)
	msg.Data = data
	if g := graphOf(event); g != "" {
		msg.Header.Set(HeaderGraph, g)
	}
	return p.conn.PublishMsg(msg)
}

// Flush waits until the server has processed every published event.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber subscribes to events from NATS subjects.
type NATSSubscriber struct {
	conn   *nats.Conn
	buffer int
}

// NewNATSSubscriber connects to NATS with automatic reconnection support.
// Extra nats.Option values (e.g. disconnect/reconnect handlers) can be appended.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	nc, err := connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSSubscriber{conn: nc, buffer: defaultBuffer}, nil
}

// Subscribe returns a channel of messages for the given topic (supports NATS
// wildcards like "hypergraph.>"). Messages are dropped while the channel is
// full. Call the returned cancel function to unsubscribe and close the channel.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	sub := &subscription{ch: make(chan Message, s.buffer)}

	ns, err := s.conn.Subscribe(topic, sub.deliver)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	sub.ns = ns

	// The subscription must reach the server before returning, or events
	// published on other connections right after may not be routed to it.
	if err := s.conn.Flush(); err != nil {
		sub.cancel()
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}
	return sub.ch, sub.cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}

// subscription bridges NATS callbacks to a channel. cancel discards undelivered
// messages and closes the channel exactly once; deliver is a no-op afterwards.
type subscription struct {
	ns *nats.Subscription
	ch chan Message

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func (s *subscription) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	m := Message{Topic: msg.Subject, Data: msg.Data}
	if msg.Header != nil {
		m.Graph = msg.Header.Get(HeaderGraph)
	}
	select {
	case s.ch <- m:
	default:
	}
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		if s.ns != nil {
			_ = s.ns.Unsubscribe()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
	drain:
		for {
			select {
			case <-s.ch:
			default:
				break drain
			}
		}
		close(s.ch)
	})
}

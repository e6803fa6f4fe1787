package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the bus subject gateway auth decisions are published to.
const DefaultSubject = "contestapp.gateway.auth"

// NATSPublisher publishes audit events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the broker at url and publishes to subject.
// An empty subject falls back to DefaultSubject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("contestapp-gateway"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connection failed: %w", err)
	}

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish marshals the event and publishes it. Publishing is fire-and-forget;
// the request path never blocks on broker acknowledgement.
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Close drains the connection so buffered events are flushed before shutdown.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

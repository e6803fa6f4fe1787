// Package audit records gateway authentication decisions.
//
// Every decision is logged by the router; this package additionally publishes
// decision events to the platform message bus when a broker is configured, so
// downstream consumers (admin dashboard, anomaly detection) can follow auth
// activity without scraping logs.
package audit

import (
	"context"
	"time"
)

// Event is one authentication decision made by the gateway.
type Event struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	UserID    string    `json:"user_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Status    int       `json:"status"`
}

// Publisher delivers audit events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events. Used when no message bus is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

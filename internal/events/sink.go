// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events delivers category mutation events to the notification/audit
// sink. Delivery is at-most-once and best-effort: a sink failure is logged
// and never fails the mutation that produced the event.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStream is the Valkey stream mutation events are appended to.
	DefaultStream = "category-events"

	// publishTimeout caps how long a mutation waits on the sink.
	publishTimeout = 2 * time.Second
)

// Event describes a single tree mutation for downstream consumers.
type Event struct {
	Action     string    `json:"action"`
	CategoryID uuid.UUID `json:"category_id"`
	ActorID    string    `json:"actor_id"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
}

// Values returns the event as a flat map for stream entries.
func (e Event) Values() map[string]any {
	return map[string]any{
		"action":      e.Action,
		"category_id": e.CategoryID.String(),
		"actor_id":    e.ActorID,
		"details":     e.Details,
		"timestamp":   e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// Sink receives mutation events. Implementations must not block beyond a
// short internal timeout and must swallow their own delivery errors.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// ValkeySink appends events to a Valkey stream with XADD.
type ValkeySink struct {
	client *redis.Client
	stream string
}

// NewValkeySink returns a sink writing to the given stream name.
// An empty stream name selects DefaultStream.
func NewValkeySink(client *redis.Client, stream string) *ValkeySink {
	if stream == "" {
		stream = DefaultStream
	}
	return &ValkeySink{client: client, stream: stream}
}

// Publish appends the event to the stream. Failures are logged, not returned.
func (s *ValkeySink) Publish(ctx context.Context, e Event) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: e.Values(),
	}).Err()
	if err != nil {
		slog.Warn("event publish failed",
			"stream", s.stream,
			"action", e.Action,
			"category_id", e.CategoryID,
			"error", err,
		)
	}
}

// LogSink writes events to the structured log. Used when no Valkey is
// configured and as the default in tests.
type LogSink struct{}

// Publish logs the event at info level.
func (LogSink) Publish(_ context.Context, e Event) {
	slog.Info("category event",
		"action", e.Action,
		"category_id", e.CategoryID,
		"actor_id", e.ActorID,
		"details", e.Details,
	)
}

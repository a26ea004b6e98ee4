// Package pulse exposes an actions.Notifier that publishes completion and
// failure notifications to goa.design/pulse streams. It mirrors the layering
// used by existing Pulse deployments: callers build a Redis client, pass it
// to NewSink, and hand the resulting sink to the action runner.
package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/pulse/streaming"
	streamopts "goa.design/pulse/streaming/options"

	"github.com/conciergehq/concierge-go/actions"
)

type (
	// Options configures the Pulse sink.
	Options struct {
		// Redis is the Redis connection backing the Pulse streams. Required.
		Redis *redis.Client
		// StreamName derives the target stream from a notification.
		// Defaults to "notifications/<tenantId>".
		StreamName func(actions.Notification) string
		// StreamMaxLen bounds the number of entries kept per stream. Zero
		// uses Pulse defaults.
		StreamMaxLen int
		// OperationTimeout bounds individual publish operations. Zero means
		// no timeout.
		OperationTimeout time.Duration
	}

	// Publisher is the subset of Pulse stream operations the sink needs.
	// The default implementation opens the named stream on the Redis
	// connection; tests substitute an in-memory publisher.
	Publisher interface {
		Publish(ctx context.Context, stream, event string, payload []byte) (string, error)
	}

	// Sink publishes action notifications into Pulse streams. Thread-safe
	// for concurrent Notify calls.
	Sink struct {
		publisher  Publisher
		streamName func(actions.Notification) string
		timeout    time.Duration
	}

	pulsePublisher struct {
		redis  *redis.Client
		maxLen int
	}
)

var _ actions.Notifier = (*Sink)(nil)

// NewSink constructs a Pulse-backed notifier. The Redis field in opts is
// required; StreamName defaults to a per-tenant stream.
func NewSink(opts Options) (*Sink, error) {
	if opts.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	name := opts.StreamName
	if name == nil {
		name = defaultStreamName
	}
	return &Sink{
		publisher:  &pulsePublisher{redis: opts.Redis, maxLen: opts.StreamMaxLen},
		streamName: name,
		timeout:    opts.OperationTimeout,
	}, nil
}

func defaultStreamName(n actions.Notification) string {
	return "notifications/" + n.TenantID
}

// Notify publishes the notification to its tenant stream. The event name is
// the effect kind; the payload is the JSON-encoded notification.
func (s *Sink) Notify(ctx context.Context, n actions.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.publisher.Publish(ctx, s.streamName(n), string(n.Kind), payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Publish opens the named Pulse stream and appends the event.
func (p *pulsePublisher) Publish(ctx context.Context, stream, event string, payload []byte) (string, error) {
	var opts []streamopts.Stream
	if p.maxLen > 0 {
		opts = append(opts, streamopts.WithStreamMaxLen(p.maxLen))
	}
	str, err := streaming.NewStream(stream, p.redis, opts...)
	if err != nil {
		return "", fmt.Errorf("create pulse stream: %w", err)
	}
	id, err := str.Add(ctx, event, payload)
	if err != nil {
		return "", fmt.Errorf("pulse add: %w", err)
	}
	return id, nil
}

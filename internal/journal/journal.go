// Package journal keeps an append-only audit trail of task mutations in
// JetStream and rebuilds per-user history from it.
package journal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gosimple/slug"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Entry is one journal event.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Scope     string    `json:"scope"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Kind      string    `json:"kind,omitempty"`
	TaskID    int64     `json:"task_id,omitempty"`
	Input     string    `json:"input,omitempty"`
	Error     string    `json:"error,omitempty"`
	Data      string    `json:"data,omitempty"`
}

// Scope builds the subject token for a user on an API host.
func Scope(host, username string) string {
	return slug.Make(host + "-" + username)
}

// Store publishes and replays journal entries.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore wraps a JetStream context and the journal stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Publish appends an entry.
func (s *Store) Publish(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Scope == "" {
		return fmt.Errorf("journal entry has no scope")
	}

	data, err := sonic.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	subject := nats.SubjectForEvent(e.Scope, e.Type)
	if _, err := s.js.Publish(ctx, subject, data); err != nil {
		logger.Error("Failed to publish journal entry to %s: %v", subject, err)
		return fmt.Errorf("failed to publish entry: %w", err)
	}
	return nil
}

// Load replays every entry for scope and reduces it into a History.
func (s *Store) Load(ctx context.Context, scope string) (*History, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForScope(scope),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	h := NewHistory(scope)

	const batchSize = 500
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var e Entry
			if err := sonic.Unmarshal(msg.Data(), &e); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			if e.ID == "" {
				meta, _ := msg.Metadata()
				if meta != nil {
					e.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
				}
			}
			h.Apply(e)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("journal: skipped %d malformed entries for %s", malformed, scope)
	}
	return h, nil
}

package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName = "taskdeck_mutations"

	// Event types
	EventTypeMutation = "mutation"
	EventTypeSession  = "session"
)

// SubjectForScope returns the wildcard subject for all events of a scope.
// Example: "taskdeck.localhost-5000-ana.>"
func SubjectForScope(scope string) string {
	return fmt.Sprintf("taskdeck.%s.>", scope)
}

// SubjectForEvent returns the subject for an event type in a scope.
// Example: "taskdeck.localhost-5000-ana.mutation"
func SubjectForEvent(scope, eventType string) string {
	return fmt.Sprintf("taskdeck.%s.%s", scope, eventType)
}

// SetupStream creates or updates the journal stream with 30-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"taskdeck.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}

// Package evalctx holds the per-event state the accessor, operator, and
// extractor packages evaluate against: the immutable Event and the
// per-evaluation InternalEvent (event plus extracted variables).
package evalctx

import (
	"fmt"

	"github.com/0x4d31/matcherd/internal/value"
)

// Event is an input record: a type, a creation timestamp, an untyped
// payload, and optional metadata. Immutable once constructed.
type Event struct {
	TraceID   string
	EventType string
	CreatedMs uint64
	Payload   map[string]value.Value
	Metadata  map[string]value.Value
}

// NewEvent validates and constructs an Event. event_type must be non-empty.
func NewEvent(eventType string, createdMs uint64, payload, metadata map[string]value.Value, traceID string) (*Event, error) {
	if eventType == "" {
		return nil, fmt.Errorf("evalctx: event_type is required")
	}
	if payload == nil {
		payload = map[string]value.Value{}
	}
	return &Event{
		TraceID:   traceID,
		EventType: eventType,
		CreatedMs: createdMs,
		Payload:   payload,
		Metadata:  metadata,
	}, nil
}

// topLevelFields are the only fields the "event" root resolves against.
const (
	FieldEventType = "event_type"
	FieldCreatedMs = "created_ms"
	FieldPayload   = "payload"
	FieldMetadata  = "metadata"
)

// AsValue returns the top-level mapping {event_type, created_ms, payload,
// metadata} that the "event" accessor root resolves against.
func (e *Event) AsValue() value.Value {
	if e == nil {
		return value.Null()
	}
	fields := map[string]value.Value{
		FieldEventType: value.String(e.EventType),
		FieldCreatedMs: value.Int(int64(e.CreatedMs)),
		FieldPayload:   value.Map(e.Payload),
	}
	if e.Metadata != nil {
		fields[FieldMetadata] = value.Map(e.Metadata)
	} else {
		fields[FieldMetadata] = value.Map(map[string]value.Value{})
	}
	return value.Map(fields)
}

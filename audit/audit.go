// Package audit records structured events for sensitive actions: secret
// rotation, backup and restore runs, and field decryption failures. Events are
// emitted to pluggable sinks so callers can fan out to a log, the document
// store, or both.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the subsystems in this module. Callers may define their
// own action names for domain events (record created, user deleted, ...).
const (
	ActionBackup        = "backup"
	ActionRestore       = "restore"
	ActionRotate        = "rotate"
	ActionDecryptFailed = "decrypt_failed"
)

// Event is a single audit trail entry. Events are never encrypted: the trail
// must stay readable even when the operator secret is lost or rotated.
type Event struct {
	ID         string            `json:"id"`
	Time       time.Time         `json:"time"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	Collection string            `json:"collection,omitempty"`
	RecordID   string            `json:"recordId,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
}

// New creates an event with a fresh ID and the current UTC time.
func New(actor, action string) Event {
	return Event{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC(),
		Actor:  actor,
		Action: action,
	}
}

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// Fanout returns a Sink that emits to every given sink, collecting errors.
func Fanout(sinks ...Sink) Sink {
	return fanoutSink(sinks)
}

type fanoutSink []Sink

func (f fanoutSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop is a Sink that discards all events. Use when auditing is not wired.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }

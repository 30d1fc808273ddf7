package audit

import (
	"context"
	"log/slog"
	"time"
)

// LogSink writes audit events to a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger falls back to slog.Default().
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

// Emit implements Sink.
func (s *LogSink) Emit(ctx context.Context, ev Event) error {
	attrs := []any{
		"id", ev.ID,
		"actor", ev.Actor,
		"action", ev.Action,
	}
	if ev.Collection != "" {
		attrs = append(attrs, "collection", ev.Collection)
	}
	if ev.RecordID != "" {
		attrs = append(attrs, "record_id", ev.RecordID)
	}
	for k, v := range ev.Detail {
		attrs = append(attrs, k, v)
	}
	s.log.InfoContext(ctx, "audit", attrs...)
	return nil
}

// PutFunc persists one audit record. The document store's raw insert satisfies
// this; the indirection keeps this package free of a storage dependency.
type PutFunc func(ctx context.Context, record map[string]any) error

// StoreSink appends audit events to a persistent collection.
type StoreSink struct {
	put PutFunc
}

// NewStoreSink creates a StoreSink backed by the given insert function.
func NewStoreSink(put PutFunc) *StoreSink {
	return &StoreSink{put: put}
}

// Emit implements Sink. The event is stored as a plain record; timestamps are
// RFC 3339 strings so the collection round-trips through JSON backups.
func (s *StoreSink) Emit(ctx context.Context, ev Event) error {
	record := map[string]any{
		"id":     ev.ID,
		"time":   ev.Time.Format(time.RFC3339Nano),
		"actor":  ev.Actor,
		"action": ev.Action,
	}
	if ev.Collection != "" {
		record["collection"] = ev.Collection
	}
	if ev.RecordID != "" {
		record["recordId"] = ev.RecordID
	}
	if len(ev.Detail) > 0 {
		detail := make(map[string]any, len(ev.Detail))
		for k, v := range ev.Detail {
			detail[k] = v
		}
		record["detail"] = detail
	}
	return s.put(ctx, record)
}

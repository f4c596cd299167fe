package storage

import (
	"context"

	"ammCore/internal/model"
)

// EventSink receives events after their transition committed.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.EventRecord) error
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) PutEvents(context.Context, []model.EventRecord) error { return nil }

package unifiedauth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityRecord is the persisted form of an ActivityEvent.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:auth_activity,alias:act"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	EventType     string    `bun:"event_type,notnull" json:"event_type"`
	UserID        string    `bun:"user_id" json:"user_id,omitempty"`
	Field         string    `bun:"field" json:"field,omitempty"`
	Metadata      string    `bun:"metadata" json:"metadata,omitempty"`
	OccurredAt    time.Time `bun:"occurred_at,notnull" json:"occurred_at"`
}

// BunActivitySink records session activity to a bun-managed table for audit
// logging. Failures are returned to the store, which logs and continues.
type BunActivitySink struct {
	db     *bun.DB
	logger Logger
}

// BunActivitySinkOption customizes sink construction.
type BunActivitySinkOption func(*BunActivitySink)

// WithBunActivityLogger overrides the default logger.
func WithBunActivityLogger(logger Logger) BunActivitySinkOption {
	return func(s *BunActivitySink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunActivitySink creates a sink writing to the auth_activity table.
func NewBunActivitySink(db *bun.DB, opts ...BunActivitySinkOption) *BunActivitySink {
	s := &BunActivitySink{
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Record implements ActivitySink.
func (s *BunActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	record := &ActivityRecord{
		ID:         uuid.New(),
		EventType:  string(event.EventType),
		UserID:     event.UserID,
		Field:      string(event.Field),
		OccurredAt: event.OccurredAt,
	}

	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode activity metadata")
		}
		record.Metadata = string(data)
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist activity record")
	}

	return nil
}

var _ ActivitySink = (*BunActivitySink)(nil)

// CreateActivityTable provisions the auth_activity table if missing.
func CreateActivityTable(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*ActivityRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create activity table")
	}
	return nil
}

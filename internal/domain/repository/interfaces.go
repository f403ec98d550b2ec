package repository

import (
	"context"
	"time"

	"SimPulse/internal/domain/models"
)

// DealStore is the persistence collaborator for scheduled scenarios.
// ClaimDue must be atomic: the earliest SCHEDULED deal with start <= now is
// transitioned to RUNNING and returned, or (nil, nil) when none is due.
type DealStore interface {
	Schedule(ctx context.Context, d *models.Deal) error
	ClaimDue(ctx context.Context, now time.Time) (*models.Deal, error)
	Finish(ctx context.Context, id string, at time.Time) error
	Get(ctx context.Context, id string) (*models.Deal, error)
	List(ctx context.Context, limit int) ([]*models.Deal, error)
	Close() error
}

// SignalLog is the append-only forecast log with update-once-by-id
// settlement semantics.
type SignalLog interface {
	Append(ctx context.Context, e *models.SignalLogEntry) error
	Unresolved(ctx context.Context, before time.Time) ([]*models.SignalLogEntry, error)
	Resolve(ctx context.Context, e *models.SignalLogEntry) error
	RecentResolved(ctx context.Context, limit int) ([]*models.SignalLogEntry, error)
	Close() error
}

// ConfigStore persists the operator selections the control state reflects.
type ConfigStore interface {
	Load(ctx context.Context) (*models.EngineConfig, error)
	Save(ctx context.Context, c *models.EngineConfig) error
	Close() error
}

// Broadcaster is the push channel to observers. Fire-and-forget: no delivery
// guarantee, must never block the caller.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// TickArchive receives every emitted tick for durable append-only storage.
type TickArchive interface {
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordTick(symbol, mode string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordDecision(action string)
}

package ports

import (
	"context"

	"volGuardBot/internal/domain"
)

// AuditStore is an append-only sink for per-evaluation audit records.
type AuditStore interface {
	// Append persists one audit record. Append never blocks an evaluation
	// decision: callers log and continue on failure.
	Append(ctx context.Context, rec *domain.AuditRecord) error
	// RecentBySymbol retrieves the most recent records for a symbol, newest
	// first, up to limit.
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.AuditRecord, error)
}

// StateStore persists PositionState snapshots so a crashed process can
// restore its positions. Writes must be atomic: after a crash the stored
// state is exactly the before or the after image, never a torn mix.
type StateStore interface {
	// Save persists the snapshot for the position's symbol.
	Save(ctx context.Context, state *domain.PositionState) error
	// Load restores the snapshot for a symbol. Returns nil, nil when no
	// snapshot exists. A snapshot that exists but cannot be parsed is NOT
	// an error that loses the position: it comes back as a state tagged
	// ProtectionUnknown so the caller re-applies a protective stop.
	Load(ctx context.Context, symbol string) (*domain.PositionState, error)
	// Delete removes the snapshot once the position is closed.
	Delete(ctx context.Context, symbol string) error
}

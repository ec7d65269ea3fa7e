package history

import (
	"context"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// Store persists saved dataset snapshots, bounded to the last N entries.
// The orchestration core only sees this interface; which backend is wired
// (Redis, Postgres, or none) is a deployment decision.
type Store interface {
	// Save persists an entry, assigning an id if empty, and trims the
	// store to its bound (oldest entries dropped first).
	Save(ctx context.Context, entry *domain.HistoryEntry) error

	// List returns entry metadata newest-first, without session payloads.
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// Get returns one full entry including its sessions.
	Get(ctx context.Context, id string) (*domain.HistoryEntry, error)

	// Delete removes one entry; domain.ErrEntryNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Trim enforces the bound without saving; used by the retention sweep.
	Trim(ctx context.Context) error
}

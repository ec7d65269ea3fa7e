package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

// PostgresStore keeps history entries in the ipdr_history table.
//
// Schema:
//
//	CREATE TABLE ipdr_history (
//	    id            TEXT PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    session_count INT NOT NULL,
//	    anomaly_count INT NOT NULL,
//	    sessions      JSONB NOT NULL
//	);
type PostgresStore struct {
	db    *sql.DB
	limit int
}

// NewPostgresStore creates a Postgres-backed history store bounded to limit entries.
func NewPostgresStore(db *sql.DB, limit int) *PostgresStore {
	if limit <= 0 {
		limit = 10
	}
	return &PostgresStore{db: db, limit: limit}
}

func (s *PostgresStore) Save(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	sessions, err := json.Marshal(entry.Sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	const q = `
INSERT INTO ipdr_history (id, name, created_at, session_count, anomaly_count, sessions)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    session_count = EXCLUDED.session_count,
    anomaly_count = EXCLUDED.anomaly_count,
    sessions = EXCLUDED.sessions;
`
	if _, err := s.db.ExecContext(ctx, q,
		entry.ID, entry.Name, entry.Timestamp,
		entry.SessionCount, entry.AnomalyCount, sessions,
	); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	return s.Trim(ctx)
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	const q = `
SELECT id, name, created_at, session_count, anomaly_count
FROM ipdr_history
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := s.db.QueryContext(ctx, q, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.Name, &createdAt, &e.SessionCount, &e.AnomalyCount); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Timestamp = createdAt.UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	const q = `
SELECT id, name, created_at, session_count, anomaly_count, sessions
FROM ipdr_history
WHERE id = $1;
`
	var e domain.HistoryEntry
	var createdAt time.Time
	var sessions []byte
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&e.ID, &e.Name, &createdAt, &e.SessionCount, &e.AnomalyCount, &sessions)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}

	e.Timestamp = createdAt.UTC().Format(time.RFC3339)
	if err := json.Unmarshal(sessions, &e.Sessions); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ipdr_history WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func (s *PostgresStore) Trim(ctx context.Context) error {
	const q = `
DELETE FROM ipdr_history
WHERE id NOT IN (
    SELECT id FROM ipdr_history ORDER BY created_at DESC LIMIT $1
);
`
	if _, err := s.db.ExecContext(ctx, q, s.limit); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

package calllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS work_call_log (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	number      TEXT NOT NULL,
	duration_s  INTEGER NOT NULL,
	timestamp   TEXT NOT NULL,
	direction   TEXT NOT NULL,
	synced      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_work_call_log_synced ON work_call_log(synced);
`

// SQLiteStore persists work-call log entries in a local sqlite file
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the log database and ensures the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open call log db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init call log schema: %w", err)
	}
	var ver int
	err = db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&ver)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	} else if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_call_log (id, name, number, duration_s, timestamp, direction, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Number, e.DurationSeconds, e.Timestamp.UTC().Format(time.RFC3339), string(e.Direction), boolToInt(e.Synced))
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Unsynced(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, number, duration_s, timestamp, direction, synced
		FROM work_call_log WHERE synced = 0 ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("query unsynced: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, number, duration_s, timestamp, direction, synced
		FROM work_call_log WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// MarkSynced flips the synced flag. Updating an already-synced row matches
// zero-or-one rows either way, so retries are harmless.
func (s *SQLiteStore) MarkSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE work_call_log SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var ts string
	var direction string
	var synced int
	if err := row.Scan(&e.ID, &e.Name, &e.Number, &e.DurationSeconds, &ts, &direction, &synced); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	e.Timestamp = t
	e.Direction = CallDirection(direction)
	e.Synced = synced != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

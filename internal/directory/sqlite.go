package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const workSchemaVersion = 1

const workSchema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS work_contacts (
	suffix                TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	number                TEXT NOT NULL,
	family_head           TEXT NOT NULL DEFAULT '',
	relationship_manager  TEXT NOT NULL DEFAULT ''
);
`

// SQLiteWork is a sqlite-backed work directory. The schema is owned by the
// contact-sync pipeline; this side only reads, plus Put for seeding.
type SQLiteWork struct {
	db *sql.DB
}

var _ Work = (*SQLiteWork)(nil)

// OpenSQLiteWork opens (or creates) the work directory database
func OpenSQLiteWork(path string) (*SQLiteWork, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open work directory: %w", err)
	}
	if _, err := db.Exec(workSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init work directory schema: %w", err)
	}
	var ver int
	err = db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&ver)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, workSchemaVersion); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	} else if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}
	return &SQLiteWork{db: db}, nil
}

// Lookup finds a work contact by normalized suffix
func (s *SQLiteWork) Lookup(ctx context.Context, suffix string) (WorkContact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, number, family_head, relationship_manager FROM work_contacts WHERE suffix = ?`, suffix)
	var c WorkContact
	err := row.Scan(&c.Name, &c.Number, &c.FamilyHead, &c.RelationshipManager)
	if errors.Is(err, sql.ErrNoRows) {
		return WorkContact{}, ErrNotFound
	}
	if err != nil {
		return WorkContact{}, fmt.Errorf("lookup work contact: %w", err)
	}
	return c, nil
}

// Put upserts a work contact keyed by its normalized suffix
func (s *SQLiteWork) Put(ctx context.Context, c WorkContact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_contacts (suffix, name, number, family_head, relationship_manager)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(suffix) DO UPDATE SET
			name = excluded.name,
			number = excluded.number,
			family_head = excluded.family_head,
			relationship_manager = excluded.relationship_manager`,
		NormalizeSuffix(c.Number), c.Name, c.Number, c.FamilyHead, c.RelationshipManager)
	if err != nil {
		return fmt.Errorf("put work contact: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteWork) Close() error {
	return s.db.Close()
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/amishk599/jobby/internal/model"
)

var _ model.SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore keeps every run's diff result in a SQLite database. Load only
// ever looks at the most recent run.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	total      INTEGER NOT NULL,
	new_count  INTEGER NOT NULL,
	old_count  INTEGER NOT NULL,
	gone_count INTEGER NOT NULL,
	extra_columns TEXT
);
CREATE TABLE IF NOT EXISTS snapshot_rows (
	run_id        TEXT NOT NULL,
	position      INTEGER NOT NULL,
	label         TEXT NOT NULL,
	uid           TEXT NOT NULL,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL,
	location      TEXT NOT NULL,
	allows_remote INTEGER,
	is_full_time  INTEGER,
	extra         TEXT,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := addExtraColumns(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// addExtraColumns upgrades databases created before runs tracked their
// extra column order.
func addExtraColumns(db *sql.DB) error {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'extra_columns'").Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting runs table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec("ALTER TABLE runs ADD COLUMN extra_columns TEXT"); err != nil {
		return fmt.Errorf("adding extra_columns to runs: %w", err)
	}
	return nil
}

// Load returns the non-GONE rows of the most recent run, or an empty
// collection when no run has been saved.
func (s *SQLiteStore) Load() (*model.Collection, error) {
	var (
		runID   string
		columns sql.NullString
	)
	err := s.db.QueryRow("SELECT id, extra_columns FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1").Scan(&runID, &columns)
	if err == sql.ErrNoRows {
		return model.NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest run: %w", err)
	}

	rows, err := s.db.Query(`SELECT uid, title, company, location, allows_remote, is_full_time, extra
		FROM snapshot_rows WHERE run_id = ? AND label != ? ORDER BY position`, runID, string(model.LabelGone))
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	defer rows.Close()

	var extraColumns []string
	if columns.Valid && columns.String != "" {
		if err := json.Unmarshal([]byte(columns.String), &extraColumns); err != nil {
			return nil, fmt.Errorf("decoding extra columns of run %s: %w", runID, err)
		}
	}

	c := model.NewCollection(extraColumns...)
	for rows.Next() {
		var (
			r            model.Record
			remote, full sql.NullBool
			extra        sql.NullString
		)
		if err := rows.Scan(&r.UID, &r.Title, &r.Company, &r.Location, &remote, &full, &extra); err != nil {
			return nil, fmt.Errorf("scanning run %s: %w", runID, err)
		}
		r.AllowsRemote = nullBoolPtr(remote)
		r.IsFullTime = nullBoolPtr(full)
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &r.Extra); err != nil {
				return nil, fmt.Errorf("decoding extra columns of %s: %w", r.UID, err)
			}
		}
		c.Put(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	return c, nil
}

// Save records result as a new run.
func (s *SQLiteStore) Save(result model.Result) error {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning run %s: %w", runID, err)
	}
	defer tx.Rollback()

	var columns any
	if len(result.Extra) > 0 {
		b, err := json.Marshal(result.Extra)
		if err != nil {
			return fmt.Errorf("encoding extra columns of run %s: %w", runID, err)
		}
		columns = string(b)
	}

	_, err = tx.Exec("INSERT INTO runs (id, started_at, total, new_count, old_count, gone_count, extra_columns) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, s.now().UTC(), len(result.Rows),
		result.Count(model.LabelNew), result.Count(model.LabelOld), result.Count(model.LabelGone), columns)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO snapshot_rows
		(run_id, position, label, uid, title, company, location, allows_remote, is_full_time, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range result.Rows {
		r := row.Record
		var extra any
		if len(r.Extra) > 0 {
			b, err := json.Marshal(r.Extra)
			if err != nil {
				return fmt.Errorf("encoding extra columns of %s: %w", r.UID, err)
			}
			extra = string(b)
		}
		if _, err := stmt.Exec(runID, i, string(row.Label), r.UID, r.Title, r.Company, r.Location,
			boolPtrValue(r.AllowsRemote), boolPtrValue(r.IsFullTime), extra); err != nil {
			return fmt.Errorf("inserting %s: %w", r.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", runID, err)
	}
	return nil
}

// Run summarizes one saved run.
type Run struct {
	ID        string
	StartedAt time.Time
	Total     int
	New       int
	Old       int
	Gone      int
}

// Runs returns up to limit runs, newest first.
func (s *SQLiteStore) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, started_at, total, new_count, old_count, gone_count
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Total, &r.New, &r.Old, &r.Gone); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Cleanup deletes runs older than the given duration, always keeping the
// most recent run so the next diff has something to compare against.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().UTC().Add(-olderThan)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	defer tx.Rollback()

	const expired = `SELECT id FROM runs WHERE started_at < ?
		AND id != (SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1)`
	if _, err := tx.Exec("DELETE FROM snapshot_rows WHERE run_id IN ("+expired+")", cutoff); err != nil {
		return fmt.Errorf("cleaning up rows older than %v: %w", olderThan, err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE id IN ("+expired+")", cutoff); err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullBoolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

func boolPtrValue(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-engine/pkg/types"
)

const dbFile = "review.db"

// SQLiteStore persists records, counters, and the commit log in a
// SQLite database at dataDir/review.db. Change detection compares the
// current state checksum with the last commit's, so a save that changes
// nothing does not count as an uncommitted change.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the store database and bootstraps the
// schema if it does not exist.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_status ON records(status)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			id TEXT PRIMARY KEY,
			message TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			checksum TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// LoadAll returns a snapshot of the record set.
func (s *SQLiteStore) LoadAll() (map[string]*types.Record, error) {
	rows, err := s.db.Query(`SELECT id, data FROM records`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := map[string]*types.Record{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("parsing record %s: %w", id, err)
		}
		records[id] = &rec
	}
	return records, rows.Err()
}

// Save merges records into the store; see Store.Save.
func (s *SQLiteStore) Save(records map[string]*types.Record, partial bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if !partial {
		if _, err := tx.Exec(`DELETE FROM records`); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
	}

	stmt, err := tx.Prepare(
		`INSERT INTO records (id, status, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, data=excluded.data`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", id, err)
		}
		if _, err := stmt.Exec(id, string(rec.Status), string(data)); err != nil {
			return fmt.Errorf("upserting record %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Counters returns the persisted counters.
func (s *SQLiteStore) Counters() (Counters, error) {
	var c Counters
	err := s.db.QueryRow(
		`SELECT value FROM counters WHERE name = 'duplicates_removed'`,
	).Scan(&c.DuplicatesRemoved)
	if err != nil && err != sql.ErrNoRows {
		return Counters{}, fmt.Errorf("querying counters: %w", err)
	}
	return c, nil
}

// SetCounters persists the counters.
func (s *SQLiteStore) SetCounters(c Counters) error {
	if _, err := s.db.Exec(
		`INSERT INTO counters (name, value) VALUES ('duplicates_removed', ?)
		 ON CONFLICT(name) DO UPDATE SET value=excluded.value`,
		c.DuplicatesRemoved); err != nil {
		return fmt.Errorf("updating counters: %w", err)
	}
	return nil
}

// checksum fingerprints the stored records and counters
// deterministically.
func (s *SQLiteStore) checksum() (string, error) {
	records, err := s.LoadAll()
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		data, err := json.Marshal(records[id])
		if err != nil {
			return "", fmt.Errorf("marshaling record %s: %w", id, err)
		}
		h.Write(data)
	}
	counters, err := s.Counters()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "duplicates_removed:%d", counters.DuplicatesRemoved)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Commit appends a commit recording the current state checksum.
func (s *SQLiteStore) Commit(message string) (Commit, error) {
	sum, err := s.checksum()
	if err != nil {
		return Commit{}, err
	}
	commit := Commit{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now().UTC(),
		Checksum:  sum,
	}

	if _, err := s.db.Exec(
		`INSERT INTO commits (id, message, timestamp, checksum) VALUES (?, ?, ?, ?)`,
		commit.ID, commit.Message, commit.Timestamp.Format(time.RFC3339Nano), commit.Checksum,
	); err != nil {
		return Commit{}, fmt.Errorf("inserting commit: %w", err)
	}
	return commit, nil
}

// HasChanges compares the current state checksum with the last commit.
func (s *SQLiteStore) HasChanges() (bool, error) {
	sum, err := s.checksum()
	if err != nil {
		return false, err
	}
	var last string
	err = s.db.QueryRow(
		`SELECT checksum FROM commits ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	if err == sql.ErrNoRows {
		// Nothing committed yet: any stored records are uncommitted.
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
			return false, fmt.Errorf("counting records: %w", err)
		}
		return n > 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying last commit: %w", err)
	}
	return last != sum, nil
}

// Commits returns the commit log, oldest first.
func (s *SQLiteStore) Commits() ([]Commit, error) {
	rows, err := s.db.Query(
		`SELECT id, message, timestamp, checksum FROM commits ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("querying commits: %w", err)
	}
	defer rows.Close()

	var commits []Commit
	for rows.Next() {
		var c Commit
		var ts string
		if err := rows.Scan(&c.ID, &c.Message, &ts, &c.Checksum); err != nil {
			return nil, fmt.Errorf("scanning commit row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing commit timestamp: %w", err)
		}
		c.Timestamp = t
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

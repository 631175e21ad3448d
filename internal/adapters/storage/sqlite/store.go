// Package sqlite implements the fact-store boundary on a local SQLite
// database, mirroring the schema the assistant's memory layer expects:
// external ids resolved to numeric entity/process ids, facts ordered by
// last-touched time.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at path and ensures
// the schema exists.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS memory_entity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL,
			external_id TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS memory_process (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL,
			external_id TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS memory_fact (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id INTEGER NOT NULL,
			process_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			kind TEXT DEFAULT 'fact',
			metadata TEXT DEFAULT '',
			date_last_time DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_fact_entity ON memory_fact(entity_id, date_last_time);`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func (s *Store) EnsureEntity(ctx context.Context, externalID string) (int64, error) {
	return s.ensureRecord(ctx, "memory_entity", externalID)
}

func (s *Store) EnsureProcess(ctx context.Context, externalID string) (int64, error) {
	return s.ensureRecord(ctx, "memory_process", externalID)
}

func (s *Store) ensureRecord(ctx context.Context, table, externalID string) (int64, error) {
	if externalID == "" {
		return 0, fmt.Errorf("%s: external id is empty", table)
	}

	selectStmt := fmt.Sprintf("SELECT id FROM %s WHERE external_id = ?", table)

	var id int64
	err := s.db.QueryRowContext(ctx, selectStmt, externalID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("%s lookup: %w", table, err)
	}

	insertStmt := fmt.Sprintf("INSERT INTO %s (uuid, external_id) VALUES (?, ?)", table)
	res, err := s.db.ExecContext(ctx, insertStmt, uuid.NewString(), externalID)
	if err != nil {
		return 0, fmt.Errorf("%s insert: %w", table, err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s insert id: %w", table, err)
	}
	return id, nil
}

func (s *Store) RecentFacts(ctx context.Context, entityID int64, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM memory_fact
		 WHERE entity_id = ?
		 ORDER BY date_last_time DESC, id DESC
		 LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	var facts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		if content != "" {
			facts = append(facts, content)
		}
	}
	return facts, rows.Err()
}

func (s *Store) InsertFact(ctx context.Context, entityID, processID int64, content, kind, metadata string) error {
	if content == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_fact (entity_id, process_id, content, kind, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		entityID, processID, content, kind, metadata,
	)
	if err != nil {
		return fmt.Errorf("inserting fact: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

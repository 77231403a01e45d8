package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MMMZZYz/aitest/internal/cases"

	_ "github.com/mattn/go-sqlite3"
)

const pathSeparator = " > "

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Concurrent case generation shares this handle; writes are serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generated_cases (
			key TEXT PRIMARY KEY,
			model TEXT,
			path TEXT,
			cases JSON,
			updated_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_generated_cases_model ON generated_cases(model);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// CacheKey is the hex sha256 of the model name and the joined path.
func CacheKey(model string, path []string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + strings.Join(path, pathSeparator)))
	return hex.EncodeToString(sum[:])
}

func (s *SQLiteStore) GetCases(ctx context.Context, model string, path []string) ([]cases.Case, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT cases FROM generated_cases WHERE key = ?`, CacheKey(model, path)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []cases.Case
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %q: %w", strings.Join(path, pathSeparator), err)
	}
	return out, true, nil
}

func (s *SQLiteStore) PutCases(ctx context.Context, model string, path []string, cs []cases.Case) error {
	if cs == nil {
		cs = []cases.Case{}
	}
	raw, err := json.Marshal(cs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generated_cases (key, model, path, cases, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			cases=excluded.cases,
			updated_at=excluded.updated_at
	`, CacheKey(model, path), model, strings.Join(path, pathSeparator), raw, time.Now().Unix())
	return err
}

// Count returns the number of cached paths for model, or for every model
// when model is empty.
func (s *SQLiteStore) Count(ctx context.Context, model string) (int, error) {
	var n int
	var err error
	if model == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_cases`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_cases WHERE model = ?`, model).Scan(&n)
	}
	return n, err
}

// Purge drops cached entries for model, or everything when model is empty.
func (s *SQLiteStore) Purge(ctx context.Context, model string) (int64, error) {
	var res sql.Result
	var err error
	if model == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM generated_cases`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM generated_cases WHERE model = ?`, model)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

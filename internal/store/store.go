// Package store implements the local persistence layer for BrainLocker.
//
// A single SQLite file holds the user profile, the topic catalog and the
// question/answer pairs. Everything else (TUI, CLI, MCP server, HTTP API)
// calls into this package directly; there is no service layer in between.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBName is the database file created inside the data directory.
const DefaultDBName = "mydb.sqlite"

// TimeLayout is the ISO 8601 layout used for every stored timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrNotFound    = errors.New("not found")
	ErrTopicExists = errors.New("topic already exists")
)

// ─── Config ──────────────────────────────────────────────────────────────────

type Config struct {
	DataDir string
	DBName  string
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".brainlocker"),
		DBName:  DefaultDBName,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store owns the single shared database handle. The handle is opened on first
// use and kept until Close; a failed open is not cached.
type Store struct {
	cfg Config
	now func() time.Time

	mu sync.Mutex
	db *sql.DB
}

func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, errors.New("brainlocker: data dir is required")
	}
	if cfg.DBName == "" {
		cfg.DBName = DefaultDBName
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("brainlocker: create data dir: %w", err)
	}
	return &Store{cfg: cfg, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, s.cfg.DBName)
}

func (s *Store) DataDir() string {
	return s.cfg.DataDir
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Init creates every table if it is missing. It is safe to call more than
// once and from more than one startup path.
func (s *Store) Init() error {
	if err := s.CreateUserTable(); err != nil {
		return err
	}
	if err := s.CreateTopicTable(); err != nil {
		return err
	}
	return s.CreateQuestionTable()
}

// handle returns the shared connection, opening and migrating it on first use.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	dsn := "file:" + s.Path() +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("brainlocker: open database: %w", err)
	}
	// One connection for the whole process; queries must not be nested.
	db.SetMaxOpenConns(1)

	if err := migrate(db, s.stamp); err != nil {
		db.Close()
		return nil, fmt.Errorf("brainlocker: migration: %w", err)
	}

	s.db = db
	return db, nil
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return db.Exec(query, args...)
}

func (s *Store) query(query string, args ...any) (*sql.Rows, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return db.Query(query, args...)
}

func (s *Store) queryRow(query string, args ...any) (*sql.Row, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return db.QueryRow(query, args...), nil
}

// stamp returns the current instant in TimeLayout.
func (s *Store) stamp() string {
	return s.now().UTC().Format(TimeLayout)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func nullableString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Now returns the current time formatted the way rows store it.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}

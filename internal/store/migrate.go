package store

import (
	"database/sql"
	"fmt"
)

// migration is one schema step. Steps run in version order, at most once per
// database, and each one is written to be safe on a database that already has
// its effect.
type migration struct {
	version int
	name    string
	apply   func(db *sql.DB) error
}

var migrations = []migration{
	{version: 1, name: "create_tables", apply: createTables},
	{version: 2, name: "questions_created_at", apply: addQuestionsCreatedAt},
}

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		name      TEXT,
		age       INTEGER,
		className TEXT,
		email     TEXT,
		createdAt TEXT,
		updatedAt TEXT
	);`

const topicsSchema = `
	CREATE TABLE IF NOT EXISTS topics (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE
	);`

const questionsSchema = `
	CREATE TABLE IF NOT EXISTS questions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_name TEXT,
		question   TEXT,
		answer     TEXT,
		createdAt  TEXT
	);`

func migrate(db *sql.DB, stamp func() string) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("apply %03d_%s: %w", m.version, m.name, err)
		}
		if _, err := db.Exec(
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			m.version, m.name, stamp(),
		); err != nil {
			return fmt.Errorf("record %03d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func createTables(db *sql.DB) error {
	for _, schema := range []string{usersSchema, topicsSchema, questionsSchema} {
		if _, err := db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

func addQuestionsCreatedAt(db *sql.DB) error {
	_, err := addColumnIfNotExists(db, "questions", "createdAt", "TEXT")
	return err
}

// addColumnIfNotExists inspects the live column list and issues ALTER TABLE
// only when the column is missing. It reports whether the column was added.
func addColumnIfNotExists(db *sql.DB, tableName, columnName, definition string) (bool, error) {
	exists, err := columnExists(db, tableName, columnName)
	if err != nil || exists {
		return false, err
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, columnName, definition)); err != nil {
		return false, err
	}
	return true, nil
}

func columnExists(db *sql.DB, tableName, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull int
		var defaultValue any
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			found = true
		}
	}
	return found, rows.Err()
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion() (int, error) {
	row, err := s.queryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, err
	}
	var v int
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

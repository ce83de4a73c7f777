package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// profileID is the fixed row the profile lives in. The table keeps its
// AUTOINCREMENT id for compatibility, but every save targets this row.
const profileID = 1

type User struct {
	ID        int64   `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Age       int     `json:"age" yaml:"age"`
	ClassName string  `json:"className" yaml:"className"`
	Email     *string `json:"email,omitempty" yaml:"email,omitempty"`
	CreatedAt *string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

type SaveUserParams struct {
	Name      string `json:"name" yaml:"name"`
	Age       int    `json:"age" yaml:"age"`
	ClassName string `json:"className" yaml:"className"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
}

func (s *Store) CreateUserTable() error {
	_, err := s.exec(usersSchema)
	return err
}

// SaveUser writes the profile. The first save inserts it; later saves update
// the same row in place and keep the original createdAt.
func (s *Store) SaveUser(p SaveUserParams) (*User, error) {
	now := s.stamp()
	if _, err := s.exec(
		`INSERT INTO users (id, name, age, className, email, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name      = excluded.name,
		     age       = excluded.age,
		     className = excluded.className,
		     email     = excluded.email,
		     updatedAt = excluded.updatedAt`,
		profileID, p.Name, p.Age, p.ClassName, nullableString(p.Email), now, now,
	); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return s.GetUser()
}

// GetUser returns the profile (the lowest-id row) or ErrNotFound.
func (s *Store) GetUser() (*User, error) {
	row, err := s.queryRow(
		`SELECT id, COALESCE(name, ''), COALESCE(age, 0), COALESCE(className, ''),
		        email, createdAt, updatedAt
		 FROM users ORDER BY id LIMIT 1`,
	)
	if err != nil {
		return nil, err
	}
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.ClassName, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes every row in the users table.
func (s *Store) DeleteUser() error {
	if _, err := s.exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CountUsers is used by tests and diagnostics to check the singleton.
func (s *Store) CountUsers() (int, error) {
	row, err := s.queryRow(`SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

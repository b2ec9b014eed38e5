// Package stubapi is a self-contained local implementation of the SimuOrg
// API contract the client talks to: login, register, employee roster,
// dataset upload, simulation policies. It exists so the client can be
// demoed and end-to-end tested without the real backend; it implements the
// wire contract only, none of the real service's analytics.
package stubapi

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    name               TEXT,
    department         TEXT,
    satisfaction_score REAL,
    dataset_id         TEXT NOT NULL
);
`

// User is a stored account.
type User struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
}

// EmployeeRow is one roster record as stored and served. Display fields are
// nullable on purpose: sparse datasets must reach the client as nulls so it
// exercises its placeholder fallback.
type EmployeeRow struct {
	ID                int64    `db:"id" json:"id"`
	Name              *string  `db:"name" json:"name"`
	Department        *string  `db:"department" json:"department"`
	SatisfactionScore *float64 `db:"satisfaction_score" json:"satisfaction_score"`
	DatasetID         string   `db:"dataset_id" json:"-"`
}

type store struct {
	db *sqlx.DB
}

// openStore opens a SQLite database at path (":memory:" works) and ensures
// the schema exists.
func openStore(path string) (*store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stub database: %w", err)
	}
	// One connection keeps ":memory:" databases from fragmenting across
	// the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stub schema: %w", err)
	}
	return &store{db: db}, nil
}

func (s *store) close() error { return s.db.Close() }

func (s *store) createUser(ctx context.Context, u User) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash)
		VALUES (:id, :email, :name, :password_hash)
	`, u)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// getUserByEmail returns nil without an error when no such account exists.
func (s *store) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &u, nil
}

func (s *store) listEmployees(ctx context.Context) ([]EmployeeRow, error) {
	employees := []EmployeeRow{}
	err := s.db.SelectContext(ctx, &employees, `
		SELECT id, name, department, satisfaction_score, dataset_id
		FROM employees ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func (s *store) insertEmployees(ctx context.Context, rows []EmployeeRow) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employees (name, department, satisfaction_score, dataset_id)
			VALUES (?, ?, ?, ?)
		`, row.Name, row.Department, row.SatisfactionScore, row.DatasetID)
		if err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
	}

	return tx.Commit()
}

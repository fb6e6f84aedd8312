// Package store keeps a library of named terms in a SQLite database. Terms
// are stored in their wire encoding, so anything the codec round-trips can
// be saved and loaded again.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	pgsn "github.com/yoriyuki/pgsn/core"
)

var ErrNotFound = errors.New("term not found")

const schema = `CREATE TABLE IF NOT EXISTS terms (
	name    TEXT PRIMARY KEY,
	body    TEXT NOT NULL,
	updated TEXT NOT NULL
)`

type Store struct {
	db   *sql.DB
	path string
}

// Entry describes one stored term without decoding it.
type Entry struct {
	Name    string `json:"name"`
	Updated string `json:"updated"`
}

// Open opens (or creates) the database at path and makes sure the terms
// table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Printf("opened term store: %s", path)
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	log.Printf("closing term store: %s", s.path)
	return s.db.Close()
}

// Put stores t under name, replacing any previous term.
func (s *Store) Put(ctx context.Context, name string, t pgsn.Term) error {
	if name == "" {
		return errors.New("put: missing name")
	}
	body, err := pgsn.MarshalTerm(t)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO terms (name, body, updated) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated = excluded.updated`,
		name, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

// Get loads the term stored under name, resolving builtins against reg
// (nil means the standard library).
func (s *Store) Get(ctx context.Context, name string, reg *pgsn.Registry) (pgsn.Term, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM terms WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	t, err := pgsn.UnmarshalTerm([]byte(body), reg)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return t, nil
}

// List returns every stored entry ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, updated FROM terms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Updated); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return entries, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM terms WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s: %w", name, ErrNotFound)
	}
	return nil
}

// PutAll stores several terms in one transaction; either all are saved or
// none are.
func (s *Store) PutAll(ctx context.Context, terms map[string]pgsn.Term) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put all: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for name, t := range terms {
		body, err := pgsn.MarshalTerm(t)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("put all %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO terms (name, body, updated) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated = excluded.updated`,
			name, string(body), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("put all %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put all: %w", err)
	}
	return nil
}

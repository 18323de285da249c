package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/hexmarch/internal/sheet"
)

// Store persists sheets in the sheets table:
//
//	CREATE TABLE sheets (
//	    name       text PRIMARY KEY,
//	    contents   jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type contents struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Read loads a sheet. An absent sheet is (nil, nil).
func (s *Store) Read(ctx context.Context, name string) (*sheet.Table, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT contents FROM sheets WHERE name = $1`, name,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", sheet.ErrUnavailable, name, err)
	}
	var c contents
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", sheet.ErrUnavailable, name, err)
	}
	return &sheet.Table{Header: c.Header, Rows: c.Rows}, nil
}

// Write upserts the full sheet contents.
func (s *Store) Write(ctx context.Context, name string, table *sheet.Table) error {
	raw, err := json.Marshal(contents{Header: table.Header, Rows: table.Rows})
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheets (name, contents, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET contents = $2, updated_at = now()`,
		name, raw,
	)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", sheet.ErrUnavailable, name, err)
	}
	return nil
}

// AppendRow appends one row to an existing sheet.
func (s *Store) AppendRow(ctx context.Context, name string, row []string) error {
	table, err := s.Read(ctx, name)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("%w: append to missing sheet %s", sheet.ErrUnavailable, name)
	}
	table.Rows = append(table.Rows, row)
	return s.Write(ctx, name, table)
}

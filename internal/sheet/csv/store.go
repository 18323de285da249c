// Package csv stores sheets as a directory of <name>.csv files, the
// layout the game's sheets have always used.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freeeve/hexmarch/internal/sheet"
)

// Store is a CSV-directory sheet store.
type Store struct {
	dir string
}

// New creates the directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sheet dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Read loads a sheet. A missing file is (nil, nil), not an error.
func (s *Store) Read(_ context.Context, name string) (*sheet.Table, error) {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", sheet.ErrUnavailable, name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", sheet.ErrUnavailable, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &sheet.Table{Header: records[0], Rows: records[1:]}, nil
}

// Write atomically replaces a sheet via a temp file rename, so a crash
// mid-write never leaves a torn sheet behind.
func (s *Store) Write(_ context.Context, name string, table *sheet.Table) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp for %s: %v", sheet.ErrUnavailable, name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", sheet.ErrUnavailable, name, err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", sheet.ErrUnavailable, name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: flush %s: %v", sheet.ErrUnavailable, name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", sheet.ErrUnavailable, name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", sheet.ErrUnavailable, name, err)
	}
	return nil
}

// AppendRow appends one row, preserving the existing header.
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

// Package sheet defines the tabular store the simulation persists to: a
// set of named sheets, each a header plus ordered string-typed rows.
package sheet

import (
	"context"
	"errors"
)

// ErrUnavailable wraps backend read/write failures. A tick that cannot
// read the store skips its reconciliation and retries next tick.
var ErrUnavailable = errors.New("sheet store unavailable")

// Table is one sheet's contents. Cells are strings; typing happens at
// the model's row codec.
type Table struct {
	Header []string
	Rows   [][]string
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cp := &Table{Header: append([]string(nil), t.Header...)}
	cp.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cp.Rows[i] = append([]string(nil), r...)
	}
	return cp
}

// Store reads and writes named sheets. Read returns (nil, nil) for a
// sheet that does not exist; Write replaces the whole sheet.
type Store interface {
	Read(ctx context.Context, name string) (*Table, error)
	Write(ctx context.Context, name string, table *Table) error
	AppendRow(ctx context.Context, name string, row []string) error
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/hexmarch/internal/sheet"
)

func sheetKey(name string) string { return "sheet:" + name }

type contents struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Read loads a mirrored sheet. An absent key is (nil, nil).
func (c *Client) Read(ctx context.Context, name string) (*sheet.Table, error) {
	raw, err := c.rdb.Get(ctx, sheetKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", sheet.ErrUnavailable, name, err)
	}
	var body contents
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", sheet.ErrUnavailable, name, err)
	}
	return &sheet.Table{Header: body.Header, Rows: body.Rows}, nil
}

// Write replaces the mirrored sheet contents.
func (c *Client) Write(ctx context.Context, name string, table *sheet.Table) error {
	raw, err := json.Marshal(contents{Header: table.Header, Rows: table.Rows})
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := c.rdb.Set(ctx, sheetKey(name), raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: write %s: %v", sheet.ErrUnavailable, name, err)
	}
	return nil
}

// AppendRow appends one row to a mirrored sheet.
func (c *Client) AppendRow(ctx context.Context, name string, row []string) error {
	table, err := c.Read(ctx, name)
	if err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("%w: append to missing sheet %s", sheet.ErrUnavailable, name)
	}
	table.Rows = append(table.Rows, row)
	return c.Write(ctx, name, table)
}

package sheet

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mirrored layers a fast cache store over the durable store: writes go
// through to both (cache failures logged, never fatal), reads prefer
// the cache and fall back to the durable store on miss or error.
type Mirrored struct {
	durable Store
	cache   Store
}

// NewMirrored wraps durable with a best-effort cache. cache may be nil,
// in which case the durable store is used directly.
func NewMirrored(durable, cache Store) Store {
	if cache == nil {
		return durable
	}
	return &Mirrored{durable: durable, cache: cache}
}

// Read prefers the cache, falling back to the durable store.
func (m *Mirrored) Read(ctx context.Context, name string) (*Table, error) {
	table, err := m.cache.Read(ctx, name)
	if err == nil && table != nil {
		return table, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("sheet", name).Msg("Sheet cache read failed, falling back")
	}
	table, err = m.durable.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	if table != nil {
		if cerr := m.cache.Write(ctx, name, table); cerr != nil {
			log.Warn().Err(cerr).Str("sheet", name).Msg("Sheet cache refill failed")
		}
	}
	return table, nil
}

// Write commits to the durable store first, then mirrors.
func (m *Mirrored) Write(ctx context.Context, name string, table *Table) error {
	if err := m.durable.Write(ctx, name, table); err != nil {
		return err
	}
	if err := m.cache.Write(ctx, name, table); err != nil {
		log.Warn().Err(err).Str("sheet", name).Msg("Sheet cache write failed")
	}
	return nil
}

// AppendRow appends durably, then refreshes the mirror.
func (m *Mirrored) AppendRow(ctx context.Context, name string, row []string) error {
	if err := m.durable.AppendRow(ctx, name, row); err != nil {
		return err
	}
	table, err := m.durable.Read(ctx, name)
	if err == nil && table != nil {
		if cerr := m.cache.Write(ctx, name, table); cerr != nil {
			log.Warn().Err(cerr).Str("sheet", name).Msg("Sheet cache write failed")
		}
	}
	return nil
}

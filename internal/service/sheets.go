package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

var (
	ErrMovementNotFound = errors.New("movement not found")
	ErrArmyNotFound     = errors.New("army not found")
	ErrNotOwner         = errors.New("not the owning player")
)

// statusUnpaused is the only Status sheet value that lets ticks run. A
// missing sheet or any other value pauses the simulation.
const statusUnpaused = "Unpaused"

// readPauseGate reports whether the simulation is administratively
// paused.
func readPauseGate(ctx context.Context, store sheet.Store) (bool, error) {
	table, err := store.Read(ctx, model.SheetStatus)
	if err != nil {
		return true, fmt.Errorf("read status sheet: %w", err)
	}
	if table == nil || len(table.Rows) == 0 || len(table.Rows[0]) == 0 {
		return true, nil
	}
	return table.Rows[0][0] != statusUnpaused, nil
}

// loadGrid reads the Map sheet into a hex grid. Rows that fail to parse
// are logged and skipped; the grid is built from the rest.
func loadGrid(ctx context.Context, store sheet.Store) (*hexmap.Grid, error) {
	table, err := store.Read(ctx, model.SheetMap)
	if err != nil {
		return nil, fmt.Errorf("read map sheet: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: map sheet missing", sheet.ErrUnavailable)
	}
	hexes := make([]hexmap.Hex, 0, len(table.Rows))
	for _, row := range table.Rows {
		h, err := model.HexFromRow(table.Header, row)
		if err != nil {
			log.Warn().Err(err).Strs("row", row).Msg("Skipping unparseable map row")
			continue
		}
		hexes = append(hexes, *h)
	}
	return hexmap.NewGrid(hexes), nil
}

// decodeMovements splits a Movements table into typed records and the
// raw rows that failed to parse. Corrupt rows are preserved so the
// write-back never destroys data it could not read.
func decodeMovements(table *sheet.Table) (map[string]*model.Movement, [][]string) {
	movements := make(map[string]*model.Movement)
	var corrupt [][]string
	if table == nil {
		return movements, nil
	}
	for _, row := range table.Rows {
		m, err := model.MovementFromRow(table.Header, row)
		if err != nil {
			log.Error().Err(err).Strs("row", row).Msg("Preserving unparseable movement row")
			corrupt = append(corrupt, row)
			continue
		}
		movements[m.UID] = m
	}
	return movements, corrupt
}

// decodeArmies splits an Armies table into typed records and preserved
// corrupt rows.
func decodeArmies(table *sheet.Table) (map[string]*model.Army, [][]string) {
	armies := make(map[string]*model.Army)
	var corrupt [][]string
	if table == nil {
		return armies, nil
	}
	for _, row := range table.Rows {
		a, err := model.ArmyFromRow(table.Header, row)
		if err != nil {
			log.Error().Err(err).Strs("row", row).Msg("Preserving unparseable army row")
			corrupt = append(corrupt, row)
			continue
		}
		armies[a.UID] = a
	}
	return armies, corrupt
}

// movementsTable serializes the live movement set, sorted by uid for a
// stable sheet, with preserved corrupt rows appended.
func movementsTable(movements map[string]*model.Movement, corrupt [][]string) *sheet.Table {
	uids := make([]string, 0, len(movements))
	for uid := range movements {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	rows := make([][]string, 0, len(uids)+len(corrupt))
	for _, uid := range uids {
		rows = append(rows, model.MovementToRow(movements[uid]))
	}
	rows = append(rows, corrupt...)
	return &sheet.Table{Header: append([]string(nil), model.MovementColumns...), Rows: rows}
}

// armiesTable serializes an army set the same way.
func armiesTable(armies map[string]*model.Army, corrupt [][]string) *sheet.Table {
	uids := make([]string, 0, len(armies))
	for uid := range armies {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	rows := make([][]string, 0, len(uids)+len(corrupt))
	for _, uid := range uids {
		rows = append(rows, model.ArmyToRow(armies[uid]))
	}
	rows = append(rows, corrupt...)
	return &sheet.Table{Header: append([]string(nil), model.ArmyColumns...), Rows: rows}
}

// updateArmy applies fn to one army row and writes the sheet back.
func updateArmy(ctx context.Context, store sheet.Store, armyUID string, fn func(*model.Army)) error {
	table, err := store.Read(ctx, model.SheetArmies)
	if err != nil {
		return fmt.Errorf("read armies sheet: %w", err)
	}
	armies, corrupt := decodeArmies(table)
	a, ok := armies[armyUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrArmyNotFound, armyUID)
	}
	fn(a)
	if err := store.Write(ctx, model.SheetArmies, armiesTable(armies, corrupt)); err != nil {
		return fmt.Errorf("write armies sheet: %w", err)
	}
	return nil
}

// appendRow writes one row to a sheet, creating it with the given
// header when absent.
func appendRow(ctx context.Context, store sheet.Store, name string, header, row []string) error {
	table, err := store.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", name, err)
	}
	if table == nil {
		table = &sheet.Table{Header: append([]string(nil), header...)}
	}
	table.Rows = append(table.Rows, row)
	if err := store.Write(ctx, name, table); err != nil {
		return fmt.Errorf("write %s sheet: %w", name, err)
	}
	return nil
}

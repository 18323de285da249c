package service

import (
	"context"
	"fmt"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// memStore is an in-memory sheet.Store with per-sheet fault injection.
type memStore struct {
	tables   map[string]*sheet.Table
	readErr  map[string]error
	writeErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		tables:   make(map[string]*sheet.Table),
		readErr:  make(map[string]error),
		writeErr: make(map[string]error),
	}
}

func (m *memStore) Read(_ context.Context, name string) (*sheet.Table, error) {
	if err := m.readErr[name]; err != nil {
		return nil, err
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (m *memStore) Write(_ context.Context, name string, table *sheet.Table) error {
	if err := m.writeErr[name]; err != nil {
		return err
	}
	m.tables[name] = table.Clone()
	return nil
}

func (m *memStore) AppendRow(_ context.Context, name string, row []string) error {
	t, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%w: append to missing sheet %s", sheet.ErrUnavailable, name)
	}
	t.Rows = append(t.Rows, append([]string(nil), row...))
	return nil
}

type dm struct {
	playerID string
	notice   Notice
}

// recordingNotifier captures everything the engines try to deliver.
type recordingNotifier struct {
	announcements []string
	dms           []dm
}

func (r *recordingNotifier) Announce(text string) {
	r.announcements = append(r.announcements, text)
}

func (r *recordingNotifier) DirectMessage(playerID string, notice Notice) {
	r.dms = append(r.dms, dm{playerID: playerID, notice: notice})
}

func (r *recordingNotifier) dmsFor(playerID string) []dm {
	var out []dm
	for _, d := range r.dms {
		if d.playerID == playerID {
			out = append(out, d)
		}
	}
	return out
}

// seedUnpaused opens the pause gate.
func seedUnpaused(store *memStore) {
	store.tables[model.SheetStatus] = &sheet.Table{
		Header: []string{"Game Status"},
		Rows:   [][]string{{"Unpaused"}},
	}
}

func seedPaused(store *memStore) {
	store.tables[model.SheetStatus] = &sheet.Table{
		Header: []string{"Game Status"},
		Rows:   [][]string{{"Paused"}},
	}
}

// seedMap writes a cols x rows all-Plains map. Rows are numbered from 1.
func seedMap(store *memStore, cols, rows int) {
	table := &sheet.Table{Header: append([]string(nil), model.MapColumns...)}
	for c := 0; c < cols; c++ {
		for r := 1; r <= rows; r++ {
			table.Rows = append(table.Rows, []string{
				hexmap.FormatHexID(c, r), string(hexmap.Plains), "FALSE", "FALSE", "FALSE",
			})
		}
	}
	store.tables[model.SheetMap] = table
}

func setMapTerrain(store *memStore, hexID string, terrain hexmap.Terrain) {
	for _, row := range store.tables[model.SheetMap].Rows {
		if row[0] == hexID {
			row[1] = string(terrain)
		}
	}
}

func setMapHolding(store *memStore, hexID, holding string) {
	for _, row := range store.tables[model.SheetMap].Rows {
		if row[0] == hexID {
			row[2] = holding
		}
	}
}

// seedSeasons writes the standard rate table with Spring active.
func seedSeasons(store *memStore) {
	store.tables[model.SheetSeasons] = &sheet.Table{
		Header: []string{"Army Type", "Spring", "Summer", "Autumn", "Winter"},
		Rows: [][]string{
			{"Active", "x", "", "", ""},
			{"army", "10", "10", "12", "20"},
			{"cavalry", "15", "15", "18", "30"},
			{"has Ships", "8", "8", "10", "16"},
			{"has Siege", "20", "20", "24", "40"},
		},
	}
}

func seedArmy(store *memStore, a *model.Army) {
	t, ok := store.tables[model.SheetArmies]
	if !ok {
		t = &sheet.Table{Header: append([]string(nil), model.ArmyColumns...)}
		store.tables[model.SheetArmies] = t
	}
	t.Rows = append(t.Rows, model.ArmyToRow(a))
}

func seedMovement(store *memStore, m *model.Movement) {
	t, ok := store.tables[model.SheetMovements]
	if !ok {
		t = &sheet.Table{Header: append([]string(nil), model.MovementColumns...)}
		store.tables[model.SheetMovements] = t
	}
	t.Rows = append(t.Rows, model.MovementToRow(m))
}

// storedMovement reads one movement row back from the store.
func storedMovement(store *memStore, uid string) *model.Movement {
	t, ok := store.tables[model.SheetMovements]
	if !ok {
		return nil
	}
	for _, row := range t.Rows {
		m, err := model.MovementFromRow(t.Header, row)
		if err == nil && m.UID == uid {
			return m
		}
	}
	return nil
}

func storedArmy(store *memStore, uid string) *model.Army {
	t, ok := store.tables[model.SheetArmies]
	if !ok {
		return nil
	}
	for _, row := range t.Rows {
		a, err := model.ArmyFromRow(t.Header, row)
		if err == nil && a.UID == uid {
			return a
		}
	}
	return nil
}

func storedTimer(store *memStore, uid string) *model.StatusTimer {
	t, ok := store.tables[model.SheetStatusTimers]
	if !ok {
		return nil
	}
	for _, row := range t.Rows {
		st, err := model.StatusTimerFromRow(t.Header, row)
		if err == nil && st.ArmyUID == uid {
			return st
		}
	}
	return nil
}

// Sheet row (de)serialization. This is the single boundary between the
// loosely-typed tabular store and the typed domain records; schema
// mismatches fail here, fast, instead of leaking defensive lookups into
// the engines.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// ErrSchemaMismatch is returned when a sheet is missing a column the
// core depends on.
var ErrSchemaMismatch = errors.New("sheet schema mismatch")

// Sheet names the core reads and writes.
const (
	SheetMovements    = "Movements"
	SheetArmies       = "Armies"
	SheetStatus       = "Status"
	SheetStatusTimers = "StatusTimers"
	SheetSeasons      = "Seasons"
	SheetMap          = "Map"
)

// MovementColumns is the Movements sheet header, in write order.
var MovementColumns = []string{
	"Movement UID", "Player", "Movement Type", "Army UID",
	"Commanders", "Army", "Navy", "Siege",
	"Intent", "Path", "Terrain Values", "Current Hex",
	"Base Minutes per Hex", "Terrain Mod Minutes per Hex",
	"Minutes since last Hex", "Message",
}

// ArmyColumns is the Armies sheet header, in write order.
var ArmyColumns = []string{
	"Army UID", "Player", "Current Hex",
	"Commanders", "Troops", "Navy", "Siege", "Status",
}

// StatusTimerColumns is the StatusTimers sheet header, in write order.
var StatusTimerColumns = []string{"Army UID", "Status", "Status Timer"}

// MapColumns is the Map sheet header.
var MapColumns = []string{"Hex", "Terrain", "Holding Name", "Road", "River"}

// columnIndex resolves header positions for the named columns, failing
// if any is absent.
func columnIndex(header []string, names ...string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	idx := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
		}
		idx[name] = i
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// MovementFromRow deserializes one Movements row.
func MovementFromRow(header, row []string) (*Movement, error) {
	idx, err := columnIndex(header, MovementColumns...)
	if err != nil {
		return nil, err
	}
	get := func(name string) string { return cell(row, idx[name]) }

	uid := get("Movement UID")
	if uid == "" {
		return nil, fmt.Errorf("%w: empty movement uid", ErrDataCorruption)
	}

	kind, err := parseMoveKind(get("Movement Type"))
	if err != nil {
		return nil, fmt.Errorf("movement %s: %w", uid, err)
	}
	base, err := parseMinutes(get("Base Minutes per Hex"))
	if err != nil {
		return nil, fmt.Errorf("movement %s: base minutes: %w", uid, err)
	}
	pace, err := parseMilliMinutes(get("Terrain Mod Minutes per Hex"))
	if err != nil {
		return nil, fmt.Errorf("movement %s: pace: %w", uid, err)
	}
	elapsed, err := parseMilliMinutes(get("Minutes since last Hex"))
	if err != nil {
		return nil, fmt.Errorf("movement %s: elapsed: %w", uid, err)
	}
	values, err := parseTerrainValues(get("Terrain Values"))
	if err != nil {
		return nil, fmt.Errorf("movement %s: %w", uid, err)
	}

	m := &Movement{
		UID:           uid,
		Player:        get("Player"),
		Kind:          kind,
		ArmyUID:       get("Army UID"),
		Commanders:    SplitManifest(get("Commanders")),
		Army:          SplitManifest(get("Army")),
		Navy:          SplitManifest(get("Navy")),
		Siege:         SplitManifest(get("Siege")),
		Intent:        get("Intent"),
		Path:          splitPath(get("Path")),
		TerrainValues: values,
		CurrentHex:    get("Current Hex"),
		BaseMinutes:   base,
		PaceMilli:     pace,
		ElapsedMilli:  elapsed,
		Message:       noValueToEmpty(get("Message")),
	}
	if len(m.Path) == 0 {
		return nil, fmt.Errorf("%w: movement %s has empty path", ErrDataCorruption, uid)
	}
	if len(m.TerrainValues) != len(m.Path) {
		return nil, fmt.Errorf("%w: movement %s terrain values length %d != path length %d",
			ErrDataCorruption, uid, len(m.TerrainValues), len(m.Path))
	}
	return m, nil
}

// MovementToRow serializes a movement in MovementColumns order.
func MovementToRow(m *Movement) []string {
	msg := m.Message
	if msg == "" {
		msg = "None"
	}
	return []string{
		m.UID,
		m.Player,
		m.Kind.String(),
		m.ArmyUID,
		JoinManifest(m.Commanders),
		JoinManifest(m.Army),
		JoinManifest(m.Navy),
		JoinManifest(m.Siege),
		m.Intent,
		strings.Join(m.Path, ", "),
		formatTerrainValues(m.TerrainValues),
		m.CurrentHex,
		strconv.Itoa(m.BaseMinutes),
		formatMilliMinutes(m.PaceMilli),
		formatMilliMinutes(m.ElapsedMilli),
		msg,
	}
}

// ArmyFromRow deserializes one Armies row. Unrecognized status text is a
// schema-level corruption, rejected here.
func ArmyFromRow(header, row []string) (*Army, error) {
	idx, err := columnIndex(header, ArmyColumns...)
	if err != nil {
		return nil, err
	}
	get := func(name string) string { return cell(row, idx[name]) }

	uid := get("Army UID")
	if uid == "" {
		return nil, fmt.Errorf("%w: empty army uid", ErrDataCorruption)
	}
	status, ok := ParseStatus(get("Status"))
	if !ok {
		return nil, fmt.Errorf("%w: army %s has unknown status %q", ErrDataCorruption, uid, get("Status"))
	}

	return &Army{
		UID:        uid,
		Player:     get("Player"),
		CurrentHex: get("Current Hex"),
		Commanders: SplitManifest(get("Commanders")),
		Troops:     SplitManifest(get("Troops")),
		Navy:       SplitManifest(get("Navy")),
		Siege:      SplitManifest(get("Siege")),
		Status:     status,
	}, nil
}

// ArmyToRow serializes an army in ArmyColumns order.
func ArmyToRow(a *Army) []string {
	return []string{
		a.UID,
		a.Player,
		a.CurrentHex,
		JoinManifest(a.Commanders),
		JoinManifest(a.Troops),
		JoinManifest(a.Navy),
		JoinManifest(a.Siege),
		string(a.Status),
	}
}

// StatusTimerFromRow deserializes one StatusTimers row.
func StatusTimerFromRow(header, row []string) (*StatusTimer, error) {
	idx, err := columnIndex(header, StatusTimerColumns...)
	if err != nil {
		return nil, err
	}
	get := func(name string) string { return cell(row, idx[name]) }

	minutes, err := parseMinutes(get("Status Timer"))
	if err != nil {
		return nil, fmt.Errorf("status timer for %s: %w", get("Army UID"), err)
	}
	status, ok := ParseStatus(get("Status"))
	if !ok {
		return nil, fmt.Errorf("%w: timer for %s has unknown status %q",
			ErrDataCorruption, get("Army UID"), get("Status"))
	}
	return &StatusTimer{
		ArmyUID: get("Army UID"),
		Status:  status,
		Minutes: minutes,
	}, nil
}

// StatusTimerToRow serializes a timer checkpoint in StatusTimerColumns
// order.
func StatusTimerToRow(t *StatusTimer) []string {
	return []string{t.ArmyUID, string(t.Status), strconv.Itoa(t.Minutes)}
}

// HexFromRow deserializes one Map row. The legacy sheets write "FALSE"
// in Holding Name for hexes without a settlement.
func HexFromRow(header, row []string) (*hexmap.Hex, error) {
	idx, err := columnIndex(header, MapColumns...)
	if err != nil {
		return nil, err
	}
	get := func(name string) string { return cell(row, idx[name]) }

	id := get("Hex")
	if _, _, err := hexmap.SplitHexID(id); err != nil {
		return nil, err
	}
	holding := get("Holding Name")
	if strings.EqualFold(holding, "false") || isNoValue(holding) {
		holding = ""
	}
	return &hexmap.Hex{
		ID:      id,
		Terrain: hexmap.Terrain(get("Terrain")),
		Holding: holding,
		Road:    parseBool(get("Road")),
		River:   parseBool(get("River")),
	}, nil
}

func parseMoveKind(s string) (hexmap.MoveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "army":
		return hexmap.MoveArmy, nil
	case "fleet":
		return hexmap.MoveFleet, nil
	}
	return 0, fmt.Errorf("%w: unknown movement type %q", ErrDataCorruption, s)
}

func splitPath(cell string) []string {
	cell = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(cell), "]"), "[")
	if cell == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(cell, ",") {
		part = strings.Trim(strings.TrimSpace(part), "'\"")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTerrainValues(cell string) ([]float64, error) {
	parts := splitPath(cell)
	if len(parts) == 0 {
		return nil, nil
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad terrain value %q", ErrDataCorruption, p)
		}
		values[i] = v
	}
	return values, nil
}

func formatTerrainValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func parseMinutes(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad minutes value %q", ErrDataCorruption, s)
	}
	return int(v), nil
}

// parseMilliMinutes reads a decimal minutes cell into fixed-point
// milli-minutes.
func parseMilliMinutes(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad minutes value %q", ErrDataCorruption, s)
	}
	return int64(v*1000 + 0.5), nil
}

func formatMilliMinutes(milli int64) string {
	return strconv.FormatFloat(float64(milli)/1000, 'f', -1, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "x", "yes", "y":
		return true
	}
	return false
}

func noValueToEmpty(s string) string {
	if isNoValue(s) {
		return ""
	}
	return s
}

package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// ErrDataCorruption marks an entity whose persisted state is internally
// inconsistent (e.g. a movement whose current hex is not on its own
// path). Such entities are logged and skipped for the tick, never
// allowed to abort the cycle.
var ErrDataCorruption = errors.New("data corruption")

// Status is an army's activity state.
type Status string

const (
	StatusStationary Status = "Stationary"
	StatusMoving     Status = "Moving"
	StatusSiege      Status = "Siege"
	StatusRaid       Status = "Raid"
	StatusEmbark     Status = "Embark"
	StatusDisembark  Status = "Disembark"
	StatusDefending  Status = "Defending"
	StatusBesieging  Status = "Besieging"
	StatusAmbushing  Status = "Ambushing"
)

var statuses = map[string]Status{
	"stationary": StatusStationary,
	"moving":     StatusMoving,
	"siege":      StatusSiege,
	"raid":       StatusRaid,
	"embark":     StatusEmbark,
	"disembark":  StatusDisembark,
	"defending":  StatusDefending,
	"besieging":  StatusBesieging,
	"ambushing":  StatusAmbushing,
}

// ParseStatus maps free-text status cells to the Status enum.
func ParseStatus(s string) (Status, bool) {
	st, ok := statuses[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// StatusFromIntent maps a movement's declared intent to the status the
// army takes on arrival. Unknown intents (and Retreat) leave the army
// Stationary.
func StatusFromIntent(intent string) Status {
	if st, ok := ParseStatus(intent); ok && st != StatusMoving {
		return st
	}
	return StatusStationary
}

// IntentRetreat is the special intent value that reverses a movement's
// path back toward its origin.
const IntentRetreat = "Retreat"

// MilliPerTick is the fixed-point progress added per simulation tick
// (one minute, in milli-minutes). Pace and elapsed time use the same
// unit so fractional terrain adjustments accumulate without drift.
const MilliPerTick int64 = 1000

// Movement is one army or fleet's in-progress journey along a computed
// path. Invariants: CurrentHex is an element of Path, and TerrainValues
// is parallel to Path.
type Movement struct {
	UID           string
	Player        string // opaque player reference id
	Kind          hexmap.MoveKind
	ArmyUID       string
	Commanders    []string
	Army          []string
	Navy          []string
	Siege         []string
	Intent        string
	Path          []string
	TerrainValues []float64
	CurrentHex    string
	BaseMinutes   int    // base minutes per hex from the rate table
	PaceMilli     int64  // terrain-adjusted milli-minutes per hex
	ElapsedMilli  int64  // milli-minutes since last hex transition
	Message       string // custom arrival message, "" for the default
}

// HasNavy reports whether the movement carries any ships.
func (m *Movement) HasNavy() bool {
	return len(m.Navy) > 0
}

// CurrentIndex returns the position of CurrentHex within Path.
func (m *Movement) CurrentIndex() (int, error) {
	for i, id := range m.Path {
		if id == m.CurrentHex {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: movement %s current hex %s not in path", ErrDataCorruption, m.UID, m.CurrentHex)
}

// Reverse flips the movement into a retreat: the new path runs from the
// current hex back to the origin, terrain values reversed in lockstep,
// elapsed progress reset.
func (m *Movement) Reverse() error {
	idx, err := m.CurrentIndex()
	if err != nil {
		return err
	}
	path := make([]string, 0, idx+1)
	values := make([]float64, 0, idx+1)
	for i := idx; i >= 0; i-- {
		path = append(path, m.Path[i])
		values = append(values, m.TerrainValues[i])
	}
	m.Path = path
	m.TerrainValues = values
	m.Intent = IntentRetreat
	m.ElapsedMilli = 0
	m.Message = ""
	return nil
}

// Clone returns a deep copy of the movement.
func (m *Movement) Clone() *Movement {
	cp := *m
	cp.Commanders = append([]string(nil), m.Commanders...)
	cp.Army = append([]string(nil), m.Army...)
	cp.Navy = append([]string(nil), m.Navy...)
	cp.Siege = append([]string(nil), m.Siege...)
	cp.Path = append([]string(nil), m.Path...)
	cp.TerrainValues = append([]float64(nil), m.TerrainValues...)
	return &cp
}

// Army is a persistent military unit with a location and status.
type Army struct {
	UID        string
	Player     string
	CurrentHex string
	Commanders []string
	Troops     []string
	Navy       []string
	Siege      []string
	Status     Status
}

// Clone returns a deep copy of the army.
func (a *Army) Clone() *Army {
	cp := *a
	cp.Commanders = append([]string(nil), a.Commanders...)
	cp.Troops = append([]string(nil), a.Troops...)
	cp.Navy = append([]string(nil), a.Navy...)
	cp.Siege = append([]string(nil), a.Siege...)
	return &cp
}

// StatusTimer is a persisted checkpoint of one army's in-flight status
// countdown.
type StatusTimer struct {
	ArmyUID string
	Status  Status
	Minutes int
}

// NormalizeManifest canonicalizes a free-text unit list: entries are
// trimmed and legacy no-value spellings ("None", "nan", "['nan']", …)
// collapse to an empty manifest.
func NormalizeManifest(entries []string) []string {
	var out []string
	for _, e := range entries {
		e = strings.Trim(strings.TrimSpace(e), "'\"")
		if e == "" || isNoValue(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SplitManifest parses a comma-separated manifest cell into its
// canonical form.
func SplitManifest(cell string) []string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, "[")
	cell = strings.TrimSuffix(cell, "]")
	if cell == "" {
		return nil
	}
	return NormalizeManifest(strings.Split(cell, ","))
}

// JoinManifest renders a manifest back into a sheet cell. Empty
// manifests are written as "None" for compatibility with existing
// sheets.
func JoinManifest(entries []string) string {
	if len(entries) == 0 {
		return "None"
	}
	return strings.Join(entries, ", ")
}

func isNoValue(s string) bool {
	s = strings.Trim(strings.ToLower(s), "'\" ")
	switch s {
	case "none", "nan", "n/a", "null", "-":
		return true
	}
	return false
}

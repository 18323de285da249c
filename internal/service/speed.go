package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
)

var (
	ErrAmbiguousSeason  = errors.New("ambiguous active season")
	ErrInvalidRateTable = errors.New("invalid rate table")
)

// Army archetypes, the row keys of the Seasons rate table.
const (
	ArchetypeShips   = "has Ships"
	ArchetypeSiege   = "has Siege"
	ArchetypeCavalry = "cavalry"
	ArchetypeArmy    = "army"
)

// seasonActiveRow marks the Seasons row whose single "x" cell selects
// the active season column.
const seasonActiveRow = "Active"

var cavalryKeywords = []string{"cavalry", "cav", "upstart noble band", "frankish knights"}

// Archetype classifies a force for rate lookup. Any ships dominate,
// then siege equipment, then an all-mounted troop list counts as
// cavalry.
func Archetype(troops, navy, siege []string) string {
	if len(navy) > 0 {
		return ArchetypeShips
	}
	if len(siege) > 0 {
		return ArchetypeSiege
	}
	if len(troops) > 0 && allCavalry(troops) {
		return ArchetypeCavalry
	}
	return ArchetypeArmy
}

func allCavalry(troops []string) bool {
	for _, t := range troops {
		lower := strings.ToLower(t)
		matched := false
		for _, kw := range cavalryKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// SpeedResolver answers minutes-per-hex questions from the Seasons rate
// table.
type SpeedResolver struct {
	store sheet.Store
}

// NewSpeedResolver creates a SpeedResolver over the given sheet store.
func NewSpeedResolver(store sheet.Store) *SpeedResolver {
	return &SpeedResolver{store: store}
}

// BaseMinutes resolves the base minutes-per-hex for an archetype under
// the currently active season.
func (r *SpeedResolver) BaseMinutes(ctx context.Context, archetype string) (int, error) {
	table, err := r.store.Read(ctx, model.SheetSeasons)
	if err != nil {
		return 0, fmt.Errorf("read seasons sheet: %w", err)
	}
	if table == nil || len(table.Header) < 2 {
		return 0, fmt.Errorf("%w: seasons sheet missing or empty", ErrInvalidRateTable)
	}

	season, err := activeSeasonColumn(table)
	if err != nil {
		return 0, err
	}

	for _, row := range table.Rows {
		if len(row) == 0 || !strings.EqualFold(strings.TrimSpace(row[0]), archetype) {
			continue
		}
		if season >= len(row) {
			return 0, fmt.Errorf("%w: no %q entry for active season", ErrInvalidRateTable, archetype)
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(row[season]))
		if err != nil || minutes < 0 {
			return 0, fmt.Errorf("%w: bad rate %q for %q", ErrInvalidRateTable, row[season], archetype)
		}
		return minutes, nil
	}
	return 0, fmt.Errorf("%w: no row for archetype %q", ErrInvalidRateTable, archetype)
}

// activeSeasonColumn finds the single column marked "x" in the Active
// row.
func activeSeasonColumn(table *sheet.Table) (int, error) {
	for _, row := range table.Rows {
		if len(row) == 0 || !strings.EqualFold(strings.TrimSpace(row[0]), seasonActiveRow) {
			continue
		}
		active := -1
		for i := 1; i < len(row); i++ {
			if strings.EqualFold(strings.TrimSpace(row[i]), "x") {
				if active != -1 {
					return 0, fmt.Errorf("%w: more than one season marked active", ErrAmbiguousSeason)
				}
				active = i
			}
		}
		if active == -1 {
			return 0, fmt.Errorf("%w: no season marked active", ErrAmbiguousSeason)
		}
		return active, nil
	}
	return 0, fmt.Errorf("%w: no %q row in seasons sheet", ErrAmbiguousSeason, seasonActiveRow)
}

// PaceMilli computes the terrain-adjusted milli-minutes per hex: base
// minutes scaled by the mean terrain cost of the path. Fixed-point all
// the way down so fractional progress never drifts.
func PaceMilli(baseMinutes int, terrainValues []float64) int64 {
	if len(terrainValues) == 0 {
		return int64(baseMinutes) * 1000
	}
	var sum int64
	for _, v := range terrainValues {
		sum += int64(v*1000 + 0.5)
	}
	return int64(baseMinutes) * sum / int64(len(terrainValues))
}

// ETAMinutes is the human-facing arrival estimate for the remaining
// hexes, rounded up.
func ETAMinutes(paceMilli int64, remainingHexes int, elapsedMilli int64) int {
	total := paceMilli*int64(remainingHexes) - elapsedMilli
	if total <= 0 {
		return 0
	}
	return int((total + 999) / 1000)
}

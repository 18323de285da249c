package hexmap

import "math"

// Terrain names a hex's terrain type as it appears in the map sheet.
type Terrain string

const (
	Plains      Terrain = "Plains"
	Hills       Terrain = "Hills"
	Swamp       Terrain = "Swamp"
	Desert      Terrain = "Desert"
	Forest      Terrain = "Forest"
	DenseForest Terrain = "Dense Forest"
	Snow        Terrain = "Snow"
	SnowyForest Terrain = "Snowy Forest"
	Coast       Terrain = "Coast"
	Island      Terrain = "Island"
	Peninsula   Terrain = "Peninsula"
	Sea         Terrain = "Sea"
	Mountains   Terrain = "Mountains"
	TheWall     Terrain = "The Wall"
)

// MoveKind distinguishes land armies from naval fleets for traversal rules.
type MoveKind int

const (
	MoveArmy MoveKind = iota
	MoveFleet
)

func (k MoveKind) String() string {
	if k == MoveFleet {
		return "fleet"
	}
	return "army"
}

// Hex is a single tile of the map. Reference data only; the simulation
// never mutates it.
type Hex struct {
	ID      string
	Terrain Terrain
	Holding string // settlement name bound to this hex, "" if none
	Road    bool
	River   bool
}

// Impassable marks a hex that the given movement kind cannot enter.
var Impassable = math.Inf(1)

// landCosts is the per-terrain cost table for army movement. Terrain
// absent from the table costs 1. Mountains and The Wall are handled
// separately because their cost depends on roads/holdings.
var landCosts = map[Terrain]float64{
	Hills:       2,
	Swamp:       4,
	Desert:      3,
	Forest:      3,
	DenseForest: 4,
	Snow:        3,
	SnowyForest: 4,
	Plains:      1,
	Coast:       1,
	Island:      1,
	Peninsula:   1,
}

// Cost returns the traversal cost of h for the given movement kind, or
// Impassable. Stateless: queried fresh per hex per kind.
func Cost(kind MoveKind, h *Hex) float64 {
	if kind == MoveFleet {
		if IsWater(h.Terrain) {
			return 1
		}
		return Impassable
	}

	hasHolding := h.Holding != ""
	if h.River && !h.Road && !hasHolding {
		return Impassable
	}
	switch h.Terrain {
	case Mountains, TheWall:
		if h.Road || hasHolding {
			return 3
		}
		return Impassable
	case Sea:
		return Impassable
	}
	if c, ok := landCosts[h.Terrain]; ok {
		return c
	}
	return 1
}

// IsWater reports whether fleets can occupy the terrain.
func IsWater(t Terrain) bool {
	switch t {
	case Sea, Coast, Island, Peninsula:
		return true
	}
	return false
}

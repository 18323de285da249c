package hexmap

import (
	"errors"
	"fmt"
)

// ErrUnresolvableLocation is returned when a start, goal, or avoid entry
// names neither a known hex id nor a known holding.
var ErrUnresolvableLocation = errors.New("unresolvable location")

// Grid is the full hex collection, indexed by hex id and by holding name.
type Grid struct {
	hexes    map[string]*Hex
	holdings map[string]*Hex
}

// NewGrid builds a Grid from map rows. Later duplicates win, matching the
// sheet's row order semantics.
func NewGrid(hexes []Hex) *Grid {
	g := &Grid{
		hexes:    make(map[string]*Hex, len(hexes)),
		holdings: make(map[string]*Hex),
	}
	for i := range hexes {
		h := &hexes[i]
		g.hexes[h.ID] = h
		if h.Holding != "" {
			g.holdings[h.Holding] = h
		}
	}
	return g
}

// Hex returns the hex with the given id, or nil.
func (g *Grid) Hex(id string) *Hex {
	return g.hexes[id]
}

// Len returns the number of hexes on the grid.
func (g *Grid) Len() int {
	return len(g.hexes)
}

// Resolve maps a hex id or holding name to its hex. Hex ids take
// precedence over holding names.
func (g *Grid) Resolve(location string) (*Hex, error) {
	if h, ok := g.hexes[location]; ok {
		return h, nil
	}
	if h, ok := g.holdings[location]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnresolvableLocation, location)
}

// DisplayName returns the holding name at a hex if one exists, otherwise
// the raw hex id. Used when announcing destinations.
func (g *Grid) DisplayName(hexID string) string {
	if h, ok := g.hexes[hexID]; ok && h.Holding != "" {
		return h.Holding
	}
	return hexID
}

// AvoidSet resolves a mixed list of hex ids and holding names into the
// set of hex ids to exclude from pathfinding. Unknown entries are
// ignored: a player avoiding a place that isn't on the map avoids
// nothing.
func (g *Grid) AvoidSet(avoid []string) map[string]bool {
	set := make(map[string]bool, len(avoid))
	for _, item := range avoid {
		if item == "" {
			continue
		}
		if _, ok := g.hexes[item]; ok {
			set[item] = true
			continue
		}
		if h, ok := g.holdings[item]; ok {
			set[h.ID] = true
		}
	}
	return set
}

// Neighbors returns the traversable neighbor hex ids of id for the given
// movement kind, excluding hexes in the avoid set and hexes whose terrain
// is impassable for the kind. The two diagonal offsets depend on column
// parity (odd-q offset layout).
func (g *Grid) Neighbors(kind MoveKind, id string, avoid map[string]bool) []string {
	col, row, err := ToCoordinates(id)
	if err != nil {
		return nil
	}
	current := g.hexes[id]
	if current == nil {
		return nil
	}

	offsets := [6][2]int{
		{-1, 0}, {1, 0}, // left, right
		{0, -1}, {0, 1}, // top, bottom
	}
	if col%2 == 0 {
		offsets[4] = [2]int{-1, 1}
		offsets[5] = [2]int{1, 1}
	} else {
		offsets[4] = [2]int{-1, -1}
		offsets[5] = [2]int{1, -1}
	}

	neighbors := make([]string, 0, 6)
	for _, off := range offsets {
		ncol := col + off[0]
		if ncol < 0 {
			continue
		}
		nid := FormatHexID(ncol, row+off[1])
		neighbor, ok := g.hexes[nid]
		if !ok || avoid[nid] {
			continue
		}
		if Cost(kind, neighbor) == Impassable {
			continue
		}
		// Fleets may not hop between water tiles when either end is a
		// Peninsula; they route around it.
		if kind == MoveFleet &&
			(current.Terrain == Peninsula || neighbor.Terrain == Peninsula) &&
			IsWater(current.Terrain) && IsWater(neighbor.Terrain) {
			continue
		}
		neighbors = append(neighbors, nid)
	}
	return neighbors
}

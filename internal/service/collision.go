package service

import (
	"fmt"
	"sort"
	"strings"
)

// CollisionDetector diffs per-tick hex occupancy and reports contested
// hexes to the gamemaster. It remembers exactly one tick of history:
// the hexes that held two or more armies last tick.
type CollisionDetector struct {
	notifier Notifier
	gmID     string
	prev     map[string]map[string]bool
}

// NewCollisionDetector creates a detector reporting to the given
// gamemaster reference id.
func NewCollisionDetector(notifier Notifier, gmID string) *CollisionDetector {
	return &CollisionDetector{
		notifier: notifier,
		gmID:     gmID,
		prev:     make(map[string]map[string]bool),
	}
}

// Observe takes this tick's hex→occupying-army map and emits delta
// notifications against the previous tick.
func (d *CollisionDetector) Observe(occupancy map[string]map[string]bool) {
	current := make(map[string]map[string]bool)

	for hex, armies := range occupancy {
		if len(armies) < 2 {
			continue
		}
		current[hex] = armies
		prev, known := d.prev[hex]
		if !known {
			d.notify("Collision detected", hex, []Field{
				{Name: "Armies", Value: joinSet(armies)},
			})
			continue
		}
		var newcomers []string
		for uid := range armies {
			if !prev[uid] {
				newcomers = append(newcomers, uid)
			}
		}
		if len(newcomers) > 0 {
			sort.Strings(newcomers)
			d.notify("Additional arrival at collision", hex, []Field{
				{Name: "Arrived", Value: strings.Join(newcomers, ", ")},
				{Name: "Present", Value: joinSet(armies)},
			})
		}
	}

	for hex, prev := range d.prev {
		if _, still := current[hex]; still {
			continue
		}
		var departed []string
		for uid := range prev {
			if !occupancy[hex][uid] {
				departed = append(departed, uid)
			}
		}
		if len(departed) == 0 {
			continue
		}
		sort.Strings(departed)
		fields := []Field{{Name: "Departed", Value: strings.Join(departed, ", ")}}
		if remaining := joinSet(occupancy[hex]); remaining != "" {
			fields = append(fields, Field{Name: "Remaining", Value: remaining})
		}
		d.notify("Departure from collision", hex, fields)
	}

	d.prev = current
}

func (d *CollisionDetector) notify(title, hex string, fields []Field) {
	d.notifier.DirectMessage(d.gmID, Notice{
		Title:  title,
		Body:   fmt.Sprintf("Hex %s", hex),
		Fields: fields,
	})
}

func joinSet(set map[string]bool) string {
	uids := make([]string, 0, len(set))
	for uid := range set {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return strings.Join(uids, ", ")
}

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// MovementEngine owns the live movement set between ticks. The sheet is
// the durable record, reconciled each tick; in-memory progress is
// authoritative for movements the engine already knows.
type MovementEngine struct {
	store      sheet.Store
	notifier   Notifier
	collisions *CollisionDetector

	movements map[string]*model.Movement
	corrupt   [][]string
}

// NewMovementEngine creates a MovementEngine.
func NewMovementEngine(store sheet.Store, notifier Notifier, collisions *CollisionDetector) *MovementEngine {
	return &MovementEngine{
		store:      store,
		notifier:   notifier,
		collisions: collisions,
		movements:  make(map[string]*model.Movement),
	}
}

// Tick advances every live movement by one minute. Pause gate first,
// then reconcile against the durable snapshot, advance, update army
// positions, run collision detection, and persist.
func (e *MovementEngine) Tick(ctx context.Context) {
	simMu.Lock()
	defer simMu.Unlock()

	paused, err := readPauseGate(ctx, e.store)
	if err != nil {
		log.Error().Err(err).Msg("Pause gate unreadable, skipping movement tick")
		return
	}
	if paused {
		log.Debug().Msg("Simulation paused, skipping movement tick")
		return
	}

	table, err := e.store.Read(ctx, model.SheetMovements)
	if err != nil {
		log.Error().Err(err).Msg("Movements sheet unreadable, retaining state for next tick")
		return
	}
	if table == nil {
		log.Warn().Msg("Movements sheet missing, retaining state for next tick")
		return
	}
	snapshot, corrupt := decodeMovements(table)
	e.corrupt = corrupt
	e.reconcile(snapshot)

	grid, err := loadGrid(ctx, e.store)
	if err != nil {
		log.Warn().Err(err).Msg("Map unreadable, arrival names fall back to hex ids")
		grid = nil
	}

	for _, uid := range sortedUIDs(e.movements) {
		e.advance(ctx, grid, e.movements[uid])
	}

	e.syncArmies(ctx)
	e.persist(ctx)
}

// reconcile merges the durable snapshot into the live set: unknown uids
// are adopted, externally flipped retreat intents reverse the in-memory
// path from the current position, and uids missing from the snapshot
// are dropped as cancelled.
func (e *MovementEngine) reconcile(snapshot map[string]*model.Movement) {
	for uid, ext := range snapshot {
		cur, known := e.movements[uid]
		if !known {
			log.Info().Str("movementUid", uid).Str("player", ext.Player).Msg("Adopting movement from sheet")
			e.movements[uid] = ext
			continue
		}
		if ext.Intent == model.IntentRetreat && cur.Intent != model.IntentRetreat {
			if err := cur.Reverse(); err != nil {
				log.Error().Err(err).Str("movementUid", uid).Msg("Retreat reversal failed")
				continue
			}
			log.Info().Str("movementUid", uid).Str("currentHex", cur.CurrentHex).Msg("Movement retreating")
		}
	}
	for uid := range e.movements {
		if _, ok := snapshot[uid]; !ok {
			log.Info().Str("movementUid", uid).Msg("Movement removed externally, dropping")
			delete(e.movements, uid)
		}
	}
}

// advance accrues one tick of progress and steps the movement to its
// next hex, or completes it at the end of the path. Failures are
// isolated to the one movement.
func (e *MovementEngine) advance(ctx context.Context, grid *hexmap.Grid, m *model.Movement) {
	idx, err := m.CurrentIndex()
	if err != nil {
		log.Error().Err(err).Str("movementUid", m.UID).Msg("Skipping corrupt movement this tick")
		return
	}
	m.ElapsedMilli += model.MilliPerTick
	if m.ElapsedMilli < m.PaceMilli {
		return
	}
	if idx >= len(m.Path)-2 {
		e.complete(ctx, grid, m)
		return
	}
	m.CurrentHex = m.Path[idx+1]
	m.ElapsedMilli = 0
	log.Debug().Str("movementUid", m.UID).Str("currentHex", m.CurrentHex).Msg("Movement advanced a hex")
}

// complete lands the movement on its final hex, announces the arrival,
// messages the owner, updates the army, and retires the record.
func (e *MovementEngine) complete(ctx context.Context, grid *hexmap.Grid, m *model.Movement) {
	dest := m.Path[len(m.Path)-1]
	m.CurrentHex = dest
	display := dest
	if grid != nil {
		display = grid.DisplayName(dest)
	}

	text := m.Message
	if text == "" {
		unit := "Men"
		if m.HasNavy() {
			unit = "Ships"
		}
		text = fmt.Sprintf("Locals spot %s arriving at %s.", unit, display)
		if m.Intent != "" {
			text = fmt.Sprintf("%s They intend to: %s.", text, m.Intent)
		}
	}
	e.notifier.Announce(fmt.Sprintf("%s || %s ||", text, m.UID))
	e.notifier.DirectMessage(m.Player, Notice{
		Title: "Movement complete",
		Body:  fmt.Sprintf("Your forces have arrived at %s.", display),
		Fields: []Field{
			{Name: "Army", Value: m.ArmyUID},
			{Name: "Destination", Value: display},
			{Name: "Intent", Value: m.Intent},
		},
	})

	status := model.StatusFromIntent(m.Intent)
	if err := updateArmy(ctx, e.store, m.ArmyUID, func(a *model.Army) {
		a.CurrentHex = dest
		a.Status = status
	}); err != nil {
		log.Error().Err(err).Str("armyUid", m.ArmyUID).Msg("Arrival army update failed")
	}

	log.Info().Str("movementUid", m.UID).Str("destination", dest).Str("status", string(status)).Msg("Movement completed")
	delete(e.movements, m.UID)
}

// syncArmies writes moving armies' positions through to the Armies
// sheet and feeds the collision detector the combined occupancy of
// moving and stationary forces.
func (e *MovementEngine) syncArmies(ctx context.Context) {
	table, err := e.store.Read(ctx, model.SheetArmies)
	if err != nil {
		log.Error().Err(err).Msg("Armies sheet unreadable, skipping position sync")
		return
	}
	armies, corrupt := decodeArmies(table)

	occupancy := make(map[string]map[string]bool)
	occupy := func(hex, armyUID string) {
		if hex == "" || armyUID == "" {
			return
		}
		if occupancy[hex] == nil {
			occupancy[hex] = make(map[string]bool)
		}
		occupancy[hex][armyUID] = true
	}

	for _, m := range e.movements {
		if a, ok := armies[m.ArmyUID]; ok {
			a.CurrentHex = m.CurrentHex
			a.Status = model.StatusMoving
		}
		occupy(m.CurrentHex, m.ArmyUID)
	}
	for uid, a := range armies {
		if a.Status == model.StatusMoving {
			continue
		}
		occupy(a.CurrentHex, uid)
	}

	if err := e.store.Write(ctx, model.SheetArmies, armiesTable(armies, corrupt)); err != nil {
		log.Error().Err(err).Msg("Armies sheet write failed, retrying next tick")
	}

	if e.collisions != nil {
		e.collisions.Observe(occupancy)
	}
}

// persist overwrites the Movements sheet with the surviving live set.
func (e *MovementEngine) persist(ctx context.Context) {
	if err := e.store.Write(ctx, model.SheetMovements, movementsTable(e.movements, e.corrupt)); err != nil {
		log.Error().Err(err).Msg("Movements sheet write failed, retrying next tick")
	}
}

func sortedUIDs(movements map[string]*model.Movement) []string {
	uids := make([]string, 0, len(movements))
	for uid := range movements {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

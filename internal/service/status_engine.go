package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
)

// Default timed-status durations in minutes. Raid is configurable.
const (
	SiegeMinutes       = 180
	DefaultRaidMinutes = 120
	EmbarkMinutes      = 30
	DisembarkMinutes   = 30
)

// StatusEngine runs the countdown timers for timed army activities.
// Statuses without a duration entry (Stationary, Moving, Defending, …)
// carry no timer and never auto-complete.
type StatusEngine struct {
	store     sheet.Store
	notifier  Notifier
	durations map[model.Status]int

	timers map[string]*model.StatusTimer
}

// NewStatusEngine creates a StatusEngine. raidMinutes <= 0 selects the
// default raid duration.
func NewStatusEngine(store sheet.Store, notifier Notifier, raidMinutes int) *StatusEngine {
	if raidMinutes <= 0 {
		raidMinutes = DefaultRaidMinutes
	}
	return &StatusEngine{
		store:    store,
		notifier: notifier,
		durations: map[model.Status]int{
			model.StatusSiege:     SiegeMinutes,
			model.StatusRaid:      raidMinutes,
			model.StatusEmbark:    EmbarkMinutes,
			model.StatusDisembark: DisembarkMinutes,
		},
		timers: make(map[string]*model.StatusTimer),
	}
}

// LoadCheckpoint restores persisted timers at startup. Timers for
// armies that no longer exist are pruned, and the pruned table is
// written back.
func (e *StatusEngine) LoadCheckpoint(ctx context.Context) error {
	simMu.Lock()
	defer simMu.Unlock()

	armyTable, err := e.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return fmt.Errorf("read armies sheet: %w", err)
	}
	armies, _ := decodeArmies(armyTable)

	table, err := e.store.Read(ctx, model.SheetStatusTimers)
	if err != nil {
		return fmt.Errorf("read status timers sheet: %w", err)
	}
	if table == nil {
		return nil
	}

	pruned := 0
	for _, row := range table.Rows {
		t, err := model.StatusTimerFromRow(table.Header, row)
		if err != nil {
			log.Error().Err(err).Strs("row", row).Msg("Dropping unparseable status timer row")
			pruned++
			continue
		}
		if _, ok := armies[t.ArmyUID]; !ok {
			log.Info().Str("armyUid", t.ArmyUID).Msg("Dropping status timer for unknown army")
			pruned++
			continue
		}
		e.timers[t.ArmyUID] = t
	}
	log.Info().Int("restored", len(e.timers)).Int("pruned", pruned).Msg("Status timers restored")

	if pruned > 0 {
		if err := e.checkpoint(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances every timer by one minute.
func (e *StatusEngine) Tick(ctx context.Context) {
	simMu.Lock()
	defer simMu.Unlock()

	paused, err := readPauseGate(ctx, e.store)
	if err != nil {
		log.Error().Err(err).Msg("Pause gate unreadable, skipping status tick")
		return
	}
	if paused {
		log.Debug().Msg("Simulation paused, skipping status tick")
		return
	}

	table, err := e.store.Read(ctx, model.SheetArmies)
	if err != nil {
		log.Error().Err(err).Msg("Armies sheet unreadable, retaining timers for next tick")
		return
	}
	if table == nil {
		log.Warn().Msg("Armies sheet missing, retaining timers for next tick")
		return
	}
	armies, _ := decodeArmies(table)

	grid, err := loadGrid(ctx, e.store)
	if err != nil {
		grid = nil
	}
	display := func(hex string) string {
		if grid != nil {
			return grid.DisplayName(hex)
		}
		return hex
	}

	e.reconcile(armies, display)
	e.countdown(ctx, armies, display)

	if err := e.checkpoint(ctx); err != nil {
		log.Error().Err(err).Msg("Status timer checkpoint failed, retrying next tick")
	}
}

// reconcile aligns timers with the latest army statuses: interrupted
// statuses are announced and cleared, newly timed statuses start a
// fresh countdown, and timers for vanished armies are dropped.
func (e *StatusEngine) reconcile(armies map[string]*model.Army, display func(string) string) {
	for uid, t := range e.timers {
		a, ok := armies[uid]
		if !ok {
			log.Info().Str("armyUid", uid).Msg("Army removed externally, dropping status timer")
			delete(e.timers, uid)
			continue
		}
		if a.Status != t.Status {
			e.notifier.Announce(fmt.Sprintf("%s's forces stopped their %s at %s early. || %s ||",
				a.Player, strings.ToLower(string(t.Status)), display(a.CurrentHex), uid))
			log.Info().Str("armyUid", uid).Str("was", string(t.Status)).Str("now", string(a.Status)).
				Msg("Status interrupted externally")
			delete(e.timers, uid)
		}
	}

	for _, uid := range sortedArmyUIDs(armies) {
		a := armies[uid]
		if _, running := e.timers[uid]; running {
			continue
		}
		minutes, timed := e.durations[a.Status]
		if !timed {
			continue
		}
		e.timers[uid] = &model.StatusTimer{ArmyUID: uid, Status: a.Status, Minutes: minutes}
		e.notifier.Announce(fmt.Sprintf("%s's forces have started to %s at %s. It will complete in %d minutes. || %s ||",
			a.Player, strings.ToLower(string(a.Status)), display(a.CurrentHex), minutes, uid))
		e.notifier.DirectMessage(a.Player, Notice{
			Title: fmt.Sprintf("%s started", a.Status),
			Body:  fmt.Sprintf("Your forces at %s will finish in %d minutes.", display(a.CurrentHex), minutes),
			Fields: []Field{
				{Name: "Army", Value: uid},
				{Name: "Status", Value: string(a.Status)},
			},
		})
		log.Info().Str("armyUid", uid).Str("status", string(a.Status)).Int("minutes", minutes).Msg("Status timer started")
	}
}

// countdown decrements each timer and fires completions at zero.
func (e *StatusEngine) countdown(ctx context.Context, armies map[string]*model.Army, display func(string) string) {
	for _, uid := range sortedTimerUIDs(e.timers) {
		t := e.timers[uid]
		t.Minutes--
		if t.Minutes > 0 {
			continue
		}
		a := armies[uid]
		if a == nil {
			delete(e.timers, uid)
			continue
		}
		e.notifier.Announce(fmt.Sprintf("The %s at %s is complete. || %s ||",
			strings.ToLower(string(t.Status)), display(a.CurrentHex), uid))
		e.notifier.DirectMessage(a.Player, Notice{
			Title: fmt.Sprintf("%s complete", t.Status),
			Body:  fmt.Sprintf("Your forces at %s are now stationary.", display(a.CurrentHex)),
			Fields: []Field{
				{Name: "Army", Value: uid},
				{Name: "Status", Value: string(t.Status)},
			},
		})
		if err := updateArmy(ctx, e.store, uid, func(army *model.Army) {
			army.Status = model.StatusStationary
		}); err != nil {
			log.Error().Err(err).Str("armyUid", uid).Msg("Status completion army update failed")
		}
		log.Info().Str("armyUid", uid).Str("status", string(t.Status)).Msg("Status completed")
		delete(e.timers, uid)
	}
}

// checkpoint persists the live timers for crash recovery.
func (e *StatusEngine) checkpoint(ctx context.Context) error {
	rows := make([][]string, 0, len(e.timers))
	for _, uid := range sortedTimerUIDs(e.timers) {
		rows = append(rows, model.StatusTimerToRow(e.timers[uid]))
	}
	table := &sheet.Table{Header: append([]string(nil), model.StatusTimerColumns...), Rows: rows}
	if err := e.store.Write(ctx, model.SheetStatusTimers, table); err != nil {
		return fmt.Errorf("write status timers sheet: %w", err)
	}
	return nil
}

func sortedArmyUIDs(armies map[string]*model.Army) []string {
	uids := make([]string, 0, len(armies))
	for uid := range armies {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

func sortedTimerUIDs(timers map[string]*model.StatusTimer) []string {
	uids := make([]string, 0, len(timers))
	for uid := range timers {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

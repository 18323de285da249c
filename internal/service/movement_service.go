package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// ErrNoPathFound means both endpoints resolved but no traversable route
// exists. This is a user-facing outcome, not an internal failure.
var ErrNoPathFound = errors.New("no path found")

// MovementService handles movement lifecycle operations. Engine ticks
// pick up created and mutated rows on their next reconciliation.
type MovementService struct {
	store    sheet.Store
	speed    *SpeedResolver
	notifier Notifier
}

// NewMovementService creates a MovementService.
func NewMovementService(store sheet.Store, speed *SpeedResolver, notifier Notifier) *MovementService {
	return &MovementService{store: store, speed: speed, notifier: notifier}
}

// CreateMovementRequest is a parsed movement order.
type CreateMovementRequest struct {
	Player      string
	Kind        hexmap.MoveKind
	ArmyUID     string
	Start       string // hex id or holding name; defaults to the army's current hex
	Destination string // hex id or holding name
	Avoid       []string
	Intent      string
	Message     string // custom arrival message
}

// CreateMovement validates an order, computes the path, persists the
// new movement, marks the army as moving, and announces the departure.
func (s *MovementService) CreateMovement(ctx context.Context, req CreateMovementRequest) (*model.Movement, error) {
	simMu.Lock()
	defer simMu.Unlock()

	army, err := s.findArmy(ctx, req.ArmyUID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(army.Player, req.Player) {
		return nil, ErrNotOwner
	}

	grid, err := loadGrid(ctx, s.store)
	if err != nil {
		return nil, err
	}
	start := req.Start
	if start == "" {
		start = army.CurrentHex
	}

	path, values, err := grid.FindPath(req.Kind, start, req.Destination, req.Avoid)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPathFound, start, req.Destination)
	}

	archetype := Archetype(army.Troops, army.Navy, army.Siege)
	base, err := s.speed.BaseMinutes(ctx, archetype)
	if err != nil {
		return nil, err
	}

	m := &model.Movement{
		UID:           uuid.NewString(),
		Player:        req.Player,
		Kind:          req.Kind,
		ArmyUID:       army.UID,
		Commanders:    army.Commanders,
		Army:          army.Troops,
		Navy:          army.Navy,
		Siege:         army.Siege,
		Intent:        req.Intent,
		Path:          path,
		TerrainValues: values,
		CurrentHex:    path[0],
		BaseMinutes:   base,
		PaceMilli:     PaceMilli(base, values),
		Message:       strings.TrimSpace(req.Message),
	}

	if err := appendRow(ctx, s.store, model.SheetMovements, model.MovementColumns, model.MovementToRow(m)); err != nil {
		return nil, err
	}
	if err := updateArmy(ctx, s.store, army.UID, func(a *model.Army) {
		a.CurrentHex = path[0]
		a.Status = model.StatusMoving
	}); err != nil {
		return nil, err
	}

	unit := "Men"
	if m.HasNavy() {
		unit = "Ships"
	}
	s.notifier.Announce(fmt.Sprintf("%s are spotted departing %s. || %s ||",
		unit, grid.DisplayName(path[0]), m.UID))
	s.notifier.DirectMessage(m.Player, Notice{
		Title: "Movement underway",
		Body:  fmt.Sprintf("Your forces are moving from %s to %s.", grid.DisplayName(path[0]), grid.DisplayName(path[len(path)-1])),
		Fields: []Field{
			{Name: "Movement", Value: m.UID},
			{Name: "Army", Value: m.ArmyUID},
			{Name: "Path", Value: strings.Join(path, ", ")},
			{Name: "ETA", Value: fmt.Sprintf("%d minutes", ETAMinutes(m.PaceMilli, len(path)-1, 0))},
		},
	})

	log.Info().Str("movementUid", m.UID).Str("player", m.Player).
		Str("from", path[0]).Str("to", path[len(path)-1]).Int("hexes", len(path)).
		Msg("Movement created")
	return m, nil
}

// Retreat flips a movement's intent to Retreat and writes the reversed
// path. The engine applies the same reversal to its live record on the
// next reconciliation.
func (s *MovementService) Retreat(ctx context.Context, movementUID, player string, isAdmin bool) error {
	simMu.Lock()
	defer simMu.Unlock()

	return s.mutateMovement(ctx, movementUID, player, isAdmin, func(m *model.Movement) error {
		if m.Intent == model.IntentRetreat {
			return nil
		}
		if err := m.Reverse(); err != nil {
			return err
		}
		log.Info().Str("movementUid", m.UID).Str("currentHex", m.CurrentHex).Msg("Retreat ordered")
		return nil
	})
}

// Cancel removes a movement outright. The army holds its last known
// position as stationary.
func (s *MovementService) Cancel(ctx context.Context, movementUID, player string, isAdmin bool) error {
	simMu.Lock()
	defer simMu.Unlock()

	table, err := s.store.Read(ctx, model.SheetMovements)
	if err != nil {
		return fmt.Errorf("read movements sheet: %w", err)
	}
	movements, corrupt := decodeMovements(table)
	m, ok := movements[movementUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMovementNotFound, movementUID)
	}
	if !isAdmin && !strings.EqualFold(m.Player, player) {
		return ErrNotOwner
	}
	delete(movements, movementUID)
	if err := s.store.Write(ctx, model.SheetMovements, movementsTable(movements, corrupt)); err != nil {
		return fmt.Errorf("write movements sheet: %w", err)
	}
	if err := updateArmy(ctx, s.store, m.ArmyUID, func(a *model.Army) {
		a.CurrentHex = m.CurrentHex
		a.Status = model.StatusStationary
	}); err != nil && !errors.Is(err, ErrArmyNotFound) {
		return err
	}
	log.Info().Str("movementUid", movementUID).Msg("Movement cancelled")
	return nil
}

// GetMovement returns one movement. Non-admin callers only see their
// own.
func (s *MovementService) GetMovement(ctx context.Context, movementUID, player string, isAdmin bool) (*model.Movement, error) {
	table, err := s.store.Read(ctx, model.SheetMovements)
	if err != nil {
		return nil, fmt.Errorf("read movements sheet: %w", err)
	}
	movements, _ := decodeMovements(table)
	m, ok := movements[movementUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMovementNotFound, movementUID)
	}
	if !isAdmin && !strings.EqualFold(m.Player, player) {
		return nil, ErrNotOwner
	}
	return m, nil
}

// ListMovements returns all movements for admins, or the caller's own.
func (s *MovementService) ListMovements(ctx context.Context, player string, isAdmin bool) ([]*model.Movement, error) {
	table, err := s.store.Read(ctx, model.SheetMovements)
	if err != nil {
		return nil, fmt.Errorf("read movements sheet: %w", err)
	}
	movements, _ := decodeMovements(table)
	var out []*model.Movement
	for _, uid := range sortedUIDs(movements) {
		m := movements[uid]
		if isAdmin || strings.EqualFold(m.Player, player) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MovementService) mutateMovement(ctx context.Context, movementUID, player string, isAdmin bool, fn func(*model.Movement) error) error {
	table, err := s.store.Read(ctx, model.SheetMovements)
	if err != nil {
		return fmt.Errorf("read movements sheet: %w", err)
	}
	movements, corrupt := decodeMovements(table)
	m, ok := movements[movementUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMovementNotFound, movementUID)
	}
	if !isAdmin && !strings.EqualFold(m.Player, player) {
		return ErrNotOwner
	}
	if err := fn(m); err != nil {
		return err
	}
	if err := s.store.Write(ctx, model.SheetMovements, movementsTable(movements, corrupt)); err != nil {
		return fmt.Errorf("write movements sheet: %w", err)
	}
	return nil
}

func (s *MovementService) findArmy(ctx context.Context, armyUID string) (*model.Army, error) {
	table, err := s.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return nil, fmt.Errorf("read armies sheet: %w", err)
	}
	armies, _ := decodeArmies(table)
	a, ok := armies[armyUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArmyNotFound, armyUID)
	}
	return a, nil
}

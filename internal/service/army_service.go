package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
)

// ArmyService handles army lifecycle operations.
type ArmyService struct {
	store sheet.Store
}

// NewArmyService creates an ArmyService.
func NewArmyService(store sheet.Store) *ArmyService {
	return &ArmyService{store: store}
}

// CreateArmyRequest describes a new army to raise.
type CreateArmyRequest struct {
	Player     string
	CurrentHex string
	Commanders []string
	Troops     []string
	Navy       []string
	Siege      []string
}

// CreateArmy raises a new stationary army at the given hex.
func (s *ArmyService) CreateArmy(ctx context.Context, req CreateArmyRequest) (*model.Army, error) {
	simMu.Lock()
	defer simMu.Unlock()

	grid, err := loadGrid(ctx, s.store)
	if err != nil {
		return nil, err
	}
	hex, err := grid.Resolve(req.CurrentHex)
	if err != nil {
		return nil, err
	}

	a := &model.Army{
		UID:        uuid.NewString(),
		Player:     req.Player,
		CurrentHex: hex.ID,
		Commanders: model.NormalizeManifest(req.Commanders),
		Troops:     model.NormalizeManifest(req.Troops),
		Navy:       model.NormalizeManifest(req.Navy),
		Siege:      model.NormalizeManifest(req.Siege),
		Status:     model.StatusStationary,
	}
	if err := appendRow(ctx, s.store, model.SheetArmies, model.ArmyColumns, model.ArmyToRow(a)); err != nil {
		return nil, err
	}
	log.Info().Str("armyUid", a.UID).Str("player", a.Player).Str("hex", a.CurrentHex).Msg("Army created")
	return a, nil
}

// SetStatus changes an army's declared activity. The status engine
// notices the change on its next tick and starts or interrupts timers
// accordingly.
func (s *ArmyService) SetStatus(ctx context.Context, armyUID, player string, isAdmin bool, status model.Status) error {
	if _, ok := model.ParseStatus(string(status)); !ok {
		return fmt.Errorf("%w: unknown status %q", model.ErrDataCorruption, status)
	}
	simMu.Lock()
	defer simMu.Unlock()

	return s.mutateArmy(ctx, armyUID, player, isAdmin, func(a *model.Army) {
		a.Status = status
	})
}

// DeleteArmy removes an army. Admin only; the engines drop any timers
// or movements referencing it on their next reconciliation.
func (s *ArmyService) DeleteArmy(ctx context.Context, armyUID string, isAdmin bool) error {
	if !isAdmin {
		return ErrNotOwner
	}
	simMu.Lock()
	defer simMu.Unlock()

	table, err := s.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return fmt.Errorf("read armies sheet: %w", err)
	}
	armies, corrupt := decodeArmies(table)
	if _, ok := armies[armyUID]; !ok {
		return fmt.Errorf("%w: %s", ErrArmyNotFound, armyUID)
	}
	delete(armies, armyUID)
	if err := s.store.Write(ctx, model.SheetArmies, armiesTable(armies, corrupt)); err != nil {
		return fmt.Errorf("write armies sheet: %w", err)
	}
	log.Info().Str("armyUid", armyUID).Msg("Army deleted")
	return nil
}

// GetArmy returns one army. Non-admin callers only see their own.
func (s *ArmyService) GetArmy(ctx context.Context, armyUID, player string, isAdmin bool) (*model.Army, error) {
	table, err := s.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return nil, fmt.Errorf("read armies sheet: %w", err)
	}
	armies, _ := decodeArmies(table)
	a, ok := armies[armyUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArmyNotFound, armyUID)
	}
	if !isAdmin && !strings.EqualFold(a.Player, player) {
		return nil, ErrNotOwner
	}
	return a, nil
}

// ListArmies returns all armies for admins, or the caller's own.
func (s *ArmyService) ListArmies(ctx context.Context, player string, isAdmin bool) ([]*model.Army, error) {
	table, err := s.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return nil, fmt.Errorf("read armies sheet: %w", err)
	}
	armies, _ := decodeArmies(table)
	var out []*model.Army
	for _, uid := range sortedArmyUIDs(armies) {
		a := armies[uid]
		if isAdmin || strings.EqualFold(a.Player, player) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *ArmyService) mutateArmy(ctx context.Context, armyUID, player string, isAdmin bool, fn func(*model.Army)) error {
	table, err := s.store.Read(ctx, model.SheetArmies)
	if err != nil {
		return fmt.Errorf("read armies sheet: %w", err)
	}
	armies, corrupt := decodeArmies(table)
	a, ok := armies[armyUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrArmyNotFound, armyUID)
	}
	if !isAdmin && !strings.EqualFold(a.Player, player) {
		return ErrNotOwner
	}
	fn(a)
	if err := s.store.Write(ctx, model.SheetArmies, armiesTable(armies, corrupt)); err != nil {
		return fmt.Errorf("write armies sheet: %w", err)
	}
	return nil
}

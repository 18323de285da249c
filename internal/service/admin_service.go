package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/sheet"
)

// AdminService handles gamemaster operations: the global pause gate and
// sheet backups.
type AdminService struct {
	store  sheet.Store
	backup sheet.Store
}

// NewAdminService creates an AdminService. backup may be nil when no
// backup target is configured.
func NewAdminService(store, backup sheet.Store) *AdminService {
	return &AdminService{store: store, backup: backup}
}

// Pause halts the simulation. Ticks skip all work until unpaused.
func (s *AdminService) Pause(ctx context.Context) error {
	return s.setGate(ctx, "Paused")
}

// Unpause resumes the simulation.
func (s *AdminService) Unpause(ctx context.Context) error {
	return s.setGate(ctx, statusUnpaused)
}

// Paused reports the current gate state.
func (s *AdminService) Paused(ctx context.Context) (bool, error) {
	return readPauseGate(ctx, s.store)
}

func (s *AdminService) setGate(ctx context.Context, value string) error {
	simMu.Lock()
	defer simMu.Unlock()

	table := &sheet.Table{
		Header: []string{"Game Status"},
		Rows:   [][]string{{value}},
	}
	if err := s.store.Write(ctx, model.SheetStatus, table); err != nil {
		return fmt.Errorf("write status sheet: %w", err)
	}
	log.Info().Str("gameStatus", value).Msg("Pause gate updated")
	return nil
}

// backupSheets is every sheet the simulation reads or writes.
var backupSheets = []string{
	model.SheetMovements,
	model.SheetArmies,
	model.SheetStatus,
	model.SheetStatusTimers,
	model.SheetSeasons,
	model.SheetMap,
}

// Backup copies every known sheet to the backup store. Absent sheets
// are skipped.
func (s *AdminService) Backup(ctx context.Context) error {
	if s.backup == nil {
		return fmt.Errorf("no backup store configured")
	}
	simMu.Lock()
	defer simMu.Unlock()

	copied := 0
	for _, name := range backupSheets {
		table, err := s.store.Read(ctx, name)
		if err != nil {
			return fmt.Errorf("backup read %s: %w", name, err)
		}
		if table == nil {
			continue
		}
		if err := s.backup.Write(ctx, name, table); err != nil {
			return fmt.Errorf("backup write %s: %w", name, err)
		}
		copied++
	}
	log.Info().Int("sheets", copied).Msg("Backup complete")
	return nil
}

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/freeeve/hexmarch/internal/middleware"
	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/service"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// MovementHandler handles movement endpoints.
type MovementHandler struct {
	movementSvc *service.MovementService
}

// NewMovementHandler creates a MovementHandler.
func NewMovementHandler(movementSvc *service.MovementService) *MovementHandler {
	return &MovementHandler{movementSvc: movementSvc}
}

// movementResponse is the JSON shape of a movement.
type movementResponse struct {
	UID           string    `json:"uid"`
	Player        string    `json:"player"`
	Kind          string    `json:"kind"`
	ArmyUID       string    `json:"army_uid"`
	Commanders    []string  `json:"commanders,omitempty"`
	Army          []string  `json:"army,omitempty"`
	Navy          []string  `json:"navy,omitempty"`
	Siege         []string  `json:"siege,omitempty"`
	Intent        string    `json:"intent"`
	Path          []string  `json:"path"`
	TerrainValues []float64 `json:"terrain_values"`
	CurrentHex    string    `json:"current_hex"`
	BaseMinutes   int       `json:"base_minutes_per_hex"`
	EtaMinutes    int       `json:"eta_minutes"`
	Message       string    `json:"message,omitempty"`
}

func toMovementResponse(m *model.Movement) movementResponse {
	remaining := 0
	if idx, err := m.CurrentIndex(); err == nil {
		remaining = len(m.Path) - 1 - idx
	}
	return movementResponse{
		UID:           m.UID,
		Player:        m.Player,
		Kind:          m.Kind.String(),
		ArmyUID:       m.ArmyUID,
		Commanders:    m.Commanders,
		Army:          m.Army,
		Navy:          m.Navy,
		Siege:         m.Siege,
		Intent:        m.Intent,
		Path:          m.Path,
		TerrainValues: m.TerrainValues,
		CurrentHex:    m.CurrentHex,
		BaseMinutes:   m.BaseMinutes,
		EtaMinutes:    service.ETAMinutes(m.PaceMilli, remaining, m.ElapsedMilli),
		Message:       m.Message,
	}
}

type createMovementRequest struct {
	Kind        string   `json:"kind"` // "army" or "fleet"
	ArmyUID     string   `json:"army_uid"`
	Start       string   `json:"start,omitempty"`
	Destination string   `json:"destination"`
	Avoid       []string `json:"avoid,omitempty"`
	Intent      string   `json:"intent,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// CreateMovement handles POST /api/v1/movements
func (h *MovementHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ArmyUID == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "army_uid and destination are required")
		return
	}
	kind := hexmap.MoveArmy
	if strings.EqualFold(req.Kind, "fleet") {
		kind = hexmap.MoveFleet
	}

	m, err := h.movementSvc.CreateMovement(r.Context(), service.CreateMovementRequest{
		Player:      middleware.PlayerIDFromContext(r.Context()),
		Kind:        kind,
		ArmyUID:     req.ArmyUID,
		Start:       req.Start,
		Destination: req.Destination,
		Avoid:       req.Avoid,
		Intent:      req.Intent,
		Message:     req.Message,
	})
	if err != nil {
		writeError(w, movementErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toMovementResponse(m))
}

// ListMovements handles GET /api/v1/movements
func (h *MovementHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.movementSvc.ListMovements(r.Context(),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, movementErrStatus(err), err.Error())
		return
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetMovement handles GET /api/v1/movements/{id}
func (h *MovementHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	m, err := h.movementSvc.GetMovement(r.Context(), r.PathValue("id"),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, movementErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toMovementResponse(m))
}

// Retreat handles POST /api/v1/movements/{id}/retreat
func (h *MovementHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	err := h.movementSvc.Retreat(r.Context(), r.PathValue("id"),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, movementErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retreating"})
}

// Cancel handles DELETE /api/v1/movements/{id}
func (h *MovementHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	err := h.movementSvc.Cancel(r.Context(), r.PathValue("id"),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, movementErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func movementErrStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMovementNotFound), errors.Is(err, service.ErrArmyNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNoPathFound),
		errors.Is(err, hexmap.ErrUnresolvableLocation),
		errors.Is(err, hexmap.ErrMalformedHexID):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/hexmarch/internal/middleware"
	"github.com/freeeve/hexmarch/internal/model"
	"github.com/freeeve/hexmarch/internal/service"
	"github.com/freeeve/hexmarch/pkg/hexmap"
)

// ArmyHandler handles army endpoints.
type ArmyHandler struct {
	armySvc *service.ArmyService
}

// NewArmyHandler creates an ArmyHandler.
func NewArmyHandler(armySvc *service.ArmyService) *ArmyHandler {
	return &ArmyHandler{armySvc: armySvc}
}

// armyResponse is the JSON shape of an army.
type armyResponse struct {
	UID        string   `json:"uid"`
	Player     string   `json:"player"`
	CurrentHex string   `json:"current_hex"`
	Commanders []string `json:"commanders,omitempty"`
	Troops     []string `json:"troops,omitempty"`
	Navy       []string `json:"navy,omitempty"`
	Siege      []string `json:"siege,omitempty"`
	Status     string   `json:"status"`
}

func toArmyResponse(a *model.Army) armyResponse {
	return armyResponse{
		UID:        a.UID,
		Player:     a.Player,
		CurrentHex: a.CurrentHex,
		Commanders: a.Commanders,
		Troops:     a.Troops,
		Navy:       a.Navy,
		Siege:      a.Siege,
		Status:     string(a.Status),
	}
}

type createArmyRequest struct {
	CurrentHex string   `json:"current_hex"`
	Commanders []string `json:"commanders,omitempty"`
	Troops     []string `json:"troops,omitempty"`
	Navy       []string `json:"navy,omitempty"`
	Siege      []string `json:"siege,omitempty"`
}

// CreateArmy handles POST /api/v1/armies
func (h *ArmyHandler) CreateArmy(w http.ResponseWriter, r *http.Request) {
	var req createArmyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentHex == "" {
		writeError(w, http.StatusBadRequest, "current_hex is required")
		return
	}

	a, err := h.armySvc.CreateArmy(r.Context(), service.CreateArmyRequest{
		Player:     middleware.PlayerIDFromContext(r.Context()),
		CurrentHex: req.CurrentHex,
		Commanders: req.Commanders,
		Troops:     req.Troops,
		Navy:       req.Navy,
		Siege:      req.Siege,
	})
	if err != nil {
		writeError(w, armyErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toArmyResponse(a))
}

// ListArmies handles GET /api/v1/armies
func (h *ArmyHandler) ListArmies(w http.ResponseWriter, r *http.Request) {
	armies, err := h.armySvc.ListArmies(r.Context(),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, armyErrStatus(err), err.Error())
		return
	}
	out := make([]armyResponse, 0, len(armies))
	for _, a := range armies {
		out = append(out, toArmyResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetArmy handles GET /api/v1/armies/{id}
func (h *ArmyHandler) GetArmy(w http.ResponseWriter, r *http.Request) {
	a, err := h.armySvc.GetArmy(r.Context(), r.PathValue("id"),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, armyErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toArmyResponse(a))
}

// SetStatus handles PATCH /api/v1/armies/{id}/status
func (h *ArmyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown status")
		return
	}

	err := h.armySvc.SetStatus(r.Context(), r.PathValue("id"),
		middleware.PlayerIDFromContext(r.Context()), middleware.IsAdminFromContext(r.Context()), status)
	if err != nil {
		writeError(w, armyErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// DeleteArmy handles DELETE /api/v1/armies/{id}
func (h *ArmyHandler) DeleteArmy(w http.ResponseWriter, r *http.Request) {
	err := h.armySvc.DeleteArmy(r.Context(), r.PathValue("id"), middleware.IsAdminFromContext(r.Context()))
	if err != nil {
		writeError(w, armyErrStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func armyErrStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrArmyNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, hexmap.ErrUnresolvableLocation),
		errors.Is(err, hexmap.ErrMalformedHexID),
		errors.Is(err, model.ErrDataCorruption):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, logger: logger}
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", ErrorCode: "validation"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", ErrorCode: "validation"})
		return
	}

	hh, err := h.households.Create(req.Name)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hh)
}

func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	households, err := h.households.List()
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeError(w, err)
		return
	}
	if households == nil {
		households = []model.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	hh, err := h.households.GetByID(r.PathValue("household_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

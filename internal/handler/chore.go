package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mross/choreboard/internal/chore"
	"github.com/mross/choreboard/internal/member"
	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/recurrence"
	"github.com/mross/choreboard/internal/snapshot"
	"github.com/mross/choreboard/internal/store"
)

type ChoreHandler struct {
	chores   *store.ChoreStore
	members  *store.MemberStore
	machine  *chore.Machine
	resolver *member.Resolver
	bus      *snapshot.Bus
	logger   *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, ms *store.MemberStore, machine *chore.Machine,
	resolver *member.Resolver, bus *snapshot.Bus, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		chores:   cs,
		members:  ms,
		machine:  machine,
		resolver: resolver,
		bus:      bus,
		logger:   logger,
	}
}

// publish pushes a fresh snapshot of the household's chores to every
// subscriber. Called after each accepted mutation.
func (h *ChoreHandler) publish(r *http.Request, householdID string) {
	chores, err := h.chores.ListByHousehold(r.Context(), householdID)
	if err != nil {
		h.logger.Error("publish snapshot", "household_id", householdID, "error", err)
		return
	}
	h.bus.Publish(householdID, chores)
}

type choreRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	IntervalType  string  `json:"interval_type"`
	IntervalValue int     `json:"interval_value"`
	AssignedTo    *string `json:"assigned_to"`
}

// choreView is a chore annotated for display: derived status and the
// assignee's profile, so the client renders without further lookups.
type choreView struct {
	model.Chore
	Status   chore.Status   `json:"status"`
	Assignee member.Profile `json:"assignee"`
}

func (h *ChoreHandler) view(c model.Chore, now time.Time) choreView {
	profile, err := h.resolver.Resolve(c.HouseholdID, c.AssignedTo)
	if err != nil {
		h.logger.Error("resolve assignee", "chore_id", c.ID, "error", err)
		profile = member.Anyone
	}
	return choreView{Chore: c, Status: chore.StatusFor(c, now), Assignee: profile}
}

// checkAssignee verifies an assignee id refers to a member of the household.
// Returns false after writing the response.
func (h *ChoreHandler) checkAssignee(w http.ResponseWriter, householdID string, assignedTo *string) bool {
	if assignedTo == nil {
		return true
	}
	m, err := h.members.GetByID(*assignedTo)
	if err != nil {
		writeError(w, err)
		return false
	}
	if m.HouseholdID != householdID {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "assignee is not a member of this household", ErrorCode: "validation"})
		return false
	}
	return true
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", ErrorCode: "validation"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", ErrorCode: "validation"})
		return
	}

	intervalType, err := recurrence.Parse(req.IntervalType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorCode: "validation"})
		return
	}

	if !h.checkAssignee(w, householdID, req.AssignedTo) {
		return
	}

	c, err := chore.NewChore(chore.NewChoreInput{
		HouseholdID:   householdID,
		Name:          req.Name,
		Description:   req.Description,
		IntervalType:  intervalType,
		IntervalValue: req.IntervalValue,
		AssignedTo:    req.AssignedTo,
	}, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.chores.Create(r.Context(), c); err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, err)
		return
	}

	h.publish(r, householdID)
	writeJSON(w, http.StatusCreated, h.view(*c, time.Now()))
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")

	chores, err := h.chores.ListByHousehold(r.Context(), householdID)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, err)
		return
	}

	now := time.Now()
	sorted := chore.SortForDisplay(chores, now)
	views := make([]choreView, 0, len(sorted))
	for _, c := range sorted {
		views = append(views, h.view(c, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.chores.GetChore(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*c, time.Now()))
}

type updateChoreRequest struct {
	choreRequest
	ExpectedVersion int64 `json:"expected_version"`
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")
	id := r.PathValue("id")

	var req updateChoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", ErrorCode: "validation"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", ErrorCode: "validation"})
		return
	}

	intervalType, err := recurrence.Parse(req.IntervalType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorCode: "validation"})
		return
	}
	value := req.IntervalValue
	if !intervalType.UsesValue() {
		value = 1
	}
	if value < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "interval value must be at least 1", ErrorCode: "validation"})
		return
	}

	if !h.checkAssignee(w, householdID, req.AssignedTo) {
		return
	}

	c, err := h.chores.UpdateDetails(r.Context(), id, req.Name, req.Description,
		intervalType, value, req.AssignedTo, req.ExpectedVersion)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, householdID)
	writeJSON(w, http.StatusOK, h.view(*c, time.Now()))
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")

	if err := h.chores.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, householdID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type transitionRequest struct {
	UserID          string `json:"user_id"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")
	id := r.PathValue("id")

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", ErrorCode: "validation"})
		return
	}

	c, err := h.machine.Complete(r.Context(), id, req.UserID, req.ExpectedVersion)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, householdID)
	writeJSON(w, http.StatusOK, h.view(*c, time.Now()))
}

func (h *ChoreHandler) Undo(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")
	id := r.PathValue("id")

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", ErrorCode: "validation"})
		return
	}

	c, err := h.machine.Undo(r.Context(), id, req.UserID, req.ExpectedVersion)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, householdID)
	writeJSON(w, http.StatusOK, h.view(*c, time.Now()))
}

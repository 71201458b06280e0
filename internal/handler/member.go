package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mross/choreboard/internal/member"
	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/store"
)

type MemberHandler struct {
	members  *store.MemberStore
	resolver *member.Resolver
	logger   *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, resolver *member.Resolver, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: ms, resolver: resolver, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListByHousehold(r.PathValue("household_id"))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := r.PathValue("household_id")

	var req struct {
		UserID      string `json:"user_id"`
		Name        string `json:"name"`
		Role        string `json:"role"`
		Color       string `json:"color"`
		AvatarEmoji string `json:"avatar_emoji"`
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
	if req.Role == "" {
		req.Role = "member"
	}

	m, err := h.members.Create(householdID, req.UserID, req.Name, req.Role, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, err)
		return
	}

	h.resolver.Invalidate(householdID)
	writeJSON(w, http.StatusCreated, m)
}

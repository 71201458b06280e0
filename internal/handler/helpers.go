package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mross/choreboard/internal/chore"
	"github.com/mross/choreboard/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// writeError maps the error taxonomy to status codes and stable error codes,
// so clients can tell "refresh and retry" (conflict) from "this action no
// longer makes sense" (not_found, not_undoable) from "fix your input"
// (validation).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chore.ErrInvalidInterval):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorCode: "validation"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), ErrorCode: "not_found"})
	case errors.Is(err, chore.ErrNotUndoable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), ErrorCode: "not_undoable"})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "chore was changed by someone else, refresh and retry", ErrorCode: "conflict"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", ErrorCode: "internal"})
	}
}

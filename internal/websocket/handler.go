package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/mross/choreboard/internal/snapshot"
	"github.com/mross/choreboard/internal/store"
)

// Handler upgrades connections and streams chore-list snapshots for the
// requested household. Each connection gets its own bus subscription, seeded
// with the current state so the client does not wait for the next mutation.
func Handler(bus *snapshot.Bus, chores *store.ChoreStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.URL.Query().Get("household_id")
		if householdID == "" {
			http.Error(w, "household_id is required", http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		initial, err := chores.ListByHousehold(r.Context(), householdID)
		if err != nil {
			logger.Error("websocket initial snapshot", "household_id", householdID, "error", err)
			conn.Close(ws.StatusInternalError, "snapshot load failed")
			return
		}

		sub := bus.Subscribe(householdID)
		client := NewClient(conn, sub, householdID)
		client.Run(r.Context(), initial)
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"

	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/snapshot"
)

const pingInterval = 30 * time.Second

// Frame is one message on the wire: a complete replacement snapshot of the
// household's chore list.
type Frame struct {
	Type        string        `json:"type"`
	HouseholdID string        `json:"household_id"`
	Chores      []model.Chore `json:"chores"`
}

// Client streams a household's chore snapshots over one WebSocket connection.
type Client struct {
	conn        *ws.Conn
	sub         *snapshot.Subscription
	householdID string
}

// NewClient wraps an accepted connection with its snapshot subscription.
func NewClient(conn *ws.Conn, sub *snapshot.Subscription, householdID string) *Client {
	return &Client{conn: conn, sub: sub, householdID: householdID}
}

// Run pumps snapshots to the connection until the peer disconnects or ctx is
// done. It cancels the subscription before returning, so no snapshot is
// delivered after the connection is gone.
func (c *Client) Run(ctx context.Context, initial []model.Chore) {
	defer c.sub.Cancel()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The read side only detects disconnects; incoming payloads are ignored.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	if err := c.write(ctx, initial); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case chores, ok := <-c.sub.Snapshots():
			if !ok {
				return
			}
			if err := c.write(ctx, chores); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, chores []model.Chore) error {
	if chores == nil {
		chores = []model.Chore{}
	}
	data, err := json.Marshal(Frame{
		Type:        "chores_snapshot",
		HouseholdID: c.householdID,
		Chores:      chores,
	})
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, ws.MessageText, data)
}

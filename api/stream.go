package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/lasttodo/lasttodo/db"
	"github.com/lasttodo/lasttodo/log"
)

// snapshotEvent is the wire form of a collection snapshot
type snapshotEvent struct {
	Type      string    `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Items     []db.Todo `json:"items"`
}

func newSnapshotEvent(items []db.Todo) snapshotEvent {
	if items == nil {
		items = []db.Todo{}
	}
	return snapshotEvent{
		Type:      "snapshot",
		Timestamp: time.Now().UnixMilli(),
		Items:     items,
	}
}

// StreamTodos handles GET /api/todos/stream (SSE).
// Sends the current snapshot immediately, then the full collection on every
// change, with a heartbeat comment to keep proxies from closing the stream.
func (h *Handlers) StreamTodos(c *gin.Context) {
	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	snapshots, stop := coord.Watch()
	defer stop()

	// Send the current snapshot so the client doesn't wait for a change
	sendSSEEvent(c, newSnapshotEvent(coord.Items()))
	c.Writer.Flush()

	log.Debug().Msg("client connected to todo stream")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case items, ok := <-snapshots:
			if !ok {
				return
			}
			sendSSEEvent(c, newSnapshotEvent(items))
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			log.Debug().Msg("client disconnected from todo stream")
			return
		}
	}
}

func sendSSEEvent(c *gin.Context, event snapshotEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}

// StreamTodosWS handles GET /api/todos/ws (WebSocket).
// Same snapshot stream as SSE for clients that prefer a socket.
func (h *Handlers) StreamTodosWS(c *gin.Context) {
	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	// Mark hijacked before the upgrade so middleware stays off the connection
	log.MarkHijacked(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// CloseRead discards incoming frames and cancels the context on close
	ctx := conn.CloseRead(c.Request.Context())

	snapshots, stop := coord.Watch()
	defer stop()

	if err := writeSnapshot(ctx, conn, newSnapshotEvent(coord.Items())); err != nil {
		return
	}

	for {
		select {
		case items, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeSnapshot(ctx, conn, newSnapshotEvent(items)); err != nil {
				closeStatus := websocket.CloseStatus(err)
				if closeStatus != websocket.StatusGoingAway &&
					closeStatus != websocket.StatusNormalClosure &&
					ctx.Err() == nil {
					log.Debug().Err(err).Msg("websocket write failed")
				}
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, event snapshotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}

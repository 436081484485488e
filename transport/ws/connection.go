package ws

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lingokit/core"
	"lingokit/events/turn"
	"lingokit/orchestrator"
)

// Handler upgrades conversation requests and drives one orchestrator per
// live connection. The dependency bundle is shared; history and feedback
// state live in the per-connection orchestrator.
type Handler struct {
	Deps   orchestrator.Dependencies
	Logger *core.Logger

	upgrader websocket.Upgrader
}

func NewHandler(deps orchestrator.Dependencies, logger *core.Logger) *Handler {
	return &Handler{
		Deps:   deps,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profileID, err := strconv.ParseInt(r.PathValue("language_profile_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid language profile id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.With(map[string]any{"error": err}).Error("websocket upgrade failed")
		return
	}

	c := &connection{
		conn:      conn,
		orch:      orchestrator.NewTurnOrchestrator(h.Deps),
		renderer:  NewRenderer(),
		logger:    h.Logger.With(map[string]any{"component": "ws", "remote": r.RemoteAddr}),
		profileID: profileID,
	}
	c.run(r.Context())
}

type connection struct {
	conn      *websocket.Conn
	orch      *orchestrator.TurnOrchestrator
	renderer  *Renderer
	logger    *core.Logger
	profileID int64

	writeMu sync.Mutex
}

func (c *connection) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.conn.Close()

	go c.pumpEvents(ctx)
	c.readLoop(ctx)
}

// readLoop consumes inbound frames and runs turns serially; one turn at a
// time per connection. A read error is a disconnect, a normal terminal
// condition.
func (c *connection) readLoop(ctx context.Context) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.With(map[string]any{"error": err}).Debug("connection closed")
			return
		}

		turnID := uuid.New().String()
		req, err := decodeTurnRequest(c.profileID, raw)
		if err != nil {
			c.logger.With(map[string]any{"error": err}).Warn("rejected inbound message")
			c.writeFailure(turnID, "could not read that message")
			continue
		}

		c.writeTurnStart(turnID, req.Text)
		if err := c.orch.RunTurn(ctx, turnID, req); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.With(map[string]any{"turn_id": turnID, "error": err}).Error("turn aborted")
		}
	}
}

// pumpEvents relays orchestrator events to the client: audio chunks as
// binary frames, everything else as HTML fragments.
func (c *connection) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case packet := <-c.orch.Events():
			if audioEvent, ok := packet.Event.(*turn.AudioChunkEvent); ok {
				if audioEvent.Chunk.Data != nil {
					c.writeBinary(*audioEvent.Chunk.Data)
				}
				continue
			}
			fragment, err := c.renderer.RenderEvent(packet)
			if err != nil {
				c.logger.With(map[string]any{"event": packet.Event.GetId(), "error": err}).Error("unrenderable event")
				continue
			}
			c.writeText(fragment)
		}
	}
}

func (c *connection) writeTurnStart(turnID, userText string) {
	fragment, err := c.renderer.RenderTurnStart(turnID, userText)
	if err != nil {
		c.logger.With(map[string]any{"error": err}).Error("render turn start failed")
		return
	}
	c.writeText(fragment)
}

func (c *connection) writeFailure(turnID, reason string) {
	fragment, err := c.renderer.RenderEvent(core.NewEventPacket(&turn.FailedEvent{Reason: reason}, turnID, "Transport"))
	if err != nil {
		return
	}
	c.writeText(fragment)
}

func (c *connection) writeText(payload []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.With(map[string]any{"error": err}).Debug("write failed")
	}
}

func (c *connection) writeBinary(payload []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		c.logger.With(map[string]any{"error": err}).Debug("write failed")
	}
}

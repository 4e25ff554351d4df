package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chatly-service/internal/auth"
	"chatly-service/internal/observability"
	"chatly-service/internal/presence"
)

// Handler upgrades websocket connections and runs the join protocol.
type Handler struct {
	hub      *Hub
	verifier *auth.Verifier
	tracker  presence.Tracker
}

// NewHandler constructs a websocket Handler.
func NewHandler(hub *Hub, verifier *auth.Verifier, tracker presence.Tracker) *Handler {
	return &Handler{hub: hub, verifier: verifier, tracker: tracker}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// joinFrame is the only inbound frame the protocol understands. A connection
// holds at most one room membership; the named user must be the
// authenticated one.
type joinFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// Handle upgrades the connection and reads join frames until the client
// goes away.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chatly-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.ClientMetaFrom(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	go h.readLoop(ctx, conn, info)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo) {
	joined := false
	var closeReason string
	defer func() {
		if joined {
			h.hub.Leave(info.UserID, conn)
			_ = h.tracker.Disconnected(context.Background(), info.UserID, info.ConnID)
			observability.DecWSActive("room")
			observability.IncWSEvent("room", "ws_disconnect")
			h.publishLifecycle(ctx, info, "ws_disconnect", closeReason)
		}
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("room", "ws_error")
				h.publishLifecycle(ctx, info, "ws_error", closeReason)
			}
			return
		}

		var frame joinFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Type != "join" {
			continue
		}
		if frame.UserID != info.UserID {
			// Joining someone else's room is never allowed.
			continue
		}
		if joined {
			continue
		}

		h.hub.Join(info.UserID, conn, info)
		joined = true
		_ = h.tracker.Connected(ctx, info.UserID, info.ConnID)
		observability.IncWSActive("room")
		observability.IncWSEvent("room", "ws_connect")
		h.publishLifecycle(ctx, info, "ws_connect", "")
	}
}

func (h *Handler) publishLifecycle(ctx context.Context, info ConnInfo, event, reason string) {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"room":        info.UserID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": durationMS,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.TraceHeaders(info.RequestID, info.TraceID))
}

func (h *Handler) validateToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.verifier.ValidateToken(parts[1])
	}
	return "", fmt.Errorf("invalid token")
}

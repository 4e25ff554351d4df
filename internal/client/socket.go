package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"chatly-service/internal/models"
)

// Socket is the live event stream for a session.
type Socket struct {
	conn *websocket.Conn
}

// DialSocket connects to the service's websocket endpoint with the bearer
// token in the handshake headers.
func DialSocket(wsURL, token string) (*Socket, error) {
	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect websocket: %w, status: %s", err, resp.Status)
		}
		return nil, fmt.Errorf("connect websocket: %w", err)
	}
	return &Socket{conn: conn}, nil
}

// Join places this connection in the user's room. Safe to send on every
// (re)connect; the server treats it as idempotent.
func (s *Socket) Join(userID string) error {
	return s.conn.WriteJSON(map[string]string{"type": "join", "user_id": userID})
}

// Listen drains inbound events and applies them to the session, one at a
// time in arrival order, until the connection drops. Run it on a single
// goroutine; the ordering is what keeps indicator updates race free.
func (s *Socket) Listen(ctx context.Context, session *Session, onUpdate func()) error {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}

		var envelope struct {
			Name string          `json:"event"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			continue
		}

		switch envelope.Name {
		case models.EventReceiveMessage:
			var ev models.MessageEvent
			if json.Unmarshal(envelope.Data, &ev) == nil {
				session.OnMessage(ctx, ev)
			}
		case models.EventNewRequest:
			var ev models.NewRequestEvent
			if json.Unmarshal(envelope.Data, &ev) == nil {
				session.OnNewRequest(ctx, ev)
			}
		case models.EventRequestAccepted:
			var ev models.RequestAcceptedEvent
			if json.Unmarshal(envelope.Data, &ev) == nil {
				session.OnRequestAccepted(ctx, ev)
			}
		case models.EventRequestRejected:
			var ev models.RequestRejectedEvent
			if json.Unmarshal(envelope.Data, &ev) == nil {
				session.OnRequestRejected(ctx, ev)
			}
		case models.EventChatReset:
			var ev models.ChatResetEvent
			if json.Unmarshal(envelope.Data, &ev) == nil {
				session.OnChatReset(ctx, ev)
			}
		}

		if onUpdate != nil {
			onUpdate()
		}
	}
}

// Close closes the websocket connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}

package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ConnInfo travels with a connection for the lifetime of its room
// membership; lifecycle events report it.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

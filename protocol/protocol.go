package protocol

import (
	"encoding/json"

	"arcade-arena/game"
)

// Client → server tags.
const (
	MsgInit  = "init"
	MsgStart = "start"
	MsgInput = "input"
	MsgPause = "pause"
	MsgClose = "close"
)

// Server → client tags.
const (
	MsgConnection = "connection"
	MsgReady      = "ready"
	MsgSnapshot   = "snapshot"
	MsgResult     = "result"
)

const (
	SimTickHz   = game.SimTickHz
	BroadcastHz = 20

	// ServeCountdownSec is the delay between both sides signalling ready
	// and the ball actually being served.
	ServeCountdownSec = 3
)

// Envelope is the single framing for every message on the wire.
type Envelope struct {
	T string          `json:"type"`
	P json.RawMessage `json:"payload,omitempty"`
}

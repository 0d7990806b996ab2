package ws

import "encoding/json"

// MessageType represents the type of a WebSocket message.
type MessageType string

const (
	// Client -> server
	MessageTypeInput  MessageType = "input"
	MessageTypePing   MessageType = "ping"
	MessageTypeNav    MessageType = "nav"
	MessageTypeResize MessageType = "resize"

	// Server -> client
	MessageTypeReady  MessageType = "ready"
	MessageTypeOutput MessageType = "output"
	MessageTypeExit   MessageType = "exit"
	MessageTypeFrame  MessageType = "frame"
	MessageTypePong   MessageType = "pong"
	MessageTypeError  MessageType = "error"
)

// Message is the wire format shared by the terminal and browser protocols.
// Fields irrelevant to a given message type are omitted.
type Message struct {
	Type MessageType `json:"type"`

	// Terminal protocol
	TerminalID string  `json:"terminalId,omitempty"`
	Status     string  `json:"status,omitempty"`
	Data       string  `json:"data,omitempty"`
	Code       *int    `json:"code,omitempty"`
	Signal     *string `json:"signal,omitempty"`

	// Browser protocol
	SessionID string      `json:"sessionId,omitempty"`
	URL       string      `json:"url,omitempty"`
	Width     int         `json:"width,omitempty"`
	Height    int         `json:"height,omitempty"`
	Format    string      `json:"format,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Event     *InputEvent `json:"event,omitempty"`

	Error string `json:"error,omitempty"`
}

// InputEvent is a normalized pointer/wheel/keyboard/text event forwarded to
// a browser session.
type InputEvent struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button int     `json:"button,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Key    string  `json:"key,omitempty"`
	Action string  `json:"action,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Input event kinds.
const (
	InputKindMouseMove = "mousemove"
	InputKindMouseDown = "mousedown"
	InputKindMouseUp   = "mouseup"
	InputKindWheel     = "wheel"
	InputKindKey       = "key"
	InputKindText      = "text"
)

// Encode marshals a message for transport.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

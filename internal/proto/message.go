package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeHello = "hello"
	InboundTypeChat  = "chat"

	OutboundTypeAssign  = "assign"
	OutboundTypeHistory = "history"
	OutboundTypeMessage = "message"
	OutboundTypeBanned  = "banned"
	OutboundTypeReload  = "reload"
	OutboundTypeStatus  = "status"
	OutboundTypeError   = "error"
)

// HelloData declares the session's display name and optional prior
// credential.
type HelloData struct {
	Name       string `json:"name"`
	Credential string `json:"credential,omitempty"`
}

// ChatData is raw chat text from the client, possibly a slash command.
type ChatData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// AssignData carries a freshly minted credential for the client to persist.
type AssignData struct {
	Credential string `json:"credential"`
}

// MessageData is a single chat message or system notice.
type MessageData struct {
	Name     string `json:"name"`
	Identity string `json:"identity,omitempty"`
	Text     string `json:"text"`
	System   bool   `json:"system,omitempty"`
	TS       int64  `json:"ts"`
}

// HistoryData replays recent messages to a newly declared session.
type HistoryData struct {
	Messages []MessageData `json:"messages"`
}

// BannedData tells the client its identity is banned.
type BannedData struct {
	Reason string `json:"reason"`
}

// StatusData carries a server status string.
type StatusData struct {
	Status string `json:"status"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventAssign delivers a freshly minted identity credential for the
	// client to persist. Sent only when hello carried no credential.
	EventAssign EventKind = iota
	// EventHistory delivers recent messages to a newly declared session.
	EventHistory
	// EventMessage carries a chat message or system notice.
	EventMessage
	// EventBanned tells the session its identity is banned.
	EventBanned
	// EventReload asks all clients to reload themselves.
	EventReload
	// EventStatus broadcasts a server status string.
	EventStatus
	// EventError notifies the session about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	Credential string
	Message    Message
	Messages   []Message // For EventHistory
	Reason     string    // For EventBanned
	Status     string    // For EventStatus
	Error      *CoreError
}

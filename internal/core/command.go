package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello declares the session's display name and, optionally, a
	// prior identity credential.
	CommandHello CommandKind = iota
	// CommandChat delivers raw chat text, which may be a slash command.
	CommandChat
)

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	Name       string
	Credential string
	Text       string
}

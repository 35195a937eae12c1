package core

// Client is a live connection as seen by the core layer. Identity stays empty
// until the session declares itself with a hello command; before that the hub
// silently drops its chat text.
type Client struct {
	ConnID   string
	Identity string
	Name     string
	Commands chan *Command
	Events   chan *Event

	// done is closed by the hub on unregister so the command pump exits.
	done chan struct{}
}

// NewClient constructs a client with initialized channels. connID identifies
// the connection, not the user; identity is bound later by the hub.
func NewClient(connID string) *Client {
	return &Client{
		ConnID:   connID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

// declared reports whether the session has completed the hello exchange.
func (c *Client) declared() bool {
	return c.Identity != ""
}

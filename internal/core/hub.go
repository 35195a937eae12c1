package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/metrics"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

// muteSweepInterval is how often stale mute entries are compacted. The sweep
// is memory hygiene only; IsMuted honors expiry on its own.
const muteSweepInterval = 60 * time.Second

// Hub owns all mutable chat state: live sessions, history, bans, mutes and
// the banned-word list. Every connection event and the mute sweep run as
// discrete tasks on the single Run goroutine, so no handler for one
// connection ever interleaves with another and no locks are needed.
type Hub struct {
	log      *zerolog.Logger
	resolver *IdentityResolver
	mod      *Moderation
	filter   *WordFilter
	history  *HistoryLog
	admins   map[string]struct{}
	commands map[string]commandSpec

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundCommand
	historyReq chan chan []Message
	stopped    chan struct{}

	clients map[*Client]struct{}

	ctx        context.Context
	sweepEvery time.Duration
}

type inboundCommand struct {
	client *Client
	cmd    *Command
}

// NewHub constructs the hub, loading durable state from st. A nil st keeps
// everything in memory. admins is the fixed identity allow-list for
// admin-only commands.
func NewHub(ctx context.Context, st store.Store, admins []string, logger *zerolog.Logger) (*Hub, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	var (
		banStore      store.BanStore
		historyStore  store.HistoryStore
		wordStore     store.WordStore
		identityStore store.IdentityStore
	)
	if st != nil {
		banStore = st
		historyStore = st
		wordStore = st
		identityStore = st
	}

	mod, err := NewModeration(ctx, banStore)
	if err != nil {
		return nil, fmt.Errorf("init moderation: %w", err)
	}
	history, err := NewHistoryLog(ctx, historyStore)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	filter, err := NewWordFilter(ctx, wordStore)
	if err != nil {
		return nil, fmt.Errorf("init word filter: %w", err)
	}

	adminSet := make(map[string]struct{}, len(admins))
	for _, id := range admins {
		adminSet[id] = struct{}{}
	}

	h := &Hub{
		log:        logger,
		resolver:   NewIdentityResolver(identityStore),
		mod:        mod,
		filter:     filter,
		history:    history,
		admins:     adminSet,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundCommand, 64),
		historyReq: make(chan chan []Message),
		stopped:    make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		ctx:        context.Background(),
		sweepEvery: muteSweepInterval,
	}
	h.commands = commandTable()
	return h, nil
}

// Run processes hub events until ctx is cancelled. It must run in exactly
// one goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	defer close(h.stopped)

	ticker := time.NewTicker(h.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			h.dropClient(client)
		case in := <-h.inbound:
			h.handleCommand(in.client, in.cmd)
		case reply := <-h.historyReq:
			reply <- h.history.Recent()
		case <-ticker.C:
			if n := h.mod.Sweep(); n > 0 {
				h.log.Debug().Int("expired", n).Msg("swept stale mutes")
			}
		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient attaches a connection to the hub and starts pumping its
// commands into the hub loop.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		return
	}

	go func() {
		for {
			select {
			case cmd := <-c.Commands:
				select {
				case h.inbound <- inboundCommand{client: c, cmd: cmd}:
				case <-c.done:
					return
				case <-h.stopped:
					return
				}
			case <-c.done:
				return
			case <-h.stopped:
				return
			}
		}
	}()
}

// UnregisterClient detaches a connection. Detaching an already dropped
// client is a no-op.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// HistorySnapshot returns the retained history from outside the hub
// goroutine. Returns nil once the hub has stopped.
func (h *Hub) HistorySnapshot(ctx context.Context) []Message {
	reply := make(chan []Message, 1)
	select {
	case h.historyReq <- reply:
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case msgs := <-reply:
		return msgs
	case <-ctx.Done():
		return nil
	}
}

// ---- hub-goroutine handlers ----

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandHello:
		h.handleHello(c, cmd)
	case CommandChat:
		h.handleChat(c, cmd.Text)
	}
}

func (h *Hub) handleHello(c *Client, cmd *Command) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = DefaultName
	}

	identity, minted, err := h.resolver.Resolve(h.ctx, cmd.Credential)
	if err != nil {
		h.log.Error().Err(err).Msg("resolve identity")
		h.sendError(c, storageError("could not establish identity"))
		return
	}

	wasDeclared := c.declared()
	c.Identity = identity
	c.Name = name
	if !wasDeclared {
		metrics.LiveSessions.Inc()
	}

	h.log.Info().
		Str("conn_id", c.ConnID).
		Str("identity", identity).
		Str("name", name).
		Bool("minted", minted).
		Msg("session declared")

	if minted {
		h.send(c, &Event{Kind: EventAssign, Credential: identity})
	}
	h.send(c, &Event{Kind: EventHistory, Messages: h.history.Recent()})
}

// handleChat applies the gate in strict order: declared, ban, mute, command,
// automod, then persist and broadcast.
func (h *Hub) handleChat(c *Client, text string) {
	if !c.declared() {
		return
	}

	if ban, ok := h.mod.BanOf(c.Identity); ok {
		metrics.MessagesTotal.WithLabelValues("blocked_ban").Inc()
		h.send(c, &Event{Kind: EventBanned, Reason: ban.Reason})
		return
	}

	if h.mod.IsMuted(c.Identity) {
		metrics.MessagesTotal.WithLabelValues("blocked_mute").Inc()
		h.reply(c, "You are currently muted")
		return
	}

	if strings.HasPrefix(text, "/") {
		h.dispatch(c, text)
		return
	}

	if word, ok := h.filter.Scan(text); ok {
		h.autoModBan(c, word)
		return
	}

	msg := Message{
		Name:     c.Name,
		Identity: c.Identity,
		Text:     text,
		SentAt:   time.Now(),
	}
	if err := h.history.Append(h.ctx, msg); err != nil {
		h.log.Error().Err(err).Msg("append message")
		h.sendError(c, storageError("message could not be saved"))
		return
	}
	metrics.MessagesTotal.WithLabelValues("broadcast").Inc()
	h.broadcast(&Event{Kind: EventMessage, Message: msg})
}

func (h *Hub) autoModBan(c *Client, word string) {
	reason := fmt.Sprintf("Used banned word %q", word)
	metrics.MessagesTotal.WithLabelValues("blocked_automod").Inc()

	_, created, err := h.mod.Ban(h.ctx, c.Identity, c.Name, reason)
	if err != nil {
		// Not banned: the registry stayed untouched. The offending text is
		// still dropped.
		h.log.Error().Err(err).Str("identity", c.Identity).Msg("persist automod ban")
		h.sendError(c, storageError("moderation state could not be saved"))
		return
	}
	if created {
		metrics.BansTotal.WithLabelValues("automod").Inc()
		h.announce(SenderAutoMod, fmt.Sprintf("%s has been banned. Reason: %s", c.Name, reason))
	}

	h.log.Info().
		Str("identity", c.Identity).
		Str("word", word).
		Msg("automod ban")

	h.send(c, &Event{Kind: EventBanned, Reason: reason})
	h.dropClient(c)
}

// dropClient removes a connection from the hub and closes its channels.
// Safe to call twice; only the hub goroutine touches the client set.
func (h *Hub) dropClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if c.declared() {
		metrics.LiveSessions.Dec()
	}
	close(c.done)
	close(c.Events)
}

// ---- delivery helpers ----

// send delivers an event to one client, dropping it if the sink is full or
// mid-teardown.
func (h *Hub) send(c *Client, ev *Event) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.Events <- ev:
	default:
	}
}

// broadcast delivers an event to every live connection, fire and forget.
func (h *Hub) broadcast(ev *Event) {
	for client := range h.clients {
		select {
		case client.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// reply sends a caller-only system notice. Never persisted.
func (h *Hub) reply(c *Client, text string) {
	h.send(c, &Event{Kind: EventMessage, Message: systemMessage(SenderSystem, text)})
}

func (h *Hub) sendError(c *Client, err *CoreError) {
	h.send(c, &Event{Kind: EventError, Error: err})
}

// announce broadcasts a system notice and appends it to history. A notice
// that cannot be persisted is not broadcast either.
func (h *Hub) announce(sender, text string) {
	msg := systemMessage(sender, text)
	if err := h.history.Append(h.ctx, msg); err != nil {
		h.log.Error().Err(err).Msg("append notice")
		return
	}
	h.broadcast(&Event{Kind: EventMessage, Message: msg})
}

// notice broadcasts a system notice without persisting it.
func (h *Hub) notice(sender, text string) {
	h.broadcast(&Event{Kind: EventMessage, Message: systemMessage(sender, text)})
}

func (h *Hub) isAdmin(identity string) bool {
	_, ok := h.admins[identity]
	return ok
}

// displayNameFor resolves the most recent known display name for identity by
// scanning history backward, falling back to "Unknown".
func (h *Hub) displayNameFor(identity string) string {
	if name, ok := h.history.LastNameOf(identity); ok {
		return name
	}
	return "Unknown"
}

// sessionsOf returns the live sessions bound to identity.
func (h *Hub) sessionsOf(identity string) []*Client {
	var out []*Client
	for client := range h.clients {
		if client.Identity == identity {
			out = append(out, client)
		}
	}
	return out
}

// onlineCount counts declared sessions.
func (h *Hub) onlineCount() int {
	n := 0
	for client := range h.clients {
		if client.declared() {
			n++
		}
	}
	return n
}

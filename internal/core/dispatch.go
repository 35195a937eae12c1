package core

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/metrics"
)

// commandSpec ties a slash command to its access level and handler. Handlers
// run on the hub goroutine; args are the whitespace-split tokens after the
// command name.
type commandSpec struct {
	admin bool
	usage string
	run   func(h *Hub, c *Client, args []string)
}

func commandTable() map[string]commandSpec {
	return map[string]commandSpec{
		"/ban":              {admin: true, usage: "/ban <identity> [reason]", run: cmdBan},
		"/unban":            {admin: true, usage: "/unban <identity>", run: cmdUnban},
		"/server":           {admin: true, usage: "/server <say|update|listusers|updatestatus>", run: cmdServer},
		"/mute":             {admin: true, usage: "/mute <identity> [duration]", run: cmdMute},
		"/kick":             {admin: true, usage: "/kick <identity>", run: cmdKick},
		"/clear":            {admin: true, usage: "/clear <identity>", run: cmdClear},
		"/purge":            {admin: true, usage: "/purge", run: cmdPurge},
		"/addbannedword":    {admin: true, usage: "/addbannedword <word>", run: cmdAddBannedWord},
		"/removebannedword": {admin: true, usage: "/removebannedword <word>", run: cmdRemoveBannedWord},
		"/online":           {usage: "/online", run: cmdOnline},
		"/report":           {usage: "/report [identity] <text>", run: cmdReport},
		"/stats":            {usage: "/stats", run: cmdStats},
		"/roll":             {usage: "/roll XdY", run: cmdRoll},
		"/flip":             {usage: "/flip", run: cmdFlip},
		"/hug":              {usage: "/hug <identity>", run: cmdHug},
		"/help":             {usage: "/help", run: cmdHelp},
	}
}

// dispatch parses slash-prefixed input, authorizes it against the caller's
// admin status and executes it. Usage, authorization and unknown-command
// replies go to the caller only.
func (h *Hub) dispatch(c *Client, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	name := strings.ToLower(fields[0])
	spec, ok := h.commands[name]
	if !ok {
		h.sendError(c, coreError(ErrCodeUnknownCommand, "Unknown command: "+fields[0]))
		return
	}

	metrics.CommandsTotal.WithLabelValues(strings.TrimPrefix(name, "/")).Inc()

	if spec.admin && !h.isAdmin(c.Identity) {
		h.sendError(c, coreError(ErrCodeUnauthorized, "You are not allowed to use "+name))
		return
	}

	h.log.Trace().
		Str("identity", c.Identity).
		Str("command", name).
		Msg("dispatch command")

	spec.run(h, c, fields[1:])
}

func (h *Hub) usage(c *Client, name string) {
	h.sendError(c, usageError("Usage: "+h.commands[name].usage))
}

func cmdBan(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/ban")
		return
	}
	identity := args[0]
	reason := "No reason provided"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	name := h.displayNameFor(identity)
	_, created, err := h.mod.Ban(h.ctx, identity, name, reason)
	if err != nil {
		h.log.Error().Err(err).Str("identity", identity).Msg("persist ban")
		h.sendError(c, storageError("ban could not be saved"))
		return
	}
	if !created {
		// Already banned; re-banning is a no-op.
		return
	}

	metrics.BansTotal.WithLabelValues("admin").Inc()
	h.announce(SenderSystem, fmt.Sprintf("%s has been banned. Reason: %s", name, reason))
}

func cmdUnban(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/unban")
		return
	}

	ban, removed, err := h.mod.Unban(h.ctx, args[0])
	if err != nil {
		h.log.Error().Err(err).Str("identity", args[0]).Msg("persist unban")
		h.sendError(c, storageError("unban could not be saved"))
		return
	}
	if !removed {
		// No matching ban; silently a no-op.
		return
	}

	h.announce(SenderSystem, fmt.Sprintf("%s has been unbanned.", ban.Name))
}

func cmdServer(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/server")
		return
	}

	switch strings.ToLower(args[0]) {
	case "say":
		text := strings.Join(args[1:], " ")
		if text == "" {
			h.sendError(c, usageError("Usage: /server say <text>"))
			return
		}
		h.announce(SenderServer, text)
	case "update":
		h.broadcast(&Event{Kind: EventReload})
	case "listusers":
		var lines []string
		for client := range h.clients {
			if client.declared() {
				lines = append(lines, fmt.Sprintf("%s (%s)", client.Name, client.Identity))
			}
		}
		if len(lines) == 0 {
			h.reply(c, "No users online")
			return
		}
		h.reply(c, strings.Join(lines, "\n"))
	case "updatestatus":
		status := strings.Join(args[1:], " ")
		if status == "" {
			status = "online"
		}
		h.broadcast(&Event{Kind: EventStatus, Status: status})
	default:
		h.usage(c, "/server")
	}
}

func cmdMute(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/mute")
		return
	}

	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}
	d := ParseMuteDuration(arg)
	h.mod.Mute(args[0], d)
	h.announce(SenderSystem, fmt.Sprintf("%s has been muted for %s.", h.displayNameFor(args[0]), d))
}

func cmdKick(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/kick")
		return
	}

	name := h.displayNameFor(args[0])
	for _, target := range h.sessionsOf(args[0]) {
		if name == "Unknown" {
			name = target.Name
		}
		h.dropClient(target)
	}

	// The notice goes out even when no session matched.
	h.announce(SenderSystem, fmt.Sprintf("%s has been kicked.", name))
}

func cmdClear(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/clear")
		return
	}

	name := h.displayNameFor(args[0])
	removed, err := h.history.ClearBy(h.ctx, args[0])
	if err != nil {
		h.log.Error().Err(err).Str("identity", args[0]).Msg("persist clear")
		h.sendError(c, storageError("history could not be saved"))
		return
	}
	h.announce(SenderSystem, fmt.Sprintf("Cleared %d messages from %s.", removed, name))
}

func cmdPurge(h *Hub, c *Client, _ []string) {
	if err := h.history.Purge(h.ctx); err != nil {
		h.log.Error().Err(err).Msg("persist purge")
		h.sendError(c, storageError("history could not be saved"))
		return
	}
	h.announce(SenderSystem, "Chat history has been purged.")
}

func cmdAddBannedWord(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/addbannedword")
		return
	}
	if err := h.filter.Add(h.ctx, args[0]); err != nil {
		h.log.Error().Err(err).Msg("persist banned words")
		h.sendError(c, storageError("word list could not be saved"))
	}
	// No acknowledgment on success.
}

func cmdRemoveBannedWord(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/removebannedword")
		return
	}
	if err := h.filter.Remove(h.ctx, args[0]); err != nil {
		h.log.Error().Err(err).Msg("persist banned words")
		h.sendError(c, storageError("word list could not be saved"))
	}
}

func cmdOnline(h *Hub, c *Client, _ []string) {
	h.reply(c, fmt.Sprintf("Users online: %d", h.onlineCount()))
}

func cmdReport(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/report")
		return
	}
	// Reports are acknowledged but not routed anywhere yet.
	h.reply(c, "Report received. Thank you.")
}

func cmdStats(h *Hub, c *Client, _ []string) {
	h.reply(c, fmt.Sprintf("You have sent %d messages.", h.history.CountBy(c.Identity)))
}

// Roll sizes are capped: the hub is single-threaded, so one huge roll would
// stall every connection while it formats.
const (
	maxRollDice  = 100
	maxRollFaces = 1000
)

func cmdRoll(h *Hub, c *Client, args []string) {
	if len(args) != 1 {
		h.usage(c, "/roll")
		return
	}

	parts := strings.Split(strings.ToLower(args[0]), "d")
	if len(parts) != 2 {
		h.usage(c, "/roll")
		return
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil || count < 1 || count > maxRollDice {
		h.usage(c, "/roll")
		return
	}
	faces, err := strconv.Atoi(parts[1])
	if err != nil || faces < 1 || faces > maxRollFaces {
		h.usage(c, "/roll")
		return
	}

	rolls := make([]string, count)
	for i := range rolls {
		rolls[i] = strconv.Itoa(rand.Intn(faces) + 1)
	}
	h.reply(c, fmt.Sprintf("You rolled: %s", strings.Join(rolls, ", ")))
}

func cmdFlip(h *Hub, c *Client, _ []string) {
	if rand.Intn(2) == 0 {
		h.reply(c, "Heads")
		return
	}
	h.reply(c, "Tails")
}

func cmdHug(h *Hub, c *Client, args []string) {
	if len(args) < 1 {
		h.usage(c, "/hug")
		return
	}

	targets := h.sessionsOf(args[0])
	if len(targets) == 0 {
		h.sendError(c, coreError(ErrCodeNotFound, "No such user is online"))
		return
	}
	h.notice(SenderSystem, fmt.Sprintf("%s gives %s a big hug!", c.Name, targets[0].Name))
}

func cmdHelp(h *Hub, c *Client, _ []string) {
	lines := []string{
		"Available commands:",
		"/online - number of users online",
		"/report [identity] <text> - report a user",
		"/stats - how many messages you have sent",
		"/roll XdY - roll X dice with Y faces",
		"/flip - flip a coin",
		"/hug <identity> - hug another user",
		"/help - this list",
	}
	if h.isAdmin(c.Identity) {
		lines = append(lines,
			"Admin commands:",
			"/ban <identity> [reason]",
			"/unban <identity>",
			"/server <say|update|listusers|updatestatus>",
			"/mute <identity> [duration]",
			"/kick <identity>",
			"/clear <identity>",
			"/purge",
			"/addbannedword <word>",
			"/removebannedword <word>",
		)
	}
	h.reply(c, strings.Join(lines, "\n"))
}

// Package metrics provides Prometheus instrumentation for the chat server:
// a gauge for live sessions and counters for message, moderation and command
// activity.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// LiveSessions tracks the current number of declared chat sessions.
	LiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatfix_live_sessions",
		Help: "Current number of declared chat sessions",
	})

	// MessagesTotal counts processed chat messages by outcome:
	// "broadcast", "blocked_ban", "blocked_mute", "blocked_automod".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatfix_messages_total",
		Help: "Total chat messages processed, by outcome",
	}, []string{"outcome"})

	// BansTotal counts bans applied, by source: "admin" or "automod".
	BansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatfix_bans_total",
		Help: "Total bans applied, by source",
	}, []string{"source"})

	// CommandsTotal counts dispatched slash commands by name.
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatfix_commands_total",
		Help: "Total slash commands dispatched, by command name",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(
		LiveSessions,
		MessagesTotal,
		BansTotal,
		CommandsTotal,
	)
}

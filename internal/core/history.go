package core

import (
	"context"
	"fmt"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

// HistoryLimit caps the number of retained chat entries. Appending beyond the
// cap silently drops the oldest entry.
const HistoryLimit = 100

// HistoryLog is the bounded, ordered log of chat events. It is owned by the
// hub goroutine and needs no locking. A nil store keeps the log memory-only,
// which the tests rely on.
type HistoryLog struct {
	store   store.HistoryStore
	entries []Message
}

// NewHistoryLog builds a history log, replaying persisted entries if a store
// is provided.
func NewHistoryLog(ctx context.Context, st store.HistoryStore) (*HistoryLog, error) {
	h := &HistoryLog{store: st}
	if st == nil {
		return h, nil
	}

	records, err := st.ListMessages(ctx, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	for _, rec := range records {
		h.entries = append(h.entries, messageFromRecord(rec))
	}
	return h, nil
}

// Append records msg, trimming the log to HistoryLimit oldest-first. The
// store write happens before the in-memory log moves, so a failed persist
// leaves both sides unchanged.
func (h *HistoryLog) Append(ctx context.Context, msg Message) error {
	if h.store != nil {
		if err := h.store.AppendMessage(ctx, recordFromMessage(msg), HistoryLimit); err != nil {
			return fmt.Errorf("persist history append: %w", err)
		}
	}
	h.entries = append(h.entries, msg)
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[len(h.entries)-HistoryLimit:]
	}
	return nil
}

// Recent returns a copy of the retained entries, oldest first.
func (h *HistoryLog) Recent() []Message {
	out := make([]Message, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *HistoryLog) Len() int {
	return len(h.entries)
}

// CountBy returns how many retained entries identity authored.
func (h *HistoryLog) CountBy(identity string) int {
	n := 0
	for _, m := range h.entries {
		if m.Identity == identity {
			n++
		}
	}
	return n
}

// LastNameOf scans backward for the most recent message from identity and
// returns the display name it carried.
func (h *HistoryLog) LastNameOf(identity string) (string, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Identity == identity {
			return h.entries[i].Name, true
		}
	}
	return "", false
}

// ClearBy removes every entry authored by identity, store first. Returns how
// many entries were removed.
func (h *HistoryLog) ClearBy(ctx context.Context, identity string) (int, error) {
	removed := 0
	kept := make([]Message, 0, len(h.entries))
	for _, m := range h.entries {
		if m.Identity == identity {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	if removed == 0 {
		return 0, nil
	}

	if h.store != nil {
		if err := h.store.DeleteMessagesBy(ctx, identity); err != nil {
			return 0, fmt.Errorf("persist history clear: %w", err)
		}
	}
	h.entries = kept
	return removed, nil
}

// Purge empties the log entirely, store first.
func (h *HistoryLog) Purge(ctx context.Context) error {
	if h.store != nil {
		if err := h.store.DeleteAllMessages(ctx); err != nil {
			return fmt.Errorf("persist history purge: %w", err)
		}
	}
	h.entries = h.entries[:0]
	return nil
}

func messageFromRecord(rec store.Message) Message {
	return Message{
		Name:     rec.Name,
		Identity: rec.Identity,
		Text:     rec.Text,
		System:   rec.System,
		SentAt:   rec.SentAt,
	}
}

func recordFromMessage(msg Message) store.Message {
	return store.Message{
		Name:     msg.Name,
		Identity: msg.Identity,
		Text:     msg.Text,
		System:   msg.System,
		SentAt:   msg.SentAt,
	}
}

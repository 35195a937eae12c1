package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

// DefaultMuteDuration is applied when a mute carries no recognizable duration.
const DefaultMuteDuration = 5 * time.Minute

// Ban is an active ban record, keyed by identity.
type Ban struct {
	Identity string
	Name     string
	Reason   string
	BannedAt time.Time
}

// Moderation tracks bans and mutes. Bans are durable; mutes live only in
// memory and die with the process. Owned by the hub goroutine, no locking.
type Moderation struct {
	store store.BanStore
	bans  map[string]Ban
	mutes map[string]time.Time

	// now is swapped out in tests to control mute expiry.
	now func() time.Time
}

// NewModeration builds the registry, loading persisted bans if a store is
// provided.
func NewModeration(ctx context.Context, st store.BanStore) (*Moderation, error) {
	m := &Moderation{
		store: st,
		bans:  make(map[string]Ban),
		mutes: make(map[string]time.Time),
		now:   time.Now,
	}
	if st == nil {
		return m, nil
	}

	records, err := st.ListBans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bans: %w", err)
	}
	for _, rec := range records {
		m.bans[rec.Identity] = Ban{
			Identity: rec.Identity,
			Name:     rec.Name,
			Reason:   rec.Reason,
			BannedAt: rec.BannedAt,
		}
	}
	return m, nil
}

// IsBanned reports whether identity has an active ban.
func (m *Moderation) IsBanned(identity string) bool {
	_, ok := m.bans[identity]
	return ok
}

// BanOf returns the active ban for identity, if any.
func (m *Moderation) BanOf(identity string) (Ban, bool) {
	ban, ok := m.bans[identity]
	return ban, ok
}

// Ban records a ban for identity under name. Re-banning a banned identity is
// a no-op; the second return reports whether a new ban was created. The
// store write happens first, so a failed persist leaves the registry
// untouched.
func (m *Moderation) Ban(ctx context.Context, identity, name, reason string) (Ban, bool, error) {
	if existing, ok := m.bans[identity]; ok {
		return existing, false, nil
	}

	ban := Ban{
		Identity: identity,
		Name:     name,
		Reason:   reason,
		BannedAt: m.now(),
	}
	if m.store != nil {
		rec := store.Ban{
			Identity: ban.Identity,
			Name:     ban.Name,
			Reason:   ban.Reason,
			BannedAt: ban.BannedAt,
		}
		if err := m.store.PutBan(ctx, rec); err != nil {
			return Ban{}, false, fmt.Errorf("persist ban: %w", err)
		}
	}
	m.bans[identity] = ban
	return ban, true, nil
}

// Unban removes the ban for identity, store first. Unbanning an identity
// with no ban is a no-op; the second return reports whether a ban was
// removed.
func (m *Moderation) Unban(ctx context.Context, identity string) (Ban, bool, error) {
	ban, ok := m.bans[identity]
	if !ok {
		return Ban{}, false, nil
	}

	if m.store != nil {
		if err := m.store.DeleteBan(ctx, identity); err != nil {
			return Ban{}, false, fmt.Errorf("persist unban: %w", err)
		}
	}
	delete(m.bans, identity)
	return ban, true, nil
}

// Mute silences identity for d from now, overwriting any existing mute. A
// zero or negative d expires immediately.
func (m *Moderation) Mute(identity string, d time.Duration) {
	m.mutes[identity] = m.now().Add(d)
}

// IsMuted reports whether identity has an unexpired mute. Expiry is honored
// here regardless of whether the sweep has run; the sweep only frees memory.
func (m *Moderation) IsMuted(identity string) bool {
	expiry, ok := m.mutes[identity]
	if !ok {
		return false
	}
	return expiry.After(m.now())
}

// Sweep drops expired mute entries and returns how many were removed.
func (m *Moderation) Sweep() int {
	now := m.now()
	removed := 0
	for identity, expiry := range m.mutes {
		if !expiry.After(now) {
			delete(m.mutes, identity)
			removed++
		}
	}
	return removed
}

// ParseMuteDuration reads durations of the form "30s", "5m" or "2h". Anything
// without a recognized trailing unit falls back to DefaultMuteDuration. The
// value is not validated for sign or magnitude.
func ParseMuteDuration(arg string) time.Duration {
	if len(arg) < 2 {
		return DefaultMuteDuration
	}

	var unit time.Duration
	switch arg[len(arg)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return DefaultMuteDuration
	}

	n, err := strconv.Atoi(arg[:len(arg)-1])
	if err != nil {
		return DefaultMuteDuration
	}
	return time.Duration(n) * unit
}

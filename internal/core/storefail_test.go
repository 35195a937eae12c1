package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

// faultyStore fails selected writes so tests can check that a failed persist
// leaves the in-memory state untouched.
type faultyStore struct {
	appendErr  error
	putBanErr  error
	replaceErr error
}

func (s *faultyStore) ListBans(context.Context) ([]store.Ban, error) { return nil, nil }
func (s *faultyStore) PutBan(context.Context, store.Ban) error { return s.putBanErr }
func (s *faultyStore) DeleteBan(context.Context, string) error { return nil }

func (s *faultyStore) ListMessages(context.Context, int) ([]store.Message, error) { return nil, nil }
func (s *faultyStore) AppendMessage(context.Context, store.Message, int) error { return s.appendErr }
func (s *faultyStore) DeleteMessagesBy(context.Context, string) error { return nil }
func (s *faultyStore) DeleteAllMessages(context.Context) error { return nil }

func (s *faultyStore) ListWords(context.Context) ([]string, error) { return nil, nil }
func (s *faultyStore) ReplaceWords(context.Context, []string) error { return s.replaceErr }

func (s *faultyStore) RecordIdentity(context.Context, string, time.Time) error { return nil }
func (s *faultyStore) Close() error { return nil }

func newFaultyHub(t *testing.T, st *faultyStore, admins ...string) *Hub {
	t.Helper()

	hub, err := NewHub(context.Background(), st, admins, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	return hub
}

func TestFailedAppendLeavesHistoryUntouched(t *testing.T) {
	st := &faultyStore{appendErr: errors.New("disk full")}
	hub := newFaultyHub(t, st)
	alice := attach(hub, "a", "id-a", "alice")
	bob := attach(hub, "b", "id-b", "bob")

	hub.handleChat(alice, "hello")

	ev := takeEvent(t, alice)
	if ev.Kind != EventError || ev.Error.Code != ErrCodeStorage {
		t.Fatalf("expected storage error, got %+v", ev)
	}
	expectNoEvent(t, bob)
	if hub.history.Len() != 0 {
		t.Fatalf("in-memory history diverged from store: %+v", hub.history.Recent())
	}

	// Once the store recovers, the same send goes through cleanly.
	st.appendErr = nil
	hub.handleChat(alice, "hello again")
	if ev := takeEvent(t, bob); ev.Message.Text != "hello again" {
		t.Fatalf("expected broadcast after recovery, got %+v", ev)
	}
	if hub.history.Len() != 1 {
		t.Fatalf("history len = %d after recovery", hub.history.Len())
	}
}

func TestFailedBanPersistLeavesRegistryUntouched(t *testing.T) {
	st := &faultyStore{putBanErr: errors.New("disk full")}
	hub := newFaultyHub(t, st, "id-admin")
	admin := attach(hub, "a", "id-admin", "admin")

	hub.handleChat(admin, "/ban id-bob spamming")

	ev := takeEvent(t, admin)
	if ev.Kind != EventError || ev.Error.Code != ErrCodeStorage {
		t.Fatalf("expected storage error, got %+v", ev)
	}
	if hub.mod.IsBanned("id-bob") {
		t.Fatal("ban held in memory despite failed persist")
	}
	if hub.history.Len() != 0 {
		t.Fatalf("ban notice reached history: %+v", hub.history.Recent())
	}
}

func TestFailedAutoModBanKeepsSessionAndDropsText(t *testing.T) {
	st := &faultyStore{}
	hub := newFaultyHub(t, st)
	if err := hub.filter.Add(hub.ctx, "heck"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	st.putBanErr = errors.New("disk full")

	bob := attach(hub, "b", "id-b", "bob")
	other := attach(hub, "c", "id-c", "carol")

	hub.handleChat(bob, "what the heck")

	ev := takeEvent(t, bob)
	if ev.Kind != EventError || ev.Error.Code != ErrCodeStorage {
		t.Fatalf("expected storage error, got %+v", ev)
	}
	if hub.mod.IsBanned("id-b") {
		t.Fatal("automod ban held in memory despite failed persist")
	}
	if _, ok := hub.clients[bob]; !ok {
		t.Fatal("session dropped even though no ban was recorded")
	}
	// The offending text is still never broadcast or persisted.
	expectNoEvent(t, other)
	if hub.history.Len() != 0 {
		t.Fatalf("offending text reached history: %+v", hub.history.Recent())
	}
}

func TestFailedWordPersistLeavesFilterUntouched(t *testing.T) {
	st := &faultyStore{}
	hub := newFaultyHub(t, st, "id-admin")
	if err := hub.filter.Add(hub.ctx, "zonk"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	st.replaceErr = errors.New("disk full")

	admin := attach(hub, "a", "id-admin", "admin")

	hub.handleChat(admin, "/addbannedword heck")
	ev := takeEvent(t, admin)
	if ev.Kind != EventError || ev.Error.Code != ErrCodeStorage {
		t.Fatalf("expected storage error, got %+v", ev)
	}

	hub.handleChat(admin, "/removebannedword zonk")
	ev = takeEvent(t, admin)
	if ev.Kind != EventError || ev.Error.Code != ErrCodeStorage {
		t.Fatalf("expected storage error, got %+v", ev)
	}

	if got := hub.filter.Words(); len(got) != 1 || got[0] != "zonk" {
		t.Fatalf("word list diverged from store: %v", got)
	}
}

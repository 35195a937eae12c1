package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/config"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/core"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/proto"
)

func newTestServer(t *testing.T, cfg config.Config) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub, err := core.NewHub(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := NewServer(hub, cfg, nil)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, hub
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, config.Default())

	res, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestHistoryEndpointReturnsJSON(t *testing.T) {
	ts, hub := newTestServer(t, config.Default())

	// Feed a message through a declared session so it lands in history.
	client := core.NewClient("test-conn")
	hub.RegisterClient(client)
	client.Commands <- &core.Command{Kind: core.CommandHello, Name: "alice", Credential: "id-a"}
	client.Commands <- &core.Command{Kind: core.CommandChat, Text: "hello history"}

	deadline := time.Now().Add(2 * time.Second)
	var got []proto.MessageData
	for time.Now().Before(deadline) {
		res, err := ts.Client().Get(ts.URL + "/api/history")
		if err != nil {
			t.Fatalf("GET /api/history: %v", err)
		}
		err = json.NewDecoder(res.Body).Decode(&got)
		res.Body.Close()
		if err != nil {
			t.Fatalf("decode history: %v", err)
		}
		if len(got) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if len(got) != 1 || got[0].Text != "hello history" || got[0].Name != "alice" {
		t.Fatalf("unexpected history payload: %+v", got)
	}
}

func TestAdminPageDisabledWithoutHash(t *testing.T) {
	ts, _ := newTestServer(t, config.Default())

	res, err := ts.Client().Get(ts.URL + "/admin")
	if err != nil {
		t.Fatalf("GET /admin: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	cfg := config.Default()
	cfg.AdminPasswordHash = string(hash)
	ts, _ := newTestServer(t, cfg)

	res, err := ts.Client().Post(ts.URL+"/admin/auth", "application/json",
		strings.NewReader(`{"password":"hunter2"}`))
	if err != nil {
		t.Fatalf("POST /admin/auth: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 204 {
		t.Fatalf("status = %d, want 204", res.StatusCode)
	}

	res, err = ts.Client().Post(ts.URL+"/admin/auth", "application/json",
		strings.NewReader(`{"password":"wrong"}`))
	if err != nil {
		t.Fatalf("POST /admin/auth: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 401 {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}

	res, err = ts.Client().Get(ts.URL + "/admin")
	if err != nil {
		t.Fatalf("GET /admin: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
}

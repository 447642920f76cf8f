package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
)

func newTestGame(t *testing.T) *game.Game {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Spawn.NPCCount = 5
	if err := cfg.Prepare(); err != nil {
		t.Fatalf("preparing config: %v", err)
	}
	return game.NewGameWithOptions(game.Options{Config: cfg, Seed: 3, Headless: true})
}

func readFrame(t *testing.T, conn *websocket.Conn) game.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	var f game.Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("decoding frame: %v", err)
	}
	return f
}

func TestHubStreamsFrames(t *testing.T) {
	g := newTestGame(t)
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	if err := hub.Publish(g.Frame()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The latest frame arrives on connect
	first := readFrame(t, conn)
	if first.Tick != 0 || len(first.Agents) != 6 {
		t.Errorf("unexpected first frame: tick %d agents %d", first.Tick, len(first.Agents))
	}
	if hub.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", hub.Clients())
	}

	g.UpdateHeadless()
	if err := hub.Publish(g.Frame()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if second := readFrame(t, conn); second.Tick != 1 {
		t.Errorf("expected tick 1, got %d", second.Tick)
	}
}

func TestHubDropsForSlowClients(t *testing.T) {
	hub := NewHub()
	id, out := hub.register()
	defer hub.unregister(id)

	for i := 0; i < clientBuffer+2; i++ {
		if err := hub.Publish(game.Frame{Tick: int32(i)}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if len(out) != clientBuffer {
		t.Errorf("expected full buffer of %d, got %d", clientBuffer, len(out))
	}
	if hub.Dropped() != 2 {
		t.Errorf("expected 2 dropped frames, got %d", hub.Dropped())
	}
}

func TestFrameHandler(t *testing.T) {
	hub := NewHub()

	tests := []struct {
		name    string
		remote  string
		publish bool
		want    int
	}{
		{"no frame yet", "127.0.0.1:5000", false, http.StatusServiceUnavailable},
		{"loopback", "127.0.0.1:5000", true, http.StatusOK},
		{"ipv6 loopback", "[::1]:5000", true, http.StatusOK},
		{"remote", "10.1.2.3:5000", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.publish {
				_ = hub.Publish(game.Frame{Tick: 7})
			}
			req := httptest.NewRequest(http.MethodGet, "/frame", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			hub.FrameHandler()(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:80", true},
		{"[::1]:80", true},
		{"::1", true},
		{"192.168.0.2:80", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		if got := isLoopbackRemote(tt.addr); got != tt.want {
			t.Errorf("isLoopbackRemote(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestFrameRecorderRoundtrip(t *testing.T) {
	g := newTestGame(t)
	path := filepath.Join(t.TempDir(), "rec", "frames.jsonl.zst")

	rec, err := NewFrameRecorder(path)
	if err != nil {
		t.Fatalf("NewFrameRecorder: %v", err)
	}
	var want []game.Frame
	for i := 0; i < 3; i++ {
		g.UpdateHeadless()
		f := g.Frame()
		want = append(want, f)
		if err := rec.Write(f); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if rec.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Write(game.Frame{}); err == nil {
		t.Error("expected write after close to fail")
	}

	got, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || len(got[i].Agents) != len(want[i].Agents) {
			t.Errorf("frame %d mismatch: tick %d agents %d", i, got[i].Tick, len(got[i].Agents))
		}
		if got[i].Agents[0].Position != want[i].Agents[0].Position {
			t.Errorf("frame %d: position %v, want %v", i, got[i].Agents[0].Position, want[i].Agents[0].Position)
		}
	}
}

func TestFeed(t *testing.T) {
	feed, err := OpenFeed(context.Background(), "", "")
	if err != nil || feed != nil {
		t.Fatalf("OpenFeed with no sinks = %v, %v; want nil, nil", feed, err)
	}
	if err := feed.Publish(game.Frame{}); err != nil {
		t.Errorf("nil feed Publish: %v", err)
	}
	if err := feed.Close(); err != nil {
		t.Errorf("nil feed Close: %v", err)
	}

	g := newTestGame(t)
	path := filepath.Join(t.TempDir(), "frames.jsonl.zst")
	feed, err = OpenFeed(context.Background(), "", path)
	if err != nil {
		t.Fatalf("OpenFeed: %v", err)
	}
	if feed.Hub() != nil {
		t.Error("record-only feed should have no hub")
	}
	for i := 0; i < 2; i++ {
		g.UpdateHeadless()
		if err := feed.Publish(g.Frame()); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if err := feed.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("recorded %d frames, want 2", len(frames))
	}
	if frames[1].Tick != 2 {
		t.Errorf("last recorded tick = %d, want 2", frames[1].Tick)
	}
}

package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
	"github.com/mcoot/arkham-companion/internal/testutil"
)

func TestBroadcaster_DeliverWithoutHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	msg, err := notify.PhaseChangedMessage(&model.GameSession{Token: "ABCDEF", Phase: model.PhaseMovement})
	if err != nil {
		t.Fatal(err)
	}
	broadcaster.Deliver(context.Background(), msg)

	if manager.GetHub("ABCDEF") != nil {
		t.Error("Deliver created a hub for an unwatched session")
	}
}

func TestBroadcaster_DeliverPhaseChanged(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABCDEF")
	client := NewClient("player-1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	msg, _ := notify.PhaseChangedMessage(&model.GameSession{Token: "ABCDEF", Phase: model.PhaseMovement})
	broadcaster.Deliver(context.Background(), msg)

	select {
	case got := <-client.send:
		expected := "event: phase-changed\ndata: {\"data\":{\"game_session_token\":\"ABCDEF\",\"phase\":2}}\n\n"
		if string(got) != expected {
			t.Errorf("got %q, want %q", string(got), expected)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive phase-changed")
	}
}

func TestBroadcaster_SessionClosedRemovesHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABCDEF")
	client := NewClient("player-1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	msg, _ := notify.SessionClosedMessage("ABCDEF")
	broadcaster.Deliver(context.Background(), msg)

	if manager.GetHub("ABCDEF") != nil {
		t.Error("hub still registered after session-closed")
	}

	var events []string
	for m := range client.send {
		events = append(events, string(m))
	}
	if len(events) != 1 || !strings.HasPrefix(events[0], "event: session-closed\n") {
		t.Errorf("got %q, want a single session-closed event", events)
	}
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, manager, "ABCDEF", "anonymous")
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, _ := reader.ReadString('\n')
	if line != "event: connected\n" {
		t.Fatalf("first line = %q, want connected event", line)
	}

	hub := manager.GetHub("ABCDEF")
	if hub == nil {
		t.Fatal("no hub registered for streaming client")
	}
	waitForClients(t, hub, 1)
	hub.BroadcastEvent("player-updated", "{}")

	for {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before player-updated: %v", err)
		}
		if line == "event: player-updated\n" {
			break
		}
	}
}

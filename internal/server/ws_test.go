package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/signspell/internal/app"
	"github.com/ayusman/signspell/internal/detector"
)

func waitForClients(t *testing.T, hub *EventHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", hub.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEventHub_BroadcastsUpdates(t *testing.T) {
	a := app.New(app.Config{})
	defer a.Close()
	if err := a.SetActive(true); err != nil {
		t.Fatal(err)
	}

	srv := New(Config{App: a})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitForClients(t, srv.Events(), 1)

	hand, _ := detector.LetterLandmarks("K")
	a.ProcessHands([]detector.HandLandmarks{hand}, time.Now())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var u app.Update
	if err := json.Unmarshal(msg, &u); err != nil {
		t.Fatalf("failed to decode update: %v", err)
	}
	if u.Label != "K" || !u.Hand || !u.Active || u.Hold.Candidate != "K" {
		t.Errorf("unexpected update %+v", u)
	}

	conn.Close()
	waitForClients(t, srv.Events(), 0)
}

func TestEventHub_PublishWithoutClients(t *testing.T) {
	hub := NewEventHub(nil)
	hub.Publish(app.Update{Word: "A"})

	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", hub.Clients())
	}
}

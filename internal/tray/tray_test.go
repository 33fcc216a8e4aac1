package tray

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/signspell/internal/app"
	"github.com/ayusman/signspell/internal/speller"
)

func TestTitles(t *testing.T) {
	if got := toggleTitle(true); got != "● Recognizing" {
		t.Errorf("toggleTitle(true) = %q", got)
	}
	if got := toggleTitle(false); got != "○ Paused" {
		t.Errorf("toggleTitle(false) = %q", got)
	}
	if got := wordTitle(""); got != "Word: (empty)" {
		t.Errorf("wordTitle(\"\") = %q", got)
	}
	if got := wordTitle("CAB"); got != "Word: CAB" {
		t.Errorf("wordTitle(CAB) = %q", got)
	}

	tests := []struct {
		name string
		u    app.Update
		want string
	}{
		{"idle", app.Update{}, "Holding: none"},
		{"holding", app.Update{Hold: speller.HoldState{Candidate: "W", Since: time.Now()}, Progress: 0.42}, "Holding: W 42%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := holdTitle(tt.u); got != tt.want {
				t.Errorf("holdTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTray_HandleToggle(t *testing.T) {
	tr := New(false)

	var calls []bool
	tr.OnToggle(func(active bool) error {
		calls = append(calls, active)
		return nil
	})

	tr.handleToggle()
	if !tr.IsActive() {
		t.Error("expected active after first toggle")
	}
	tr.handleToggle()
	if tr.IsActive() {
		t.Error("expected paused after second toggle")
	}
	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("callback calls = %v, want [true false]", calls)
	}
}

func TestTray_HandleToggle_Error(t *testing.T) {
	tr := New(false)
	tr.OnToggle(func(bool) error { return errors.New("no camera") })

	tr.handleToggle()
	if tr.IsActive() {
		t.Error("failed toggle should keep the previous state")
	}
}

func TestTray_UpdateBeforeReady(t *testing.T) {
	tr := New(false)

	tr.Update(app.Update{Word: "HI", Active: true})
	if !tr.IsActive() {
		t.Error("Update should follow the app's active state")
	}

	tr.SetActive(false)
	if tr.IsActive() {
		t.Error("SetActive(false) had no effect")
	}
}

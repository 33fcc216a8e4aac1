// Package speller turns a stream of per-frame classifications into confirmed
// letters and keeps the word they spell.
package speller

import (
	"time"

	"github.com/ayusman/signspell/internal/gesture"
)

// DefaultHoldThreshold is how long a symbol must be held before it is
// confirmed.
const DefaultHoldThreshold = 500 * time.Millisecond

// HoldState is the cross-frame state of the hold engine. Candidate and Since
// are set and cleared together.
type HoldState struct {
	Candidate string    `json:"candidate,omitempty"`
	Since     time.Time `json:"since,omitempty"`
}

// Idle reports whether no symbol is being held.
func (s HoldState) Idle() bool {
	return s.Candidate == ""
}

// Progress returns how far the hold has advanced toward threshold at now,
// clamped to [0, 1].
func (s HoldState) Progress(now time.Time, threshold time.Duration) float64 {
	if s.Idle() || threshold <= 0 {
		return 0
	}
	p := float64(now.Sub(s.Since)) / float64(threshold)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Engine confirms a symbol once it has been classified continuously for
// longer than the threshold. Any change of symbol, including to none,
// restarts the hold. Engine is not safe for concurrent use.
type Engine struct {
	threshold time.Duration
	state     HoldState
}

// NewEngine creates an Engine. A non-positive threshold uses
// DefaultHoldThreshold.
func NewEngine(threshold time.Duration) *Engine {
	if threshold <= 0 {
		threshold = DefaultHoldThreshold
	}
	return &Engine{threshold: threshold}
}

// OnFrame advances the state machine with one frame's result and reports the
// confirmed symbol, if any.
func (e *Engine) OnFrame(r gesture.Result, now time.Time) (string, bool) {
	if e.state.Idle() {
		if !r.None() {
			e.state = HoldState{Candidate: r.Symbol, Since: now}
		}
		return "", false
	}

	if r.Symbol != e.state.Candidate {
		e.Reset()
		return "", false
	}

	if now.Sub(e.state.Since) > e.threshold {
		confirmed := e.state.Candidate
		e.Reset()
		return confirmed, true
	}
	return "", false
}

// Reset forces the engine back to idle, discarding any hold in progress.
func (e *Engine) Reset() {
	e.state = HoldState{}
}

// State returns a copy of the current hold state.
func (e *Engine) State() HoldState {
	return e.state
}

// Threshold returns the configured hold threshold.
func (e *Engine) Threshold() time.Duration {
	return e.threshold
}

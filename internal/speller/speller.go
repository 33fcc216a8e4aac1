package speller

import (
	"sync"
	"time"

	"github.com/ayusman/signspell/internal/gesture"
)

// Step is the outcome of feeding one frame to a Speller.
type Step struct {
	Hold      HoldState `json:"hold"`
	Confirmed string    `json:"confirmed,omitempty"`
	Appended  bool      `json:"appended"`
	Word      string    `json:"word"`
}

// Speller pairs a hold Engine with the Buffer it feeds. Frames may arrive
// from one goroutine while others read the word or clear it.
type Speller struct {
	mu     sync.Mutex
	engine *Engine
	buffer *Buffer
}

// New creates a Speller with the given hold threshold.
func New(threshold time.Duration) *Speller {
	return &Speller{
		engine: NewEngine(threshold),
		buffer: NewBuffer(),
	}
}

// Step runs one frame through the engine and appends any confirmed letter.
func (s *Speller) Step(r gesture.Result, now time.Time) Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	var step Step
	if letter, ok := s.engine.OnFrame(r, now); ok {
		step.Confirmed = letter
		step.Appended = s.buffer.Append(letter)
	}
	step.Hold = s.engine.State()
	step.Word = s.buffer.Current()
	return step
}

// Reset discards any hold in progress. The word is kept.
func (s *Speller) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
}

// Clear empties the word. A hold in progress is unaffected.
func (s *Speller) Clear() {
	s.buffer.Clear()
}

// Word returns the word spelled so far.
func (s *Speller) Word() string {
	return s.buffer.Current()
}

// Hold returns the current hold state.
func (s *Speller) Hold() HoldState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Threshold returns the hold threshold in use.
func (s *Speller) Threshold() time.Duration {
	return s.engine.Threshold()
}

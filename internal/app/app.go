// Package app wires the camera, landmark detector, classifier and speller
// into the fingerspelling pipeline and fans its updates out to listeners.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/signspell/internal/capture"
	"github.com/ayusman/signspell/internal/detector"
	"github.com/ayusman/signspell/internal/gesture"
	"github.com/ayusman/signspell/internal/observe"
	"github.com/ayusman/signspell/internal/speller"
)

// Pipeline timing defaults.
const (
	IdleFPS     = 5
	ActiveFPS   = 15
	IdleTimeout = 2 * time.Second
)

// LetterSink receives every letter that changed the word.
type LetterSink interface {
	Dispatch(letter, word string)
}

// Config holds the collaborators and settings of an App. Camera may be nil,
// in which case frames are fed through ProcessHands by the caller.
type Config struct {
	Camera        capture.Camera
	Detector      detector.Detector
	Classifier    *gesture.Classifier
	HoldThreshold time.Duration
	IdleFPS       int
	ActiveFPS     int
	IdleTimeout   time.Duration
	Metrics       *observe.Metrics
	Sink          LetterSink
	Preview       *capture.Preview
}

// Update is published after every processed frame and on state changes.
type Update struct {
	Result    gesture.Result    `json:"result"`
	Label     string            `json:"label"`
	Hand      bool              `json:"hand"`
	Hold      speller.HoldState `json:"hold"`
	Progress  float64           `json:"progress"`
	Confirmed string            `json:"confirmed,omitempty"`
	Appended  bool              `json:"appended"`
	Word      string            `json:"word"`
	Active    bool              `json:"active"`
	Timestamp time.Time         `json:"timestamp"`
}

// State is a snapshot of the app for status displays.
type State struct {
	Active          bool              `json:"active"`
	Camera          bool              `json:"camera"`
	FPS             int               `json:"fps"`
	Word            string            `json:"word"`
	Result          gesture.Result    `json:"result"`
	Label           string            `json:"label"`
	Hold            speller.HoldState `json:"hold"`
	Progress        float64           `json:"progress"`
	HoldThresholdMS int64             `json:"hold_threshold_ms"`
}

// App runs the fingerspelling pipeline.
type App struct {
	config     Config
	classifier *gesture.Classifier
	speller    *speller.Speller

	// ctlMu serialises SetActive calls.
	ctlMu sync.Mutex
	// procMu serialises frame processing against deactivation.
	procMu sync.Mutex

	mu       sync.RWMutex
	active   bool
	fps      int
	stopCh   chan struct{}
	doneCh   chan struct{}
	last     Update
	lastHand *detector.HandLandmarks

	subsMu  sync.Mutex
	subs    map[int]func(Update)
	nextSub int
}

// New creates an inactive App.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}

	classifier := config.Classifier
	if classifier == nil {
		classifier = gesture.NewClassifier()
	}

	return &App{
		config:     config,
		classifier: classifier,
		speller:    speller.New(config.HoldThreshold),
		fps:        config.IdleFPS,
		last:       Update{Label: gesture.NoneLabel},
		subs:       make(map[int]func(Update)),
	}
}

// SetActive starts or stops recognition. Activation begins with an idle hold
// and, when a camera is configured, opens it and starts the capture loop.
// Deactivation stops the loop, closes the camera and drops any pending hold.
func (a *App) SetActive(active bool) error {
	a.ctlMu.Lock()
	defer a.ctlMu.Unlock()

	if active {
		return a.activate()
	}
	a.deactivate()
	return nil
}

func (a *App) activate() error {
	if a.IsActive() {
		return nil
	}

	a.procMu.Lock()
	a.speller.Reset()
	a.procMu.Unlock()

	var stopCh, doneCh chan struct{}
	if cam := a.config.Camera; cam != nil {
		if err := cam.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
		stopCh = make(chan struct{})
		doneCh = make(chan struct{})
	}

	a.mu.Lock()
	a.active = true
	a.fps = a.config.IdleFPS
	a.stopCh = stopCh
	a.doneCh = doneCh
	a.mu.Unlock()

	if stopCh != nil {
		go a.runPipeline(a.config.Camera, stopCh, doneCh)
		log.Println("Detection pipeline started")
	} else {
		log.Println("Recognition active, awaiting external frames")
	}

	a.publish(a.snapshotUpdate(time.Now()))
	return nil
}

func (a *App) deactivate() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
		if err := a.config.Camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		log.Println("Detection pipeline stopped")
	}
	a.setFPS(a.config.IdleFPS)

	a.procMu.Lock()
	a.speller.Reset()
	now := time.Now()
	u := a.snapshotUpdate(now)
	a.setLast(u)
	a.procMu.Unlock()

	a.publish(u)
}

// IsActive reports whether recognition is running.
func (a *App) IsActive() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// ProcessHands runs one recognition cycle over the hands detected in a frame
// taken at now. Only the first hand is used. While inactive nothing changes
// and the returned Update carries no symbol.
func (a *App) ProcessHands(hands []detector.HandLandmarks, now time.Time) Update {
	return a.process(hands, now, 0)
}

func (a *App) process(hands []detector.HandLandmarks, now time.Time, detectTook time.Duration) Update {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	if !a.IsActive() {
		return a.snapshotUpdate(now)
	}

	hand := detector.FirstHand(hands)

	start := time.Now()
	result := a.classifier.ClassifyHand(hand)
	took := detectTook + time.Since(start)

	step := a.speller.Step(result, now)

	u := Update{
		Result:    result,
		Label:     result.Label(),
		Hand:      hand != nil,
		Hold:      step.Hold,
		Progress:  step.Hold.Progress(now, a.speller.Threshold()),
		Confirmed: step.Confirmed,
		Appended:  step.Appended,
		Word:      step.Word,
		Active:    true,
		Timestamp: now,
	}

	ctx := context.Background()
	if m := a.config.Metrics; m != nil {
		m.RecordFrame(ctx, u.Hand, result.Symbol, took)
	}

	if step.Confirmed != "" {
		log.Printf("Confirmed letter %s (word %q)", step.Confirmed, step.Word)
		if m := a.config.Metrics; m != nil {
			m.RecordConfirmation(ctx, step.Confirmed, step.Appended)
		}
		if step.Appended && a.config.Sink != nil {
			a.config.Sink.Dispatch(step.Confirmed, step.Word)
		}
	}

	a.mu.Lock()
	a.last = u
	if hand != nil {
		h := *hand
		a.lastHand = &h
	}
	a.mu.Unlock()

	a.publish(u)
	return u
}

// Clear empties the word. A hold in progress continues.
func (a *App) Clear() {
	a.speller.Clear()
	if m := a.config.Metrics; m != nil {
		m.RecordClear(context.Background())
	}
	log.Println("Word cleared")

	a.publish(a.snapshotUpdate(time.Now()))
}

// Word returns the word spelled so far.
func (a *App) Word() string {
	return a.speller.Word()
}

// State returns a snapshot of the current state.
func (a *App) State() State {
	now := time.Now()
	hold := a.speller.Hold()
	word := a.speller.Word()

	a.mu.RLock()
	defer a.mu.RUnlock()

	return State{
		Active:          a.active,
		Camera:          a.config.Camera != nil,
		FPS:             a.fps,
		Word:            word,
		Result:          a.last.Result,
		Label:           a.last.Result.Label(),
		Hold:            hold,
		Progress:        hold.Progress(now, a.speller.Threshold()),
		HoldThresholdMS: a.speller.Threshold().Milliseconds(),
	}
}

// LastHand returns a copy of the most recently seen hand.
func (a *App) LastHand() (detector.HandLandmarks, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastHand == nil {
		return detector.HandLandmarks{}, false
	}
	return *a.lastHand, true
}

// Subscribe registers fn to receive every Update. fn is called synchronously
// from the pipeline and must not block. The returned func unsubscribes.
func (a *App) Subscribe(fn func(Update)) func() {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn

	return func() {
		a.subsMu.Lock()
		defer a.subsMu.Unlock()
		delete(a.subs, id)
	}
}

// Preview returns the preview cache, which may be nil.
func (a *App) Preview() *capture.Preview {
	return a.config.Preview
}

// Close stops recognition and releases the detector.
func (a *App) Close() error {
	a.ctlMu.Lock()
	a.deactivate()
	a.ctlMu.Unlock()

	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			return fmt.Errorf("close detector: %w", err)
		}
	}
	return nil
}

// snapshotUpdate builds an Update from the current state without a new frame.
func (a *App) snapshotUpdate(now time.Time) Update {
	hold := a.speller.Hold()
	return Update{
		Label:     gesture.NoneLabel,
		Hold:      hold,
		Progress:  hold.Progress(now, a.speller.Threshold()),
		Word:      a.speller.Word(),
		Active:    a.IsActive(),
		Timestamp: now,
	}
}

func (a *App) setLast(u Update) {
	a.mu.Lock()
	a.last = u
	a.mu.Unlock()
}

func (a *App) setFPS(fps int) {
	a.mu.Lock()
	a.fps = fps
	a.mu.Unlock()
}

func (a *App) publish(u Update) {
	a.subsMu.Lock()
	fns := make([]func(Update), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subsMu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

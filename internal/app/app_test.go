package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/signspell/internal/capture"
	"github.com/ayusman/signspell/internal/detector"
	"github.com/ayusman/signspell/internal/observe"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type recordingSink struct {
	mu      sync.Mutex
	letters []string
	words   []string
}

func (s *recordingSink) Dispatch(letter, word string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters = append(s.letters, letter)
	s.words = append(s.words, word)
}

func (s *recordingSink) received() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.letters...), append([]string(nil), s.words...)
}

func letterHands(t *testing.T, symbol string) []detector.HandLandmarks {
	t.Helper()
	h, ok := detector.LetterLandmarks(symbol)
	if !ok {
		t.Fatalf("no preset for %q", symbol)
	}
	return []detector.HandLandmarks{h}
}

// feed sends hands every 50ms from start through start+span and returns the
// confirmed letters.
func feed(a *App, hands []detector.HandLandmarks, start time.Time, span time.Duration) []string {
	var confirmed []string
	for at := time.Duration(0); at <= span; at += 50 * time.Millisecond {
		u := a.ProcessHands(hands, start.Add(at))
		if u.Confirmed != "" {
			confirmed = append(confirmed, u.Confirmed)
		}
	}
	return confirmed
}

func newActiveApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a := New(cfg)
	if err := a.SetActive(true); err != nil {
		t.Fatalf("SetActive(true) error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_ProcessHands_Inactive(t *testing.T) {
	a := New(Config{})

	u := a.ProcessHands(letterHands(t, "A"), time.Now())

	if !u.Result.None() || u.Active {
		t.Errorf("inactive app should not classify, got %+v", u)
	}
	if _, ok := a.LastHand(); ok {
		t.Error("inactive app should not record hands")
	}
}

func TestApp_ProcessHands_ConfirmsLetter(t *testing.T) {
	sink := &recordingSink{}
	a := newActiveApp(t, Config{Sink: sink})
	start := time.Now()

	confirmed := feed(a, letterHands(t, "A"), start, 600*time.Millisecond)

	if len(confirmed) != 1 || confirmed[0] != "A" {
		t.Fatalf("confirmed = %v, want [A]", confirmed)
	}
	if a.Word() != "A" {
		t.Errorf("Word() = %q, want A", a.Word())
	}

	letters, words := sink.received()
	if len(letters) != 1 || letters[0] != "A" || words[0] != "A" {
		t.Errorf("sink received %v %v", letters, words)
	}
}

func TestApp_ProcessHands_DuplicateNotSent(t *testing.T) {
	sink := &recordingSink{}
	a := newActiveApp(t, Config{Sink: sink})
	start := time.Now()

	feed(a, letterHands(t, "B"), start, 600*time.Millisecond)
	feed(a, nil, start.Add(700*time.Millisecond), 100*time.Millisecond)
	confirmed := feed(a, letterHands(t, "B"), start.Add(900*time.Millisecond), 600*time.Millisecond)

	if len(confirmed) != 1 {
		t.Fatalf("expected second B to be confirmed, got %v", confirmed)
	}
	if a.Word() != "B" {
		t.Errorf("Word() = %q, want B", a.Word())
	}
	if letters, _ := sink.received(); len(letters) != 1 {
		t.Errorf("duplicate letter reached the sink: %v", letters)
	}
}

func TestApp_ProcessHands_Spelling(t *testing.T) {
	a := newActiveApp(t, Config{})
	start := time.Now()

	at := start
	for _, symbol := range []string{"H", "I"} {
		feed(a, letterHands(t, symbol), at, 600*time.Millisecond)
		at = at.Add(700 * time.Millisecond)
	}

	if a.Word() != "HI" {
		t.Errorf("Word() = %q, want HI", a.Word())
	}
}

func TestApp_DeactivationDiscardsHold(t *testing.T) {
	a := newActiveApp(t, Config{})

	var mu sync.Mutex
	var last Update
	cancel := a.Subscribe(func(u Update) {
		mu.Lock()
		last = u
		mu.Unlock()
	})
	defer cancel()

	start := time.Now()
	hands := letterHands(t, "A")

	feed(a, hands, start, 400*time.Millisecond)
	if a.State().Hold.Idle() {
		t.Fatal("expected a hold in progress")
	}

	if err := a.SetActive(false); err != nil {
		t.Fatalf("SetActive(false) error = %v", err)
	}

	mu.Lock()
	idle := last
	mu.Unlock()
	if idle.Active || !idle.Hold.Idle() {
		t.Errorf("expected idle update on deactivation, got %+v", idle)
	}

	if err := a.SetActive(true); err != nil {
		t.Fatalf("SetActive(true) error = %v", err)
	}

	confirmed := feed(a, hands, start.Add(450*time.Millisecond), 400*time.Millisecond)
	if len(confirmed) != 0 {
		t.Errorf("reactivation should need a full new hold, got %v", confirmed)
	}
	if a.Word() != "" {
		t.Errorf("Word() = %q, want empty", a.Word())
	}
}

func TestApp_Clear(t *testing.T) {
	a := newActiveApp(t, Config{})
	start := time.Now()

	feed(a, letterHands(t, "Y"), start, 600*time.Millisecond)
	if a.Word() != "Y" {
		t.Fatalf("Word() = %q, want Y", a.Word())
	}

	a.Clear()
	if a.Word() != "" {
		t.Errorf("Word() after Clear = %q", a.Word())
	}

	feed(a, nil, start.Add(650*time.Millisecond), 0)
	feed(a, letterHands(t, "Y"), start.Add(700*time.Millisecond), 600*time.Millisecond)
	if a.Word() != "Y" {
		t.Errorf("Word() = %q, want Y after clear", a.Word())
	}
}

func TestApp_DetectorFailureResetsHold(t *testing.T) {
	a := newActiveApp(t, Config{})
	start := time.Now()

	feed(a, letterHands(t, "L"), start, 300*time.Millisecond)
	// A failed detection reaches the app as zero hands.
	a.ProcessHands(nil, start.Add(350*time.Millisecond))

	if !a.State().Hold.Idle() {
		t.Error("zero hands should reset the hold")
	}
}

func TestApp_LastHand(t *testing.T) {
	a := newActiveApp(t, Config{})
	hands := letterHands(t, "W")

	a.ProcessHands(hands, time.Now())
	a.ProcessHands(nil, time.Now())

	got, ok := a.LastHand()
	if !ok {
		t.Fatal("expected a last hand")
	}
	if got.Points != hands[0].Points {
		t.Error("LastHand() does not match the last detected hand")
	}

	hands[0].Points[0].X = 99
	if again, _ := a.LastHand(); again.Points[0].X == 99 {
		t.Error("LastHand() should be a copy")
	}
}

func TestApp_State(t *testing.T) {
	a := New(Config{HoldThreshold: 300 * time.Millisecond})

	s := a.State()
	if s.Active || s.Camera || s.FPS != IdleFPS || s.HoldThresholdMS != 300 {
		t.Errorf("unexpected initial state %+v", s)
	}

	if err := a.SetActive(true); err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.ProcessHands(letterHands(t, "V"), time.Now())
	s = a.State()
	if !s.Active || s.Label != "V" || s.Hold.Candidate != "V" {
		t.Errorf("unexpected state after frame %+v", s)
	}
}

func TestApp_Subscribe(t *testing.T) {
	a := newActiveApp(t, Config{})

	var count int
	cancel := a.Subscribe(func(Update) { count++ })

	a.ProcessHands(nil, time.Now())
	a.ProcessHands(nil, time.Now())
	cancel()
	a.ProcessHands(nil, time.Now())

	if count != 2 {
		t.Errorf("subscriber called %d times, want 2", count)
	}
}

func TestApp_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	a := newActiveApp(t, Config{Metrics: m})
	feed(a, letterHands(t, "D"), time.Now(), 600*time.Millisecond)
	a.Clear()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[md.Name] += dp.Value
				}
			}
		}
	}

	if totals["signspell.frames"] != 13 {
		t.Errorf("frames = %d, want 13", totals["signspell.frames"])
	}
	if totals["signspell.letters.confirmed"] != 1 {
		t.Errorf("letters confirmed = %d, want 1", totals["signspell.letters.confirmed"])
	}
	if totals["signspell.buffer.clears"] != 1 {
		t.Errorf("buffer clears = %d, want 1", totals["signspell.buffer.clears"])
	}
}

var errNoDevice = errors.New("no device")

// brokenCamera is a camera whose device cannot be opened.
type brokenCamera struct {
	*capture.MockCamera
}

func (brokenCamera) Open() error {
	return errNoDevice
}

func TestApp_SetActive_CameraError(t *testing.T) {
	cam := brokenCamera{capture.NewMockCamera(nil, false)}
	a := New(Config{Camera: cam})

	if err := a.SetActive(true); !errors.Is(err, errNoDevice) {
		t.Fatalf("SetActive(true) error = %v, want errNoDevice", err)
	}
	if a.IsActive() {
		t.Error("app should stay inactive when the camera fails")
	}
}

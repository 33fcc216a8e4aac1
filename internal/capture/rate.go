package capture

import "time"

// RateController picks the capture frame rate from hand presence: idle until
// a hand shows up, active while one is visible, and back to idle once no
// hand has been seen for the idle timeout. It is not safe for concurrent use.
type RateController struct {
	idleFPS     int
	activeFPS   int
	idleTimeout time.Duration

	active   bool
	lastHand time.Time
}

// NewRateController creates a RateController starting in idle mode.
func NewRateController(idleFPS, activeFPS int, idleTimeout time.Duration) *RateController {
	if idleFPS <= 0 {
		idleFPS = DefaultFPS
	}
	if activeFPS < idleFPS {
		activeFPS = idleFPS
	}
	return &RateController{
		idleFPS:     idleFPS,
		activeFPS:   activeFPS,
		idleTimeout: idleTimeout,
	}
}

// Observe records whether a hand was present in the frame taken at now. It
// returns the frame rate to use next and whether it differs from before.
func (r *RateController) Observe(hand bool, now time.Time) (int, bool) {
	if hand {
		r.lastHand = now
		if !r.active {
			r.active = true
			return r.activeFPS, true
		}
		return r.activeFPS, false
	}

	if r.active && now.Sub(r.lastHand) > r.idleTimeout {
		r.active = false
		return r.idleFPS, true
	}
	return r.FPS(), false
}

// Reset returns to idle mode.
func (r *RateController) Reset() {
	r.active = false
	r.lastHand = time.Time{}
}

// Active reports whether the controller is in active mode.
func (r *RateController) Active() bool {
	return r.active
}

// FPS returns the frame rate for the current mode.
func (r *RateController) FPS() int {
	if r.active {
		return r.activeFPS
	}
	return r.idleFPS
}

// Interval returns the time between frames for the current mode.
func (r *RateController) Interval() time.Duration {
	return time.Second / time.Duration(r.FPS())
}

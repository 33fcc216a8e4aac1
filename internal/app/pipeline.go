package app

import (
	"log"
	"time"

	"github.com/ayusman/signspell/internal/capture"
	"github.com/ayusman/signspell/internal/detector"
)

// runPipeline reads frames from camera until stopCh closes. It starts at the
// idle frame rate, speeds up while a hand is visible and drops back once no
// hand has been seen for the idle timeout.
func (a *App) runPipeline(camera capture.Camera, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	rate := capture.NewRateController(a.config.IdleFPS, a.config.ActiveFPS, a.config.IdleTimeout)
	camera.SetFPS(rate.FPS())

	ticker := time.NewTicker(rate.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		hands, took, ok := a.readHands(camera)
		if !ok {
			continue
		}

		now := time.Now()
		u := a.process(hands, now, took)

		fps, changed := rate.Observe(u.Hand, now)
		if !changed {
			continue
		}
		camera.SetFPS(fps)
		ticker.Reset(rate.Interval())
		a.setFPS(fps)
		if rate.Active() {
			log.Printf("Switched to active mode (%d fps)", fps)
		} else {
			log.Printf("Switched to idle mode (%d fps)", fps)
		}
	}
}

// readHands grabs one frame and runs the detector on it. A failed read skips
// the frame. A failed detection is reported as no hands so any hold resets.
func (a *App) readHands(camera capture.Camera) ([]detector.HandLandmarks, time.Duration, bool) {
	frame, err := camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return nil, 0, false
	}
	defer frame.Close()

	if p := a.config.Preview; p != nil {
		if err := p.Store(frame); err != nil {
			log.Printf("Error storing preview: %v", err)
		}
	}

	if a.config.Detector == nil {
		return nil, 0, true
	}

	start := time.Now()
	hands, err := a.config.Detector.Detect(frame)
	took := time.Since(start)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return nil, took, true
	}
	return hands, took, true
}

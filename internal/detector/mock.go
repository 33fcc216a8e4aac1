package detector

import (
	"math"
	"sort"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// The presets below describe an upright right hand, palm to the camera, in
// image coordinates with the wrist near the bottom of the frame. Extended
// fingers point straight up from their MCP; curled fingers fold back so the
// tip ends up closer to the wrist than the PIP joint.
var (
	presetWrist = Point3D{X: 0.50, Y: 0.90}

	// MCP joints for index, middle, ring and pinky. Wrist to middle MCP is 0.22.
	presetMCPs = [4]Point3D{
		{X: 0.56, Y: 0.70},
		{X: 0.50, Y: 0.68},
		{X: 0.44, Y: 0.70},
		{X: 0.38, Y: 0.72},
	}

	presetThumbExtended = Point3D{X: 0.65, Y: 0.70}
	presetThumbCurled   = Point3D{X: 0.58, Y: 0.80}
)

// handShape selects which digits are extended in a preset.
type handShape struct {
	thumb, index, middle, ring, pinky bool
}

func shapeLandmarks(s handShape) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = presetWrist
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.85}
	h.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.80}
	h.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.75}
	if s.thumb {
		h.Points[ThumbTip] = presetThumbExtended
	} else {
		h.Points[ThumbTip] = presetThumbCurled
	}

	extended := [4]bool{s.index, s.middle, s.ring, s.pinky}
	for i, mcp := range presetMCPs {
		setFinger(&h, IndexMCP+4*i, mcp, extended[i])
	}
	return h
}

// setFinger fills the MCP, PIP, DIP and tip joints of one finger.
func setFinger(h *HandLandmarks, mcpIndex int, mcp Point3D, extended bool) {
	h.Points[mcpIndex] = mcp
	if extended {
		h.Points[mcpIndex+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.08}
		h.Points[mcpIndex+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.14}
		h.Points[mcpIndex+3] = Point3D{X: mcp.X, Y: mcp.Y - 0.19}
		return
	}
	h.Points[mcpIndex+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.05, Z: -0.03}
	h.Points[mcpIndex+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.02, Z: -0.05}
	h.Points[mcpIndex+3] = Point3D{X: mcp.X, Y: mcp.Y + 0.03, Z: -0.04}
}

// Transform rotates h about its wrist by theta radians in the image plane,
// scales it by scale and translates it by (dx, dy).
func Transform(h HandLandmarks, theta, scale, dx, dy float64) HandLandmarks {
	out := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	wrist := h.Points[Wrist]
	sin, cos := math.Sincos(theta)

	for i, p := range h.Points {
		x := p.X - wrist.X
		y := p.Y - wrist.Y
		out.Points[i] = Point3D{
			X: wrist.X + dx + scale*(x*cos-y*sin),
			Y: wrist.Y + dy + scale*(x*sin+y*cos),
			Z: wrist.Z + scale*(p.Z-wrist.Z),
		}
	}
	return out
}

// OpenPalmLandmarks returns a preset HandLandmarks with all five digits
// extended. It does not spell any letter.
func OpenPalmLandmarks() HandLandmarks {
	return shapeLandmarks(handShape{thumb: true, index: true, middle: true, ring: true, pinky: true})
}

// FistLandmarks returns a closed fist with the thumb tucked across the fingers.
func FistLandmarks() HandLandmarks {
	return shapeLandmarks(handShape{})
}

// letterPresets builds one representative pose per fingerspelled symbol.
var letterPresets = map[string]func() HandLandmarks{
	"A": func() HandLandmarks {
		return shapeLandmarks(handShape{thumb: true})
	},
	"S": FistLandmarks,
	"B": func() HandLandmarks {
		return shapeLandmarks(handShape{index: true, middle: true, ring: true, pinky: true})
	},
	"Y": func() HandLandmarks {
		return shapeLandmarks(handShape{thumb: true, pinky: true})
	},
	"U": uLandmarks,
	"V": vLandmarks,
	"K": func() HandLandmarks {
		h := vLandmarks()
		h.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.61}
		return h
	},
	"H": func() HandLandmarks {
		return Transform(uLandmarks(), math.Pi/2, 1, 0, 0)
	},
	"L": func() HandLandmarks {
		h := shapeLandmarks(handShape{thumb: true, index: true})
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.82}
		h.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.80}
		h.Points[ThumbTip] = Point3D{X: 0.74, Y: 0.78}
		return h
	},
	"D": func() HandLandmarks {
		h := shapeLandmarks(handShape{index: true})
		h.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.72, Z: -0.04}
		return h
	},
	"I": func() HandLandmarks {
		return shapeLandmarks(handShape{index: true})
	},
	"W": func() HandLandmarks {
		return shapeLandmarks(handShape{index: true, middle: true, ring: true})
	},
	"O": func() HandLandmarks {
		h := shapeLandmarks(handShape{middle: true, ring: true, pinky: true})
		h.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.74, Z: -0.04}
		return h
	},
	"C": func() HandLandmarks {
		return Transform(OpenPalmLandmarks(), math.Pi, 1, 0, 0)
	},
}

func uLandmarks() HandLandmarks {
	h := shapeLandmarks(handShape{index: true, middle: true})
	h.Points[IndexTip] = Point3D{X: 0.53, Y: 0.51}
	h.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.49}
	return h
}

func vLandmarks() HandLandmarks {
	h := shapeLandmarks(handShape{index: true, middle: true})
	h.Points[IndexTip] = Point3D{X: 0.60, Y: 0.51}
	h.Points[MiddleTip] = Point3D{X: 0.46, Y: 0.49}
	return h
}

// LetterLandmarks returns a synthetic hand that spells symbol.
func LetterLandmarks(symbol string) (HandLandmarks, bool) {
	build, ok := letterPresets[symbol]
	if !ok {
		return HandLandmarks{}, false
	}
	return build(), true
}

// PresetSymbols lists the symbols LetterLandmarks can build, sorted.
func PresetSymbols() []string {
	symbols := make([]string, 0, len(letterPresets))
	for s := range letterPresets {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

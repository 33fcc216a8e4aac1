// Package detector provides hand landmark types and the interface to the
// external hand-landmark detector that feeds the classifier.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are image-space coordinates, so Y grows downward.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// JointSet is the ordered sequence of joints for one hand in one frame.
// A well-formed set has exactly NumLandmarks points indexed by the constants above.
type JointSet []Point3D

// Complete reports whether the set holds exactly one hand's worth of joints.
func (j JointSet) Complete() bool {
	return len(j) == NumLandmarks
}

// Distance returns the Euclidean distance between joints a and b.
// The caller must ensure both indices are in range.
func (j JointSet) Distance(a, b int) float64 {
	return Distance(j[a], j[b])
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Joints returns the landmarks as a JointSet. A nil hand yields an empty set.
func (h *HandLandmarks) Joints() JointSet {
	if h == nil {
		return nil
	}
	joints := make(JointSet, NumLandmarks)
	copy(joints, h.Points[:])
	return joints
}

// Distance calculates the Euclidean distance between two 3D points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Scale returns the wrist to middle-finger MCP distance, the hand-size unit
// that classifier thresholds are expressed in.
func (h *HandLandmarks) Scale() float64 {
	return Distance(h.Points[Wrist], h.Points[MiddleMCP])
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Orientation is preserved, so image-space "above/below" comparisons still hold.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := normalized.Scale()

	// Avoid division by zero
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}

// FromJoints builds HandLandmarks from a joint set. It reports false when the
// set does not hold exactly NumLandmarks points.
func FromJoints(joints JointSet, handedness string, score float64) (HandLandmarks, bool) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if !joints.Complete() {
		return h, false
	}
	copy(h.Points[:], joints)
	return h, true
}

package gesture

import (
	"math"

	"github.com/ayusman/signspell/internal/detector"
)

// Finger identifies one digit of the hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// extensionJoints maps each finger to its tip and the joint whose distance
// from the wrist the tip must exceed for the finger to count as extended.
var extensionJoints = [5]struct{ tip, ref int }{
	Thumb:  {detector.ThumbTip, detector.ThumbIP},
	Index:  {detector.IndexTip, detector.IndexPIP},
	Middle: {detector.MiddleTip, detector.MiddlePIP},
	Ring:   {detector.RingTip, detector.RingPIP},
	Pinky:  {detector.PinkyTip, detector.PinkyPIP},
}

// Features are the values derived once per frame and shared by every rule.
type Features struct {
	Joints   detector.JointSet
	Scale    float64
	Extended [5]bool
}

// NewFeatures derives features from a complete joint set.
func NewFeatures(joints detector.JointSet) *Features {
	f := &Features{
		Joints: joints,
		Scale:  joints.Distance(detector.Wrist, detector.MiddleMCP),
	}
	for finger, j := range extensionJoints {
		f.Extended[finger] = joints.Distance(j.tip, detector.Wrist) > joints.Distance(j.ref, detector.Wrist)
	}
	return f
}

// Distance returns the 3D distance between joints a and b.
func (f *Features) Distance(a, b int) float64 {
	return f.Joints.Distance(a, b)
}

// Ratio returns the distance between a and b in units of hand scale.
// A zero scale yields +Inf or NaN, which fails every threshold comparison.
func (f *Features) Ratio(a, b int) float64 {
	return f.Distance(a, b) / f.Scale
}

// Pattern reports whether the four non-thumb fingers match the given
// extension states exactly. The thumb is not considered.
func (f *Features) Pattern(index, middle, ring, pinky bool) bool {
	return f.Extended[Index] == index &&
		f.Extended[Middle] == middle &&
		f.Extended[Ring] == ring &&
		f.Extended[Pinky] == pinky
}

// Horizontal reports whether the vector from base to tip has a larger
// image-space x component than y component.
func (f *Features) Horizontal(base, tip int) bool {
	dx := f.Joints[tip].X - f.Joints[base].X
	dy := f.Joints[tip].Y - f.Joints[base].Y
	return math.Abs(dx) > math.Abs(dy)
}

// Below reports whether joint a sits lower in the image than joint b.
func (f *Features) Below(a, b int) bool {
	return f.Joints[a].Y > f.Joints[b].Y
}

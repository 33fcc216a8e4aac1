package gesture

import "github.com/ayusman/signspell/internal/detector"

// Rule is one entry of the ordered decision list. Match reports whether the
// rule claims the frame and, if so, the result to emit.
type Rule struct {
	Name  string
	Match func(f *Features) (Result, bool)
}

const (
	thumbTouchRatio = 0.25 // K thumb to middle PIP, O thumb to index tip
	fingerGapRatio  = 0.3  // U/V tip gap, D thumb to middle tip, C thumb to index tip
	lSpreadFraction = 0.7  // L thumb-index spread relative to wrist-index length
)

// DefaultRules returns the fingerspelling rules in priority order. The first
// rule that matches wins.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "Y", Match: matchY},
		{Name: "A", Match: matchA},
		{Name: "S", Match: matchS},
		{Name: "B", Match: matchB},
		{Name: "HKUV", Match: matchTwoFinger},
		{Name: "L", Match: matchL},
		{Name: "DI", Match: matchIndexOnly},
		{Name: "W", Match: matchW},
		{Name: "O", Match: matchO},
		{Name: "C", Match: matchC},
	}
}

func result(symbol string, confidence float64) (Result, bool) {
	return Result{Symbol: symbol, Confidence: confidence}, true
}

// matchY: thumb and pinky out, everything else curled.
func matchY(f *Features) (Result, bool) {
	if f.Extended[Thumb] && f.Pattern(false, false, false, true) {
		return result("Y", 0.95)
	}
	return Result{}, false
}

// matchA: fist with the thumb alongside the index knuckle.
func matchA(f *Features) (Result, bool) {
	if !f.Pattern(false, false, false, false) || !f.Extended[Thumb] {
		return Result{}, false
	}
	if f.Distance(detector.ThumbTip, detector.IndexMCP) < f.Distance(detector.ThumbTip, detector.PinkyMCP) {
		return result("A", 0.95)
	}
	return Result{}, false
}

// matchS: fist with the thumb tucked or wrapped toward the pinky side.
func matchS(f *Features) (Result, bool) {
	if !f.Pattern(false, false, false, false) {
		return Result{}, false
	}
	toIndex := f.Distance(detector.ThumbTip, detector.IndexMCP)
	toPinky := f.Distance(detector.ThumbTip, detector.PinkyMCP)
	if !f.Extended[Thumb] || toIndex > toPinky {
		return result("S", 0.95)
	}
	return Result{}, false
}

func matchB(f *Features) (Result, bool) {
	if !f.Extended[Thumb] && f.Pattern(true, true, true, true) {
		return result("B", 0.96)
	}
	return Result{}, false
}

// matchTwoFinger separates H, K, U and V once index and middle are the only
// extended fingers. It always claims the frame.
func matchTwoFinger(f *Features) (Result, bool) {
	if !f.Pattern(true, true, false, false) {
		return Result{}, false
	}

	horizontal := f.Horizontal(detector.IndexMCP, detector.IndexTip) &&
		f.Horizontal(detector.MiddleMCP, detector.MiddleTip)
	together := f.Distance(detector.IndexTip, detector.MiddleTip) < f.Distance(detector.IndexPIP, detector.MiddlePIP)
	if horizontal && together {
		return result("H", 0.91)
	}

	if f.Extended[Thumb] && f.Ratio(detector.ThumbTip, detector.MiddlePIP) < thumbTouchRatio {
		return result("K", 0.92)
	}

	if f.Ratio(detector.IndexTip, detector.MiddleTip) < fingerGapRatio {
		return result("U", 0.93)
	}
	return result("V", 0.95)
}

func matchL(f *Features) (Result, bool) {
	if !f.Extended[Thumb] || !f.Pattern(true, false, false, false) {
		return Result{}, false
	}
	if f.Distance(detector.ThumbTip, detector.IndexTip) > lSpreadFraction*f.Distance(detector.Wrist, detector.IndexTip) {
		return result("L", 0.94)
	}
	return Result{}, false
}

// matchIndexOnly handles D and I. A thumb that is extended but away from the
// middle fingertip matches neither.
func matchIndexOnly(f *Features) (Result, bool) {
	if !f.Pattern(true, false, false, false) {
		return Result{}, false
	}
	if f.Ratio(detector.ThumbTip, detector.MiddleTip) < fingerGapRatio {
		return result("D", 0.95)
	}
	if !f.Extended[Thumb] {
		return result("I", 0.95)
	}
	return Result{}, false
}

func matchW(f *Features) (Result, bool) {
	if f.Pattern(true, true, true, false) {
		return result("W", 0.94)
	}
	return Result{}, false
}

func matchO(f *Features) (Result, bool) {
	touching := f.Ratio(detector.ThumbTip, detector.IndexTip) < thumbTouchRatio
	if touching && f.Extended[Middle] && f.Extended[Ring] && f.Extended[Pinky] {
		return result("O", 0.95)
	}
	return Result{}, false
}

// matchC: index and middle tips hang below their PIP joints with the thumb
// held apart from the index.
func matchC(f *Features) (Result, bool) {
	if !f.Below(detector.IndexTip, detector.IndexPIP) || !f.Below(detector.MiddleTip, detector.MiddlePIP) {
		return Result{}, false
	}
	if f.Ratio(detector.ThumbTip, detector.IndexTip) > fingerGapRatio {
		return result("C", 0.88)
	}
	return Result{}, false
}

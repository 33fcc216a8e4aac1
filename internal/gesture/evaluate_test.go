package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/signspell/internal/detector"
)

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluate(t *testing.T) {
	a := letter(t, "A")
	b := letter(t, "B")
	palm := detector.OpenPalmLandmarks()

	samples := []LabeledSample{
		{Symbol: "A", Joints: a.Joints()},
		{Symbol: "A", Joints: a.Normalize().Joints()},
		{Symbol: "A", Joints: b.Joints()},
		{Symbol: "B", Joints: b.Joints()},
		{Symbol: "B", Joints: palm.Joints()},
	}

	report := NewClassifier().Evaluate(samples)

	if report.Total != 5 || report.Correct != 3 {
		t.Fatalf("expected 3/5 correct, got %d/%d", report.Correct, report.Total)
	}
	if !floatEqual(report.Accuracy, 0.6) {
		t.Errorf("expected accuracy 0.6, got %v", report.Accuracy)
	}

	statsA := report.Symbols["A"]
	if statsA == nil {
		t.Fatal("missing stats for A")
	}
	if statsA.Total != 3 || statsA.Correct != 2 {
		t.Errorf("A: expected 2/3, got %d/%d", statsA.Correct, statsA.Total)
	}
	if statsA.Confused["B"] != 1 {
		t.Errorf("A: expected one confusion with B, got %v", statsA.Confused)
	}

	statsB := report.Symbols["B"]
	if statsB.Confused[NoneLabel] != 1 {
		t.Errorf("B: expected one miss reported as %q, got %v", NoneLabel, statsB.Confused)
	}
	if !floatEqual(statsB.Accuracy, 0.5) {
		t.Errorf("B: expected accuracy 0.5, got %v", statsB.Accuracy)
	}

	names := report.SymbolNames()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("unexpected symbol names %v", names)
	}
}

func TestEvaluate_Empty(t *testing.T) {
	report := NewClassifier().Evaluate(nil)

	if report.Total != 0 || report.Accuracy != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if report.Symbols == nil {
		t.Error("Symbols map should be initialised")
	}
}

func TestEvaluate_MalformedSampleCountsAsNone(t *testing.T) {
	a := letter(t, "A")
	report := NewClassifier().Evaluate([]LabeledSample{{Symbol: "A", Joints: a.Joints()[:5]}})

	if report.Correct != 0 {
		t.Errorf("expected no correct samples, got %d", report.Correct)
	}
	if report.Symbols["A"].Confused[NoneLabel] != 1 {
		t.Errorf("expected malformed sample to count as %q", NoneLabel)
	}
}

func TestAveragePose(t *testing.T) {
	a := letter(t, "A")
	shifted := detector.Transform(a, 0, 1, 0.1, -0.2)

	avg, err := AveragePose([]detector.JointSet{a.Joints(), shifted.Joints()})
	if err != nil {
		t.Fatalf("AveragePose() error = %v", err)
	}
	if len(avg) != detector.NumLandmarks {
		t.Fatalf("expected %d joints, got %d", detector.NumLandmarks, len(avg))
	}

	w := avg[detector.Wrist]
	if !floatEqual(w.X, a.Points[detector.Wrist].X+0.05) || !floatEqual(w.Y, a.Points[detector.Wrist].Y-0.1) {
		t.Errorf("wrong averaged wrist %+v", w)
	}

	if got := Classify(avg); got.Symbol != "A" {
		t.Errorf("average of two A poses should still be A, got %q", got.Symbol)
	}
}

func TestAveragePose_Errors(t *testing.T) {
	if _, err := AveragePose(nil); err == nil {
		t.Error("expected error for no samples")
	}

	a := letter(t, "A")
	if _, err := AveragePose([]detector.JointSet{a.Joints(), a.Joints()[:3]}); err == nil {
		t.Error("expected error for incomplete sample")
	}
}

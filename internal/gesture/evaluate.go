package gesture

import (
	"fmt"
	"sort"

	"github.com/ayusman/signspell/internal/detector"
)

// LabeledSample is a recorded pose with the symbol the signer intended.
type LabeledSample struct {
	Symbol string
	Joints detector.JointSet
}

// SymbolStats summarises how samples of one expected symbol were classified.
type SymbolStats struct {
	Total    int            `json:"total"`
	Correct  int            `json:"correct"`
	Accuracy float64        `json:"accuracy"`
	Confused map[string]int `json:"confused,omitempty"` // got label -> count
}

// Report is the outcome of running the classifier over labeled samples.
type Report struct {
	Total    int                     `json:"total"`
	Correct  int                     `json:"correct"`
	Accuracy float64                 `json:"accuracy"`
	Symbols  map[string]*SymbolStats `json:"symbols"`
}

// Evaluate classifies every sample and tallies agreement with its label.
func (c *Classifier) Evaluate(samples []LabeledSample) Report {
	report := Report{Symbols: make(map[string]*SymbolStats)}

	for _, s := range samples {
		stats, ok := report.Symbols[s.Symbol]
		if !ok {
			stats = &SymbolStats{}
			report.Symbols[s.Symbol] = stats
		}

		got := c.Classify(s.Joints).Label()
		stats.Total++
		report.Total++
		if got == s.Symbol {
			stats.Correct++
			report.Correct++
			continue
		}
		if stats.Confused == nil {
			stats.Confused = make(map[string]int)
		}
		stats.Confused[got]++
	}

	for _, stats := range report.Symbols {
		stats.Accuracy = accuracy(stats.Correct, stats.Total)
	}
	report.Accuracy = accuracy(report.Correct, report.Total)
	return report
}

// SymbolNames returns the evaluated symbols in sorted order.
func (r Report) SymbolNames() []string {
	names := make([]string, 0, len(r.Symbols))
	for name := range r.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// AveragePose averages joint sets point by point into a single pose. Every
// set must be complete.
func AveragePose(sets []detector.JointSet) (detector.JointSet, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	for i, joints := range sets {
		if !joints.Complete() {
			return nil, fmt.Errorf("sample %d has %d landmarks, expected %d", i, len(joints), detector.NumLandmarks)
		}
	}

	averaged := make(detector.JointSet, detector.NumLandmarks)
	n := float64(len(sets))

	for i := 0; i < detector.NumLandmarks; i++ {
		var sumX, sumY, sumZ float64
		for _, joints := range sets {
			sumX += joints[i].X
			sumY += joints[i].Y
			sumZ += joints[i].Z
		}
		averaged[i] = detector.Point3D{
			X: sumX / n,
			Y: sumY / n,
			Z: sumZ / n,
		}
	}

	return averaged, nil
}

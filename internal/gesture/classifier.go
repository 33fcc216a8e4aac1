// Package gesture classifies a single hand pose into a fingerspelled letter
// using geometric relationships between landmarks.
package gesture

import "github.com/ayusman/signspell/internal/detector"

// NoneLabel is how a frame without a symbol is reported in summaries.
const NoneLabel = "none"

// Result is the classification of one frame. An empty Symbol means no match
// and always comes with zero confidence.
type Result struct {
	Symbol     string  `json:"symbol,omitempty"`
	Confidence float64 `json:"confidence"`
}

// None reports whether the result carries no symbol.
func (r Result) None() bool {
	return r.Symbol == ""
}

// Label returns the symbol, or NoneLabel when there is none.
func (r Result) Label() string {
	if r.None() {
		return NoneLabel
	}
	return r.Symbol
}

// Classifier evaluates an ordered rule list against each frame's joints.
// It holds no per-frame state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier using DefaultRules.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules())
}

// NewClassifierWithRules creates a Classifier evaluating rules in order.
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the result of the first matching rule. Joint sets that do
// not hold exactly one hand's joints yield an empty Result.
func (c *Classifier) Classify(joints detector.JointSet) Result {
	if !joints.Complete() {
		return Result{}
	}

	f := NewFeatures(joints)
	for _, rule := range c.rules {
		if r, ok := rule.Match(f); ok {
			return r
		}
	}
	return Result{}
}

// ClassifyHand classifies h. A nil hand yields an empty Result.
func (c *Classifier) ClassifyHand(h *detector.HandLandmarks) Result {
	return c.Classify(h.Joints())
}

// RuleNames lists the rules in evaluation order.
func (c *Classifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

var defaultClassifier = NewClassifier()

// Classify classifies joints with the default rule list.
func Classify(joints detector.JointSet) Result {
	return defaultClassifier.Classify(joints)
}

package domain

import "fmt"

const (
	// FinalExamPassPercent is the single source of the final exam pass mark;
	// the threshold label is generated from it.
	FinalExamPassPercent = 75
	FinalExamQuestions   = 4

	LabelCertified    = "Certified"
	LabelKeepStudying = "Keep Studying"
)

// Result is the scored outcome of an attempt.
type Result struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Passed    *bool  `json:"passed,omitempty"`
	Label     string `json:"label,omitempty"`
	Threshold string `json:"threshold,omitempty"`
}

// Passes compares in integers so that 3 of 4 meets 75% exactly.
func Passes(score, total, passPercent int) bool {
	if total <= 0 {
		return false
	}
	return score*100 >= passPercent*total
}

// ThresholdLabel is the pass mark shown to the user.
func ThresholdLabel(passPercent int) string {
	return fmt.Sprintf("Pass mark: %d%%", passPercent)
}

func NewResult(score, total, passPercent int) Result {
	r := Result{Score: score, Total: total}
	if total > 0 {
		r.Percent = score * 100 / total
	}
	if passPercent <= 0 {
		return r
	}
	passed := Passes(score, total, passPercent)
	r.Passed = &passed
	r.Label = LabelKeepStudying
	if passed {
		r.Label = LabelCertified
	}
	r.Threshold = ThresholdLabel(passPercent)
	return r
}

package domain

import "time"

// Session is one user's pass through the wizard.
type Session struct {
	SessionID   string          `json:"session_id"`
	UserID      string          `json:"user_id"`
	Record      ProjectRecord   `json:"record"`
	CurrentStep int             `json:"current_step"`
	Validity    map[StepID]bool `json:"validity"`
	Version     int64           `json:"version"`
	Status      string          `json:"status"`
	SubmittedAs string          `json:"submitted_as,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Session status constants
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// Step returns the id of the current step.
func (s *Session) Step() StepID {
	if s.CurrentStep < 0 || s.CurrentStep >= len(Steps) {
		return Steps[0]
	}
	return Steps[s.CurrentStep]
}

// Revalidate recomputes the per-step validity flags from the record.
func (s *Session) Revalidate() {
	s.Validity = ComputeValidity(s.Record)
}

// CanAdvance reports whether "Next" is enabled.
func (s *Session) CanAdvance() bool {
	return s.CurrentStep < len(Steps)-1 && s.Validity[s.Step()]
}

// Submission is the durable copy of a submitted record listed on the dashboard.
type Submission struct {
	PublicID    string        `json:"public_id"`
	UserID      string        `json:"user_id"`
	SessionID   string        `json:"session_id"`
	ProjectName string        `json:"project_name"`
	AssetClass  string        `json:"asset_class"`
	Complexity  Complexity    `json:"complexity"`
	Record      ProjectRecord `json:"record"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Summary is the derived view shown next to the wizard.
type Summary struct {
	SessionID           string          `json:"session_id"`
	CurrentStep         StepID          `json:"current_step"`
	Validity            map[StepID]bool `json:"validity"`
	CanAdvance          bool            `json:"can_advance"`
	Complexity          Complexity      `json:"complexity"`
	SuggestedYield      float64         `json:"suggested_yield"`
	TotalRaise          float64         `json:"total_raise"`
	CoverageRatio       float64         `json:"coverage_ratio"`
	AllocationRemaining float64         `json:"allocation_remaining"`
	ReadyToSubmit       bool            `json:"ready_to_submit"`
}

// Summarize derives the summary view of a session.
func Summarize(s *Session) Summary {
	ready := true
	for _, id := range Steps {
		if !s.Validity[id] {
			ready = false
			break
		}
	}
	if s.Record.TokenAllocation.Validate() != nil {
		ready = false
	}
	return Summary{
		SessionID:           s.SessionID,
		CurrentStep:         s.Step(),
		Validity:            s.Validity,
		CanAdvance:          s.CanAdvance(),
		Complexity:          ComplexityScore(s.Record.ProjectInfo.AssetClass, s.Record.ProjectInfo.TargetRaiseAmount),
		SuggestedYield:      DynamicYield(s.Record.Property.LockupMonths),
		TotalRaise:          TotalRaise(s.Record.Property),
		CoverageRatio:       CoverageRatio(s.Record.Property),
		AllocationRemaining: s.Record.TokenAllocation.Remaining(),
		ReadyToSubmit:       ready && s.Status == StatusDraft,
	}
}

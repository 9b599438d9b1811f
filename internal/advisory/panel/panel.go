package panel

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

var (
	ErrUnknownKind    = errors.New("unknown advisory panel")
	ErrPanelBusy      = errors.New("advisory panel is already loading")
	ErrInputTooShort  = errors.New("panel input too short")
	ErrInputMissing   = errors.New("panel input missing")
	ErrNoResult       = errors.New("advisory panel has no result")
	ErrNotRetryable   = errors.New("advisory panel is not in error state")
	ErrNotApplicable  = errors.New("advisory result cannot be applied to the record")
	ErrAlreadyApplied = errors.New("advisory result already applied")
)

type Kind string

const (
	KindAssetAutofill  Kind = "asset_autofill"
	KindTokenomics     Kind = "tokenomics"
	KindYieldEstimate  Kind = "yield_estimate"
	KindBusinessPlan   Kind = "business_plan"
	KindDeepStrategy   Kind = "deep_strategy"
	KindQuiz           Kind = "quiz"
	KindTokenizability Kind = "tokenizability"
	KindCaseStudy      Kind = "case_study"
)

// Kinds lists every panel in display order.
var Kinds = []Kind{
	KindAssetAutofill, KindTokenomics, KindYieldEstimate, KindBusinessPlan,
	KindDeepStrategy, KindQuiz, KindTokenizability, KindCaseStudy,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Applicable reports whether results of this kind can be merged into the record.
func (k Kind) Applicable() bool {
	switch k {
	case KindAssetAutofill, KindTokenomics, KindYieldEstimate, KindBusinessPlan:
		return true
	}
	return false
}

// minTextLen is the minimum trimmed input length, in runes, for text-driven panels.
var minTextLen = map[Kind]int{
	KindAssetAutofill:  10,
	KindDeepStrategy:   5,
	KindQuiz:           5,
	KindTokenizability: 10,
	KindCaseStudy:      5,
}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateResult  State = "result"
	StateError   State = "error"
)

// Input is what the user typed into a panel. Record-driven panels ignore Text.
type Input struct {
	Text string `json:"text"`
}

// View is the externally visible state of one panel.
type View struct {
	SessionID string    `json:"session_id"`
	Kind      Kind      `json:"kind"`
	State     State     `json:"state"`
	Input     Input     `json:"input"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Applied   bool      `json:"applied"`
	UpdatedAt time.Time `json:"updated_at"`
}

// checkInput applies the trigger guard of a panel kind.
func checkInput(kind Kind, in Input, rec domain.ProjectRecord) error {
	if min, ok := minTextLen[kind]; ok {
		if n := utf8.RuneCountInString(strings.TrimSpace(in.Text)); n < min {
			return fmt.Errorf("%w: %s needs at least %d characters, got %d", ErrInputTooShort, kind, min, n)
		}
		return nil
	}

	switch kind {
	case KindBusinessPlan:
		if strings.TrimSpace(rec.Property.Title) == "" {
			return fmt.Errorf("%w: property title", ErrInputMissing)
		}
	case KindTokenomics, KindYieldEstimate:
		if rec.Property.TotalValue <= 0 {
			return fmt.Errorf("%w: property total value", ErrInputMissing)
		}
	}
	return nil
}

package domain

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Question is one multiple-choice question. Answer is the index of the
// correct option.
type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Options     []string `json:"options" yaml:"options"`
	Answer      int      `json:"-" yaml:"answer"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation"`
}

// noAnswer marks a catalog question whose answer key is absent.
const noAnswer = -1

var questionKeys = map[string]bool{"id": true, "prompt": true, "options": true, "answer": true, "explanation": true}

type questionFields Question

// UnmarshalYAML keeps a missing answer key apart from answer 0.
func (q *Question) UnmarshalYAML(value *yaml.Node) error {
	hasAnswer := false
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i].Value
			if !questionKeys[key] {
				return fmt.Errorf("line %d: field %s not found in type domain.Question", value.Content[i].Line, key)
			}
			if key == "answer" {
				hasAnswer = true
			}
		}
	}
	if err := value.Decode((*questionFields)(q)); err != nil {
		return err
	}
	if !hasAnswer {
		q.Answer = noAnswer
	}
	return nil
}

// Validate checks that a question can be answered.
func (q Question) Validate() error {
	if q.Answer == noAnswer {
		return fmt.Errorf("%w: %q has no answer", ErrInvalidQuestion, q.Prompt)
	}
	if q.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %q needs at least two options", ErrInvalidQuestion, q.Prompt)
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return fmt.Errorf("%w: %q answer %d out of range", ErrInvalidQuestion, q.Prompt, q.Answer)
	}
	return nil
}

type AttemptKind string

const (
	KindModuleQuiz AttemptKind = "module_quiz"
	KindFinalExam  AttemptKind = "final_exam"
	KindGenerated  AttemptKind = "generated"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusQuestion   Status = "question"
	StatusAnswered   Status = "answered"
	StatusResult     Status = "result"
)

// Attempt is one run through a quiz.
//
//	not_started -> question[0] -> answered -> question[1] -> ... -> result
type Attempt struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Kind            AttemptKind `json:"kind"`
	SourceID        string      `json:"source_id,omitempty"`
	Title           string      `json:"title"`
	Questions       []Question  `json:"questions"`
	Keys            []int       `json:"keys"`
	Status          Status      `json:"status"`
	Index           int         `json:"index"`
	Selected        *int        `json:"selected"`
	Score           int         `json:"score"`
	PassPercent     int         `json:"pass_percent,omitempty"`
	CertificationID string      `json:"certification_id,omitempty"`
	Version         int64       `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewAttempt builds an attempt over the given questions. passPercent 0 means
// the attempt is scored without a pass/fail verdict.
func NewAttempt(userID string, kind AttemptKind, sourceID, title string, questions []Question, passPercent int) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	keys := make([]int, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		keys[i] = q.Answer
	}
	return &Attempt{
		UserID:      userID,
		Kind:        kind,
		SourceID:    sourceID,
		Title:       title,
		Questions:   questions,
		Keys:        keys,
		Status:      StatusNotStarted,
		PassPercent: passPercent,
	}, nil
}

// Start shows the first question.
func (a *Attempt) Start() error {
	if a.Status != StatusNotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, a.Status)
	}
	a.Status = StatusQuestion
	a.Index = 0
	a.Selected = nil
	return nil
}

// Answer selects an option for the current question. Only the first
// selection counts; later ones fail with ErrAlreadyAnswered and change nothing.
func (a *Attempt) Answer(option int) (bool, error) {
	switch a.Status {
	case StatusAnswered:
		return false, ErrAlreadyAnswered
	case StatusQuestion:
	default:
		return false, fmt.Errorf("%w: answer from %s", ErrInvalidTransition, a.Status)
	}
	if option < 0 || option >= len(a.Questions[a.Index].Options) {
		return false, fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}

	a.Selected = &option
	a.Status = StatusAnswered
	correct := option == a.Keys[a.Index]
	if correct {
		a.Score++
	}
	return correct, nil
}

// Advance moves past an answered question, clearing the selection. After the
// last question the attempt is finished.
func (a *Attempt) Advance() error {
	if a.Status != StatusAnswered {
		return fmt.Errorf("%w: advance from %s", ErrInvalidTransition, a.Status)
	}
	a.Selected = nil
	if a.Index+1 < len(a.Questions) {
		a.Index++
		a.Status = StatusQuestion
		return nil
	}
	a.Status = StatusResult
	return nil
}

// Current returns the question on screen, or nil outside the question states.
func (a *Attempt) Current() *Question {
	if a.Status != StatusQuestion && a.Status != StatusAnswered {
		return nil
	}
	return &a.Questions[a.Index]
}

// Result is only meaningful once Status is StatusResult.
func (a *Attempt) Result() Result {
	return NewResult(a.Score, len(a.Questions), a.PassPercent)
}

// Finished reports whether the attempt reached its result.
func (a *Attempt) Finished() bool {
	return a.Status == StatusResult
}

// Passed reports whether a finished, graded attempt met its pass mark.
func (a *Attempt) Passed() bool {
	r := a.Result()
	return a.Finished() && r.Passed != nil && *r.Passed
}

// AttemptView is what a client sees: the answer key of a question is only
// revealed after it has been answered.
type AttemptView struct {
	ID              string      `json:"id"`
	Kind            AttemptKind `json:"kind"`
	SourceID        string      `json:"source_id,omitempty"`
	Title           string      `json:"title"`
	Status          Status      `json:"status"`
	Index           int         `json:"index"`
	Total           int         `json:"total"`
	Question        *Question   `json:"question,omitempty"`
	Selected        *int        `json:"selected"`
	Correct         *int        `json:"correct,omitempty"`
	Score           int         `json:"score"`
	Result          *Result     `json:"result,omitempty"`
	CertificationID string      `json:"certification_id,omitempty"`
}

func (a *Attempt) View() AttemptView {
	v := AttemptView{
		ID:              a.ID,
		Kind:            a.Kind,
		SourceID:        a.SourceID,
		Title:           a.Title,
		Status:          a.Status,
		Index:           a.Index,
		Total:           len(a.Questions),
		Question:        a.Current(),
		Selected:        a.Selected,
		Score:           a.Score,
		CertificationID: a.CertificationID,
	}
	if a.Status == StatusAnswered {
		key := a.Keys[a.Index]
		v.Correct = &key
	}
	if a.Finished() {
		r := a.Result()
		v.Result = &r
	}
	return v
}

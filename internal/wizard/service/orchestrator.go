package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

// SessionStore is the persistence the orchestrator needs for live sessions.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// SubmissionStore keeps the durable copy of submitted records.
type SubmissionStore interface {
	Create(ctx context.Context, sub *domain.Submission) error
	ListByUser(ctx context.Context, userID string) ([]domain.Submission, error)
	Get(ctx context.Context, userID, publicID string) (*domain.Submission, error)
}

// Orchestrator owns the aggregate record of each wizard session. Every write
// goes through one merge path that recomputes step validity afterwards.
type Orchestrator struct {
	sessions    SessionStore
	submissions SubmissionStore
}

// NewOrchestrator creates an Orchestrator. submissions may be nil, in which
// case Submit and the submission listings fail with ErrSubmissionsOff.
func NewOrchestrator(sessions SessionStore, submissions SubmissionStore) *Orchestrator {
	return &Orchestrator{sessions: sessions, submissions: submissions}
}

// Start opens a new session with the default record on the first step.
func (o *Orchestrator) Start(ctx context.Context, userID string) (*domain.Session, error) {
	s := &domain.Session{
		UserID:      userID,
		Record:      domain.NewProjectRecord(),
		CurrentStep: 0,
		Status:      domain.StatusDraft,
	}
	s.Revalidate()

	if err := o.sessions.Create(ctx, s); err != nil {
		observability.NewLogger(ctx).LogError("wizard_start", err)
		return nil, err
	}
	observability.NewLogger(ctx).LogInfof("wizard_start", "session_id=%s user_id=%s", s.SessionID, userID)
	return s, nil
}

// Get returns a session owned by userID.
func (o *Orchestrator) Get(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	s, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (o *Orchestrator) List(ctx context.Context, userID string) ([]domain.Session, error) {
	return o.sessions.ListByUser(ctx, userID)
}

// Discard deletes a session.
func (o *Orchestrator) Discard(ctx context.Context, userID, sessionID string) error {
	if _, err := o.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	return o.sessions.Delete(ctx, sessionID)
}

// UpdateData shallow-merges partial into one section of the aggregate.
func (o *Orchestrator) UpdateData(ctx context.Context, userID, sessionID string, section domain.Section, partial json.RawMessage) (*domain.Session, error) {
	return o.editRecord(ctx, userID, sessionID, "update_data", func(r *domain.ProjectRecord) error {
		return r.Merge(section, partial)
	})
}

// UpdateFields is UpdateData for in-process callers such as advisory panels.
func (o *Orchestrator) UpdateFields(ctx context.Context, userID, sessionID string, section domain.Section, fields map[string]any) (*domain.Session, error) {
	return o.editRecord(ctx, userID, sessionID, "update_fields", func(r *domain.ProjectRecord) error {
		return r.MergeFields(section, fields)
	})
}

// ToggleBlockedCountry flips a jurisdiction code in the compliance block list.
func (o *Orchestrator) ToggleBlockedCountry(ctx context.Context, userID, sessionID, code string) (*domain.Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: country code", domain.ErrEmptyValue)
	}
	return o.editRecord(ctx, userID, sessionID, "toggle_blocked_country", func(r *domain.ProjectRecord) error {
		r.ToggleBlockedCountry(code)
		return nil
	})
}

// ToggleMarketingChannel flips a distribution channel.
func (o *Orchestrator) ToggleMarketingChannel(ctx context.Context, userID, sessionID, channel string) (*domain.Session, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, fmt.Errorf("%w: marketing channel", domain.ErrEmptyValue)
	}
	return o.editRecord(ctx, userID, sessionID, "toggle_marketing_channel", func(r *domain.ProjectRecord) error {
		r.ToggleMarketingChannel(channel)
		return nil
	})
}

// ApplySuggestedYield copies the dynamic yield for the current lock-up into
// annual_yield. It only ever runs on explicit request.
func (o *Orchestrator) ApplySuggestedYield(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return o.editRecord(ctx, userID, sessionID, "apply_suggested_yield", func(r *domain.ProjectRecord) error {
		y := domain.DynamicYield(r.Property.LockupMonths)
		r.Property.AnnualYield = &y
		return nil
	})
}

// Next advances one step when the current step is valid.
func (o *Orchestrator) Next(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return o.navigate(ctx, userID, sessionID, "next", func(s *domain.Session) error {
		if s.CurrentStep >= len(domain.Steps)-1 {
			return domain.ErrAtLastStep
		}
		if !s.Validity[s.Step()] {
			return fmt.Errorf("%w: %s", domain.ErrStepInvalid, s.Step())
		}
		s.CurrentStep++
		return nil
	})
}

// Back moves one step backwards; always allowed except on the first step.
func (o *Orchestrator) Back(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return o.navigate(ctx, userID, sessionID, "back", func(s *domain.Session) error {
		if s.CurrentStep <= 0 {
			return domain.ErrAtFirstStep
		}
		s.CurrentStep--
		return nil
	})
}

// GoTo jumps to a step. Backward jumps are free; a forward jump requires every
// step before the target to be valid, so no invalid step can be skipped.
func (o *Orchestrator) GoTo(ctx context.Context, userID, sessionID string, step domain.StepID) (*domain.Session, error) {
	target := domain.StepIndex(step)
	if target < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStep, step)
	}
	return o.navigate(ctx, userID, sessionID, "goto", func(s *domain.Session) error {
		if target > s.CurrentStep {
			for i := 0; i < target; i++ {
				if !s.Validity[domain.Steps[i]] {
					return fmt.Errorf("%w: %s", domain.ErrStepInvalid, domain.Steps[i])
				}
			}
		}
		s.CurrentStep = target
		return nil
	})
}

// Summary returns the derived view of a session.
func (o *Orchestrator) Summary(ctx context.Context, userID, sessionID string) (*domain.Summary, error) {
	s, err := o.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sum := domain.Summarize(s)
	return &sum, nil
}

// Submit freezes a complete session and stores its durable copy.
func (o *Orchestrator) Submit(ctx context.Context, userID, sessionID string) (*domain.Submission, error) {
	if o.submissions == nil {
		return nil, domain.ErrSubmissionsOff
	}
	logger := observability.NewLogger(ctx)

	s, err := o.mutate(ctx, userID, sessionID, func(s *domain.Session) error {
		if s.Status != domain.StatusDraft {
			return domain.ErrSessionSubmitted
		}
		s.Revalidate()
		for _, id := range domain.Steps {
			if !s.Validity[id] {
				return fmt.Errorf("%w: %s", domain.ErrStepsIncomplete, id)
			}
		}
		if err := s.Record.TokenAllocation.Validate(); err != nil {
			return err
		}
		s.Status = domain.StatusSubmitted
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := s.Record.ProjectInfo
	sub := &domain.Submission{
		UserID:      userID,
		SessionID:   sessionID,
		ProjectName: info.ProjectName,
		AssetClass:  info.AssetClass,
		Complexity:  domain.ComplexityScore(info.AssetClass, info.TargetRaiseAmount),
		Record:      s.Record,
	}
	if err := o.submissions.Create(ctx, sub); err != nil {
		logger.LogError("wizard_submit", err)
		// reopen the session so the user can retry
		if _, rerr := o.mutate(ctx, userID, sessionID, func(s *domain.Session) error {
			s.Status = domain.StatusDraft
			return nil
		}); rerr != nil {
			logger.LogError("wizard_submit_reopen", rerr)
		}
		return nil, fmt.Errorf("store submission: %w", err)
	}

	if _, err := o.mutate(ctx, userID, sessionID, func(s *domain.Session) error {
		s.SubmittedAs = sub.PublicID
		return nil
	}); err != nil {
		logger.LogWarnf("wizard_submit", "could not link session %s to %s: %v", sessionID, sub.PublicID, err)
	}

	observability.RecordSubmission()
	logger.LogInfof("wizard_submit", "session_id=%s public_id=%s complexity=%s", sessionID, sub.PublicID, sub.Complexity)
	return sub, nil
}

func (o *Orchestrator) ListSubmissions(ctx context.Context, userID string) ([]domain.Submission, error) {
	if o.submissions == nil {
		return nil, domain.ErrSubmissionsOff
	}
	return o.submissions.ListByUser(ctx, userID)
}

func (o *Orchestrator) GetSubmission(ctx context.Context, userID, publicID string) (*domain.Submission, error) {
	if o.submissions == nil {
		return nil, domain.ErrSubmissionsOff
	}
	return o.submissions.Get(ctx, userID, publicID)
}

func (o *Orchestrator) editRecord(ctx context.Context, userID, sessionID, op string, fn func(*domain.ProjectRecord) error) (*domain.Session, error) {
	s, err := o.mutate(ctx, userID, sessionID, func(s *domain.Session) error {
		if s.Status != domain.StatusDraft {
			return domain.ErrSessionSubmitted
		}
		if err := fn(&s.Record); err != nil {
			return err
		}
		s.Revalidate()
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			observability.NewLogger(ctx).LogError(op, err)
		}
		return nil, err
	}
	observability.RecordSectionMerge()
	return s, nil
}

func (o *Orchestrator) navigate(ctx context.Context, userID, sessionID, op string, fn func(*domain.Session) error) (*domain.Session, error) {
	s, err := o.mutate(ctx, userID, sessionID, func(s *domain.Session) error {
		s.Revalidate()
		return fn(s)
	})
	if err != nil {
		return nil, err
	}
	observability.NewLogger(ctx).LogInfof(op, "session_id=%s step=%s", sessionID, s.Step())
	return s, nil
}

func (o *Orchestrator) mutate(ctx context.Context, userID, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	return o.sessions.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.UserID != userID {
			return domain.ErrSessionNotFound
		}
		return fn(s)
	})
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrSessionNotFound, domain.ErrSessionSubmitted, domain.ErrUnknownSection,
		domain.ErrUnknownField, domain.ErrInvalidPatch, domain.ErrEmptyValue,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

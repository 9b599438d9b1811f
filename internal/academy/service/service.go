package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
)

type AttemptStore interface {
	Create(ctx context.Context, a *domain.Attempt) error
	Get(ctx context.Context, id string) (*domain.Attempt, error)
	Update(ctx context.Context, id string, fn func(*domain.Attempt) error) (*domain.Attempt, error)
}

type CertificationStore interface {
	Create(ctx context.Context, c *domain.Certification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Certification, error)
}

// QuizSource hands out quizzes generated by the advisory quiz panel.
type QuizSource interface {
	QuizResult(userID, sessionID string) (*advisory.QuizSet, error)
}

// Service runs quiz attempts over the catalog.
type Service struct {
	catalog *catalog.Catalog
	store   AttemptStore
	certs   CertificationStore
	quizzes QuizSource
	pick    func(n, k int) []int
}

// NewService creates the academy service. certs and quizzes may be nil.
func NewService(c *catalog.Catalog, store AttemptStore, certs CertificationStore, quizzes QuizSource) *Service {
	return &Service{
		catalog: c,
		store:   store,
		certs:   certs,
		quizzes: quizzes,
		pick:    func(n, k int) []int { return rand.Perm(n)[:k] },
	}
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// StartQuiz opens an attempt over a module quiz.
func (s *Service) StartQuiz(ctx context.Context, userID, quizID string) (*domain.Attempt, error) {
	q, err := s.catalog.Quiz(quizID)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, userID, domain.KindModuleQuiz, q.ID, q.Title, q.Questions, 0)
}

// StartFinalExam draws the shown questions from the exam bank.
func (s *Service) StartFinalExam(ctx context.Context, userID string) (*domain.Attempt, error) {
	fe := s.catalog.FinalExam
	idx := s.pick(len(fe.Questions), fe.QuestionsShown)
	qs := make([]domain.Question, 0, len(idx))
	for _, i := range idx {
		qs = append(qs, fe.Questions[i])
	}
	return s.open(ctx, userID, domain.KindFinalExam, fe.ID, fe.Title, qs, domain.FinalExamPassPercent)
}

// StartGenerated opens an attempt over the quiz the advisory panel produced
// for a wizard session.
func (s *Service) StartGenerated(ctx context.Context, userID, sessionID string) (*domain.Attempt, error) {
	if s.quizzes == nil {
		return nil, domain.ErrQuizNotFound
	}
	set, err := s.quizzes.QuizResult(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuizNotFound, err)
	}
	qs := make([]domain.Question, 0, len(set.Questions))
	for i, q := range set.Questions {
		qs = append(qs, domain.Question{
			ID:          fmt.Sprintf("g-%d", i+1),
			Prompt:      q.Prompt,
			Options:     q.Options,
			Answer:      q.AnswerIndex,
			Explanation: q.Explanation,
		})
	}
	return s.open(ctx, userID, domain.KindGenerated, sessionID, set.Topic, qs, 0)
}

func (s *Service) open(ctx context.Context, userID string, kind domain.AttemptKind, sourceID, title string, qs []domain.Question, passPercent int) (*domain.Attempt, error) {
	a, err := domain.NewAttempt(userID, kind, sourceID, title, qs, passPercent)
	if err != nil {
		return nil, err
	}
	if err := a.Start(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, a); err != nil {
		observability.NewLogger(ctx).LogError("academy_start", err)
		return nil, err
	}
	observability.NewLogger(ctx).LogInfof("academy_start", "attempt_id=%s kind=%s source=%s", a.ID, kind, sourceID)
	return a, nil
}

func (s *Service) Get(ctx context.Context, userID, attemptID string) (*domain.Attempt, error) {
	a, err := s.store.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, domain.ErrAttemptNotFound
	}
	return a, nil
}

// Answer selects an option on the current question.
func (s *Service) Answer(ctx context.Context, userID, attemptID string, option int) (*domain.Attempt, error) {
	return s.mutate(ctx, userID, attemptID, func(a *domain.Attempt) error {
		_, err := a.Answer(option)
		return err
	})
}

// Advance moves to the next question. Finishing a passed final exam issues a
// certification.
func (s *Service) Advance(ctx context.Context, userID, attemptID string) (*domain.Attempt, error) {
	a, err := s.mutate(ctx, userID, attemptID, func(a *domain.Attempt) error {
		return a.Advance()
	})
	if err != nil {
		return nil, err
	}
	if a.Kind != domain.KindFinalExam || !a.Passed() || s.certs == nil {
		return a, nil
	}
	return s.certify(ctx, a)
}

func (s *Service) certify(ctx context.Context, a *domain.Attempt) (*domain.Attempt, error) {
	logger := observability.NewLogger(ctx)
	r := a.Result()
	cert := &domain.Certification{
		UserID:    a.UserID,
		AttemptID: a.ID,
		ExamTitle: a.Title,
		Score:     r.Score,
		Total:     r.Total,
		Percent:   r.Percent,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		// the result stands either way; Certify can be retried
		if !errors.Is(err, domain.ErrAlreadyCertified) {
			logger.LogError("academy_certify", err)
		}
		return a, nil
	}

	updated, err := s.store.Update(ctx, a.ID, func(a *domain.Attempt) error {
		a.CertificationID = cert.ID
		return nil
	})
	if err != nil {
		logger.LogWarnf("academy_certify", "could not link attempt %s to certification %s: %v", a.ID, cert.ID, err)
		a.CertificationID = cert.ID
		return a, nil
	}
	logger.LogInfof("academy_certify", "attempt_id=%s certification_id=%s score=%d/%d", a.ID, cert.ID, r.Score, r.Total)
	return updated, nil
}

// Certify issues the certification of a passed final exam that has none yet.
func (s *Service) Certify(ctx context.Context, userID, attemptID string) (*domain.Attempt, error) {
	if s.certs == nil {
		return nil, domain.ErrCertificationsOff
	}
	a, err := s.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Kind != domain.KindFinalExam || !a.Passed() {
		return nil, fmt.Errorf("%w: attempt has not passed the final exam", domain.ErrInvalidTransition)
	}
	if a.CertificationID != "" {
		return a, nil
	}
	return s.certify(ctx, a)
}

func (s *Service) ListCertifications(ctx context.Context, userID string) ([]domain.Certification, error) {
	if s.certs == nil {
		return nil, domain.ErrCertificationsOff
	}
	return s.certs.ListByUser(ctx, userID)
}

func (s *Service) mutate(ctx context.Context, userID, attemptID string, fn func(*domain.Attempt) error) (*domain.Attempt, error) {
	return s.store.Update(ctx, attemptID, func(a *domain.Attempt) error {
		if a.UserID != userID {
			return domain.ErrAttemptNotFound
		}
		return fn(a)
	})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
)

func (h *Handler) catalog(c *gin.Context) {
	cat := h.svc.Catalog()
	quizzes := make([]quizSummary, 0, len(cat.Quizzes))
	for _, q := range cat.Quizzes {
		quizzes = append(quizzes, quizSummary{ID: q.ID, Title: q.Title, Questions: len(q.Questions)})
	}
	c.JSON(http.StatusOK, gin.H{
		"pages":           cat.Pages,
		"learning_panels": cat.LearningPanels,
		"quizzes":         quizzes,
		"final_exam": examSummary{
			ID:             cat.FinalExam.ID,
			Title:          cat.FinalExam.Title,
			QuestionsShown: cat.FinalExam.QuestionsShown,
			PassPercent:    domain.FinalExamPassPercent,
			Threshold:      domain.ThresholdLabel(domain.FinalExamPassPercent),
		},
	})
}

func (h *Handler) page(c *gin.Context) {
	p, err := h.svc.Catalog().Page(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": p})
}

func (h *Handler) learningPanel(c *gin.Context) {
	lp, err := h.svc.Catalog().LearningPanel(c.Param("asset_class"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"learning_panel": lp})
}

func (h *Handler) startAttempt(c *gin.Context) {
	var req startAttemptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	userID := auth.UserFirebaseUID(c)

	var (
		a   *domain.Attempt
		err error
	)
	switch req.Kind {
	case domain.KindModuleQuiz:
		a, err = h.svc.StartQuiz(ctx, userID, req.QuizID)
	case domain.KindFinalExam:
		a, err = h.svc.StartFinalExam(ctx, userID)
	case domain.KindGenerated:
		a, err = h.svc.StartGenerated(ctx, userID, req.SessionID)
	default:
		err = domain.ErrUnknownAttemptKind
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attempt": a.View()})
}

func (h *Handler) getAttempt(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": a.View()})
}

func (h *Handler) answer(c *gin.Context) {
	var req answerReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Option == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option is required"})
		return
	}
	a, err := h.svc.Answer(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), *req.Option)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": a.View()})
}

func (h *Handler) advance(c *gin.Context) {
	a, err := h.svc.Advance(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": a.View()})
}

func (h *Handler) certify(c *gin.Context) {
	a, err := h.svc.Certify(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": a.View()})
}

func (h *Handler) certifications(c *gin.Context) {
	list, err := h.svc.ListCertifications(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certifications": list})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrPageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrUnknownAttemptKind):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConcurrentUpdate):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCertificationsOff):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		observability.NewLogger(c.Request.Context()).LogError("academy_http", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

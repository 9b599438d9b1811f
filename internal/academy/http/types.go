package http

import "github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"

type startAttemptReq struct {
	Kind      domain.AttemptKind `json:"kind"`
	QuizID    string             `json:"quiz_id"`
	SessionID string             `json:"session_id"`
}

type answerReq struct {
	Option *int `json:"option"`
}

type quizSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
}

type examSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	QuestionsShown int    `json:"questions_shown"`
	PassPercent    int    `json:"pass_percent"`
	Threshold      string `json:"threshold"`
}

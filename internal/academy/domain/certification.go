package domain

import "time"

// Certification is issued once per passed final exam attempt.
type Certification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AttemptID string    `json:"attempt_id"`
	ExamTitle string    `json:"exam_title"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Percent   int       `json:"percent"`
	IssuedAt  time.Time `json:"issued_at"`
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
)

// CertificationRepository stores issued certifications in PostgreSQL.
//
//	CREATE TABLE certifications (
//	    id          UUID PRIMARY KEY,
//	    user_id     TEXT NOT NULL,
//	    attempt_id  TEXT NOT NULL UNIQUE,
//	    exam_title  TEXT NOT NULL,
//	    score       INT NOT NULL,
//	    total       INT NOT NULL,
//	    percent     INT NOT NULL,
//	    issued_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type CertificationRepository struct {
	db *sql.DB
}

func NewCertificationRepository(db *sql.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a certification. A second certification for the same
// attempt fails with ErrAlreadyCertified.
func (r *CertificationRepository) Create(ctx context.Context, c *domain.Certification) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT INTO certifications (id, user_id, attempt_id, exam_title, score, total, percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING issued_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.AttemptID, c.ExamTitle, c.Score, c.Total, c.Percent,
	).Scan(&c.IssuedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyCertified
	}
	if err != nil {
		return fmt.Errorf("failed to create certification: %w", err)
	}
	return nil
}

// ListByUser returns a user's certifications, newest first.
func (r *CertificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Certification, error) {
	query := `
		SELECT id, user_id, attempt_id, exam_title, score, total, percent, issued_at
		FROM certifications
		WHERE user_id = $1
		ORDER BY issued_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	defer rows.Close()

	out := []domain.Certification{}
	for rows.Next() {
		var c domain.Certification
		if err := rows.Scan(&c.ID, &c.UserID, &c.AttemptID, &c.ExamTitle, &c.Score, &c.Total, &c.Percent, &c.IssuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan certification: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate certifications: %w", err)
	}
	return out, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
)

func setupCertificationRepo(t *testing.T) (*CertificationRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewCertificationRepository(db), mock, db
}

func TestCertificationRepository_Create(t *testing.T) {
	repo, mock, db := setupCertificationRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("creates certification", func(t *testing.T) {
		issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		c := &domain.Certification{UserID: "u1", AttemptID: "a1", ExamTitle: "Exam", Score: 3, Total: 4, Percent: 75}

		mock.ExpectQuery(`INSERT INTO certifications`).
			WithArgs(sqlmock.AnyArg(), "u1", "a1", "Exam", 3, 4, 75).
			WillReturnRows(sqlmock.NewRows([]string{"issued_at"}).AddRow(issued))

		require.NoError(t, repo.Create(ctx, c))
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, issued, c.IssuedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate attempt", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO certifications`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

		err := repo.Create(ctx, &domain.Certification{UserID: "u1", AttemptID: "a1"})
		assert.ErrorIs(t, err, domain.ErrAlreadyCertified)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO certifications`).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, &domain.Certification{UserID: "u1", AttemptID: "a2"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrAlreadyCertified)
		assert.Contains(t, err.Error(), "connection reset")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCertificationRepository_ListByUser(t *testing.T) {
	repo, mock, db := setupCertificationRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "attempt_id", "exam_title", "score", "total", "percent", "issued_at"}).
		AddRow("c2", "u1", "a2", "Exam", 4, 4, 100, now).
		AddRow("c1", "u1", "a1", "Exam", 3, 4, 75, now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT (.+) FROM certifications WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, 75, got[1].Percent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificationRepository_ListEmpty(t *testing.T) {
	repo, mock, db := setupCertificationRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM certifications`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "attempt_id", "exam_title", "score", "total", "percent", "issued_at"}))

	got, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

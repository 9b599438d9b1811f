package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

// SubmissionRepository persists submitted project records in postgres.
//
//	create table submissions (
//	  public_id    text primary key,
//	  user_id      text not null,
//	  session_id   text not null,
//	  project_name text not null,
//	  asset_class  text not null,
//	  complexity   text not null,
//	  record       jsonb not null,
//	  created_at   timestamptz not null default now()
//	);
type SubmissionRepository struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	record, err := json.Marshal(sub.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	for i := 0; i < 5; i++ {
		publicID, err := domain.NewPublicID(domain.SubmissionIDPrefix)
		if err != nil {
			return err
		}

		const q = `
insert into submissions (public_id, user_id, session_id, project_name, asset_class, complexity, record)
values ($1, $2, $3, $4, $5, $6, $7)
returning created_at;
`
		err = r.db.QueryRow(ctx, q, publicID, sub.UserID, sub.SessionID, sub.ProjectName,
			sub.AssetClass, string(sub.Complexity), record).Scan(&sub.CreatedAt)
		if err == nil {
			sub.PublicID = publicID
			return nil
		}

		// unique violation on public_id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	return fmt.Errorf("failed to generate unique submission id")
}

func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Submission, error) {
	const q = `
select public_id, user_id, session_id, project_name, asset_class, complexity, record, created_at
from submissions
where user_id = $1
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Submission, 0, 16)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) Get(ctx context.Context, userID, publicID string) (*domain.Submission, error) {
	const q = `
select public_id, user_id, session_id, project_name, asset_class, complexity, record, created_at
from submissions
where user_id = $1 and public_id = $2;
`
	sub, err := scanSubmission(r.db.QueryRow(ctx, q, userID, publicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	return sub, err
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		sub        domain.Submission
		complexity string
		record     []byte
	)
	if err := row.Scan(&sub.PublicID, &sub.UserID, &sub.SessionID, &sub.ProjectName,
		&sub.AssetClass, &complexity, &record, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Complexity = domain.Complexity(complexity)
	if err := json.Unmarshal(record, &sub.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &sub, nil
}

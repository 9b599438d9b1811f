package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
)

const (
	attemptKeyPrefix = "academy:attempt:" // academy:attempt:{attempt_id}
	attemptTTL       = 24 * time.Hour
	maxTxRetries     = 5
)

// AttemptRepository keeps quiz attempts in Redis.
type AttemptRepository struct {
	client *redis.Client
}

func NewAttemptRepository(client *redis.Client) *AttemptRepository {
	return &AttemptRepository{client: client}
}

func (r *AttemptRepository) Create(ctx context.Context, a *domain.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	if err := r.client.Set(ctx, attemptKey(a.ID), data, attemptTTL).Err(); err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Get(ctx context.Context, id string) (*domain.Attempt, error) {
	data, err := r.client.Get(ctx, attemptKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return decodeAttempt(data)
}

// Update applies fn inside a WATCH transaction so two clicks on the same
// attempt cannot both be scored.
func (r *AttemptRepository) Update(ctx context.Context, id string, fn func(*domain.Attempt) error) (*domain.Attempt, error) {
	key := attemptKey(id)

	for i := 0; i < maxTxRetries; i++ {
		var updated *domain.Attempt
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return domain.ErrAttemptNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to get attempt: %w", err)
			}
			a, err := decodeAttempt(data)
			if err != nil {
				return err
			}
			if err := fn(a); err != nil {
				return err
			}
			a.Version++
			a.UpdatedAt = time.Now().UTC()

			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to marshal attempt: %w", err)
			}
			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, attemptTTL)
				return nil
			}); err != nil {
				return err
			}
			updated = a
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

func decodeAttempt(data []byte) (*domain.Attempt, error) {
	var a domain.Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt: %w", err)
	}
	return &a, nil
}

func attemptKey(id string) string {
	return attemptKeyPrefix + id
}

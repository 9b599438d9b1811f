package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix          = "wizard:session:" // Key prefix for session data: wizard:session:{session_id}
	userSessionSetPrefix      = "wizard:user:"    // Set of session IDs for a user: wizard:user:{user_id}:sessions
	sessionEventChannelPrefix = "wizard:events:"  // Pub/Sub channel for session events: wizard:events:{session_id}
	sessionTTL                = 24 * time.Hour    // TTL refreshed on every write
	maxTxRetries              = 5
)

// SessionRepository handles Redis operations for wizard sessions
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Create stores a new session and indexes it under its user
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.SessionID == "" {
		s.SessionID = uuid.New().String()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(s.SessionID), data, sessionTTL)
	pipe.SAdd(ctx, r.userSessionSetKey(s.UserID), s.SessionID)
	pipe.Expire(ctx, r.userSessionSetKey(s.UserID), sessionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by its ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn to the stored session inside a WATCH transaction.
// fn may be called more than once when another writer wins the race.
func (r *SessionRepository) Update(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	key := r.sessionKey(sessionID)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var updated *domain.Session

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return domain.ErrSessionNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}

			s, err := decodeSession(data)
			if err != nil {
				return err
			}
			if err := fn(s); err != nil {
				return err
			}
			s.Version++
			s.UpdatedAt = time.Now().UTC()

			payload, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("failed to marshal session: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, sessionTTL)
				pipe.Expire(ctx, r.userSessionSetKey(s.UserID), sessionTTL)
				return nil
			})
			if err != nil {
				return err
			}
			updated = s
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}

		r.publish(ctx, updated)
		return updated, nil
	}

	return nil, domain.ErrConcurrentUpdate
}

// ListByUser returns the live sessions of a user, newest first
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.userSessionSetKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user: %w", err)
	}

	out := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			// expired, drop the dangling index entry
			r.client.SRem(ctx, r.userSessionSetKey(userID), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Exists reports whether the session key is still live
func (r *SessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

// Delete removes a session and its user index entry
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(sessionID))
	pipe.SRem(ctx, r.userSessionSetKey(s.UserID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Subscribe returns a pub/sub subscription on the session's update channel
func (r *SessionRepository) Subscribe(ctx context.Context, sessionID string) *redis.PubSub {
	return r.client.Subscribe(ctx, r.sessionEventChannel(sessionID))
}

func (r *SessionRepository) publish(ctx context.Context, s *domain.Session) {
	if s == nil || s.SessionID == "" {
		return
	}
	data, err := json.Marshal(s)
	if err == nil {
		r.client.Publish(ctx, r.sessionEventChannel(s.SessionID), data)
	}
}

func decodeSession(data []byte) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Helper methods for key generation
func (r *SessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, sessionID)
}

func (r *SessionRepository) userSessionSetKey(userID string) string {
	return fmt.Sprintf("%s%s:sessions", userSessionSetPrefix, userID)
}

func (r *SessionRepository) sessionEventChannel(sessionID string) string {
	return fmt.Sprintf("%s%s", sessionEventChannelPrefix, sessionID)
}

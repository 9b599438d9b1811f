package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
)

func setupAttemptRepo(t *testing.T) (*AttemptRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAttemptRepository(client), mr
}

func newAttempt(t *testing.T) *domain.Attempt {
	a, err := domain.NewAttempt("u1", domain.KindModuleQuiz, "q1", "Quiz", []domain.Question{
		{Prompt: "P1", Options: []string{"a", "b"}, Answer: 1},
		{Prompt: "P2", Options: []string{"a", "b"}, Answer: 0},
	}, 0)
	require.NoError(t, err)
	return a
}

func TestAttemptRepository_CreateGet(t *testing.T) {
	repo, mr := setupAttemptRepo(t)
	ctx := context.Background()

	a := newAttempt(t)
	require.NoError(t, repo.Create(ctx, a))
	assert.NotEmpty(t, a.ID)
	assert.True(t, mr.Exists("academy:attempt:"+a.ID))
	assert.Equal(t, attemptTTL, mr.TTL("academy:attempt:"+a.ID))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, got.Keys, "answer keys survive the round trip")

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
}

func TestAttemptRepository_UpdateIsAtomic(t *testing.T) {
	repo, _ := setupAttemptRepo(t)
	ctx := context.Background()

	a := newAttempt(t)
	require.NoError(t, repo.Create(ctx, a))
	_, err := repo.Update(ctx, a.ID, func(a *domain.Attempt) error { return a.Start() })
	require.NoError(t, err)

	// many concurrent clicks on the correct option: exactly one is scored
	var wg sync.WaitGroup
	var scored, rejected int
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, a.ID, func(a *domain.Attempt) error {
				_, err := a.Answer(1)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				scored++
			case errors.Is(err, domain.ErrAlreadyAnswered), errors.Is(err, domain.ErrConcurrentUpdate):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, scored)
	assert.Equal(t, 9, rejected)
	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, domain.StatusAnswered, got.Status)
}

func TestAttemptRepository_UpdateErrorLeavesStored(t *testing.T) {
	repo, _ := setupAttemptRepo(t)
	ctx := context.Background()

	a := newAttempt(t)
	require.NoError(t, repo.Create(ctx, a))

	_, err := repo.Update(ctx, a.ID, func(a *domain.Attempt) error { return a.Advance() })
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, got.Status)
	assert.Equal(t, int64(0), got.Version)
}

package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct{ calls atomic.Int32 }

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 1
}

func TestScheduler_RunsSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw)
	require.NoError(t, s.Start("* * * * * *"))

	assert.Eventually(t, func() bool { return sw.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingSweeper{})
	err := s.Start("every five minutes")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "panel sweep")
}

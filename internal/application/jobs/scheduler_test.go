package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(time.Second)
	err := s.Add("reconcile", "every hour", func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "schedule reconcile")
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(time.Second)

	var runs atomic.Int32
	require.NoError(t, s.Add("reconcile", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("drift left behind")
	}))
	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunHonoursTimeout(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)

	var deadline bool
	s.run("slow", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})
	assert.True(t, deadline)
}

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
)

type fakeSweeper struct {
	runs atomic.Int32
	err  error
}

func (f *fakeSweeper) Run(ctx context.Context) (*domain.SweepResult, error) {
	f.runs.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SweepResult{}, nil
}

func testConfig(sweepTime string) *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{Timezone: "UTC", SweepTime: sweepTime},
	}
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	sweeper := &fakeSweeper{}
	s, err := New(sweeper, testConfig("09:00"), zap.NewNop())
	require.NoError(t, err)

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return sweeper.runs.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Next() != "" }, time.Second, 10*time.Millisecond)
	assert.Contains(t, s.Next(), "09:00:00 UTC")
}

func TestScheduler_RunNowSwallowsFailures(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("store unavailable")}
	s, err := New(sweeper, testConfig("06:30"), zap.NewNop())
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.RunNow(context.Background()) })
	assert.Equal(t, int32(1), sweeper.runs.Load())
}

func TestScheduler_NextEmptyBeforeStart(t *testing.T) {
	s, err := New(&fakeSweeper{}, testConfig("09:00"), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, s.Next())
}

package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

type stubLock struct {
	locked   bool
	acquires int
	releases int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return !l.locked, nil
}

func (l *stubLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: &bytes.Buffer{}})
}

func TestRunCycleExecutesJobsUnderLock(t *testing.T) {
	lock := &stubLock{}
	first := &countingJob{name: "first"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	second := &countingJob{name: "second"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, failing, second),
		Lock:     lock,
	})
	require.NoError(t, err)

	svc.cycle(context.Background())
	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, second.runs, "a failing job does not stop the cycle")
	assert.Equal(t, 1, lock.releases)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &stubLock{locked: true}
	job := &countingJob{name: "sweep"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	require.NoError(t, err)

	svc.cycle(context.Background())
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.releases)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	lock := &stubLock{}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	err = svc.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, lock.acquires, 2, "initial cycle plus at least one tick")
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "only"})
	registry.Register(nil)
	assert.Len(t, registry.Jobs(), 1)
}

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	err  error
	runs atomic.Int64
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job" }

func (j *fakeJob) Run(_ context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestScheduler()
	sched := NewIntervalSchedule(time.Hour)

	assert.ErrorIs(t, s.Register(nil, sched), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&fakeJob{name: "a"}, sched))
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, sched), ErrJobAlreadyExists)
}

func TestRunNow_ExecutesAndRecordsResult(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "sweep"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "sweep")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "sweep", result.JobName)
	assert.EqualValues(t, 1, job.runs.Load())

	last, ok := s.LastRun("sweep")
	require.True(t, ok)
	assert.Same(t, result, last)
}

func TestRunNow_JobFailure(t *testing.T) {
	s := newTestScheduler()
	wantErr := errors.New("boom")
	require.NoError(t, s.Register(&fakeJob{name: "sweep", err: wantErr}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "sweep")
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, result.Success)

	last, ok := s.LastRun("sweep")
	require.True(t, ok)
	assert.False(t, last.Success)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler()

	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, ok := s.LastRun("missing")
	assert.False(t, ok)
}

func TestLifecycle(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&fakeJob{name: "sweep"}, NewIntervalSchedule(time.Hour)))

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

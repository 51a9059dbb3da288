package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

type recordingRunner struct {
	mu    sync.Mutex
	hints []time.Time
	opts  []model.RunOptions
	block chan struct{}
	err   error
}

func (r *recordingRunner) Run(_ context.Context, hint time.Time, opts model.RunOptions) (*model.JobResult, error) {
	r.mu.Lock()
	r.hints = append(r.hints, hint)
	r.opts = append(r.opts, opts)
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return nil, r.err
	}
	return &model.JobResult{Status: model.JobComplete}, nil
}

func (r *recordingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hints)
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every monday", time.UTC, &recordingRunner{}, model.RunOptions{})
	assert.ErrorContains(t, err, "every monday")
}

func TestNextUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	s, err := New("0 2 * * 1", seoul, &recordingRunner{}, model.RunOptions{})
	require.NoError(t, err)
	// Wednesday 2024-11-13 10:00 KST
	s.now = func() time.Time { return time.Date(2024, 11, 13, 10, 0, 0, 0, seoul) }

	next := s.Next().In(seoul)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 18, next.Day())
}

func TestFirePassesLocalDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	runner := &recordingRunner{}
	opts := model.RunOptions{ScheduleGroup: "AM7"}
	s, err := New("0 2 * * 1", seoul, runner, opts)
	require.NoError(t, err)
	// Sunday 17:00 UTC is already Monday 02:00 in Seoul.
	s.now = func() time.Time { return time.Date(2024, 11, 17, 17, 0, 0, 0, time.UTC) }

	s.fire()
	require.Equal(t, 1, runner.calls())
	assert.Equal(t, model.Date(2024, 11, 18), runner.hints[0])
	assert.Equal(t, opts, runner.opts[0])
}

func TestFireSkipsWhileRunning(t *testing.T) {
	runner := &recordingRunner{block: make(chan struct{})}
	s, err := New("0 2 * * 1", time.UTC, runner, model.RunOptions{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.fire()
		close(done)
	}()
	require.Eventually(t, func() bool { return runner.calls() == 1 }, time.Second, 5*time.Millisecond)

	s.fire()
	assert.Equal(t, 1, runner.calls())

	close(runner.block)
	<-done
	runner.block = nil
	s.fire()
	assert.Equal(t, 2, runner.calls())
}

func TestFireLogsFailure(t *testing.T) {
	runner := &recordingRunner{err: errors.New("db down")}
	s, err := New("0 2 * * 1", time.UTC, runner, model.RunOptions{})
	require.NoError(t, err)
	s.fire()
	assert.Equal(t, 1, runner.calls())
}

func TestStartStop(t *testing.T) {
	s, err := New("0 2 * * 1", time.UTC, &recordingRunner{}, model.RunOptions{})
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

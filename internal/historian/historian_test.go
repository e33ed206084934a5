// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue serves pushed payloads and blocks like BLPop when empty.
type fakeQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *fakeQueue) push(t *testing.T, rec cache.ActionRecord) {
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	q.pushRaw(string(data))
}

func (q *fakeQueue) pushRaw(s string) {
	q.mu.Lock()
	q.items = append(q.items, s)
	q.mu.Unlock()
}

func (q *fakeQueue) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	q.mu.Lock()
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()
		return redis.NewStringSliceResult([]string{keys[0], item}, nil)
	}
	q.mu.Unlock()
	select {
	case <-ctx.Done():
		return redis.NewStringSliceResult(nil, ctx.Err())
	case <-time.After(timeout):
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
}

// recordingSink captures every flushed batch.
type recordingSink struct {
	mu      sync.Mutex
	batches [][]cache.ActionRecord
	fail    int
}

func (s *recordingSink) sink(ctx context.Context, batch []cache.ActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("db down")
	}
	s.batches = append(s.batches, append([]cache.ActionRecord(nil), batch...))
	return nil
}

func (s *recordingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func record(game uuid.UUID, idx int) cache.ActionRecord {
	return cache.ActionRecord{GameID: game, ActionIndex: idx, ActorID: uuid.New(), ActionType: "drawCard", Timestamp: int64(idx)}
}

func runService(t *testing.T, svc *Service) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		assert.NoError(t, svc.Run(ctx))
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestFlushesFullBatches(t *testing.T) {
	q := &fakeQueue{}
	sink := &recordingSink{}
	game := uuid.New()
	for i := 0; i < 6; i++ {
		q.push(t, record(game, i))
	}

	svc := New(q, sink.sink, Options{BatchSize: 3, FlushDelay: time.Hour}, quietLogger())
	stop := runService(t, svc)
	assert.Eventually(t, func() bool { return sink.total() == 6 }, 2*time.Second, 5*time.Millisecond)
	stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.batches, 2)
	assert.Equal(t, 0, sink.batches[0][0].ActionIndex)
	assert.Equal(t, 5, sink.batches[1][2].ActionIndex)
}

func TestFlushesPartialBatchOnTimer(t *testing.T) {
	q := &fakeQueue{}
	sink := &recordingSink{}
	q.push(t, record(uuid.New(), 0))

	svc := New(q, sink.sink, Options{BatchSize: 100, FlushDelay: 20 * time.Millisecond}, quietLogger())
	stop := runService(t, svc)
	defer stop()
	assert.Eventually(t, func() bool { return sink.total() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestShutdownFlushesRemainder(t *testing.T) {
	q := &fakeQueue{}
	sink := &recordingSink{}
	svc := New(q, sink.sink, Options{BatchSize: 100, FlushDelay: time.Hour}, quietLogger())

	game := uuid.New()
	q.push(t, record(game, 0))
	q.push(t, record(game, 1))
	stop := runService(t, svc)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sink.total())
	stop()
	assert.Equal(t, 2, sink.total())
}

func TestSkipsInvalidEntries(t *testing.T) {
	svc := New(&fakeQueue{}, (&recordingSink{}).sink, Options{BatchSize: 10}, quietLogger())
	svc.handle(context.Background(), "{broken")
	svc.handle(context.Background(), `{"action_type":"drawCard"}`)
	assert.Empty(t, svc.batch)

	data, _ := json.Marshal(record(uuid.New(), 0))
	svc.handle(context.Background(), string(data))
	assert.Len(t, svc.batch, 1)
}

func TestFailedFlushIsRetried(t *testing.T) {
	sink := &recordingSink{fail: 1}
	svc := New(&fakeQueue{}, sink.sink, Options{BatchSize: 2}, quietLogger())
	game := uuid.New()
	ctx := context.Background()

	svc.batch = append(svc.batch, record(game, 0), record(game, 1))
	svc.flush(ctx)
	assert.Len(t, svc.batch, 2, "kept after failure")

	svc.flush(ctx)
	assert.Empty(t, svc.batch)
	assert.Equal(t, 2, sink.total())
}

func TestBacklogIsBounded(t *testing.T) {
	sink := &recordingSink{fail: 1}
	svc := New(&fakeQueue{}, sink.sink, Options{BatchSize: 1}, quietLogger())
	game := uuid.New()
	for i := 0; i < maxPending+5; i++ {
		svc.batch = append(svc.batch, record(game, i))
	}
	svc.flush(context.Background())
	require.Len(t, svc.batch, maxPending)
	assert.Equal(t, 5, svc.batch[0].ActionIndex, "oldest entries dropped first")
}

func TestMarksAbandonedGames(t *testing.T) {
	var mu sync.Mutex
	var cutoffs []time.Time
	abandon := func(ctx context.Context, cutoff time.Time) (int64, error) {
		mu.Lock()
		defer mu.Unlock()
		cutoffs = append(cutoffs, cutoff)
		return 1, nil
	}
	svc := New(&fakeQueue{}, (&recordingSink{}).sink, Options{
		FlushDelay: 5 * time.Millisecond,
		Inactivity: 100 * time.Millisecond,
		Abandon:    abandon,
	}, quietLogger())

	stop := runService(t, svc)
	defer stop()
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(cutoffs) > 0
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.WithinDuration(t, time.Now().Add(-100*time.Millisecond), cutoffs[0], time.Second)
}

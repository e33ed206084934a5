// internal/historian/historian.go drains the action queue written by the game server
// and persists it in batches.
package historian

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Popper is the part of a Redis client the historian reads through.
type Popper interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Sink persists one batch. It must be idempotent per (game_id, action_index).
type Sink func(ctx context.Context, batch []cache.ActionRecord) error

// Abandoner marks games without activity since cutoff and reports how many changed.
type Abandoner func(ctx context.Context, cutoff time.Time) (int64, error)

type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration

	// Inactivity is how long a game may go without actions before it is marked
	// abandoned. Zero disables the check.
	Inactivity time.Duration
	Abandon    Abandoner
}

// maxPending bounds the backlog kept while the sink is failing, in batches.
const maxPending = 50

// Service accumulates records popped from Redis and flushes them when the batch
// is full or the flush delay elapses. All state is owned by the Run goroutine.
type Service struct {
	rdb  Popper
	sink Sink
	opts Options
	log  *logrus.Entry

	batch     []cache.ActionRecord
	lastFlush time.Time
}

func New(rdb Popper, sink Sink, opts Options, logger logrus.FieldLogger) *Service {
	if opts.Queue == "" {
		opts.Queue = cache.DefaultQueueName
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		rdb:   rdb,
		sink:  sink,
		opts:  opts,
		log:   logger.WithField("component", "historian"),
		batch: make([]cache.ActionRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	s.log.Infof("historian started on queue %q (batch %d, flush %s)", s.opts.Queue, s.opts.BatchSize, s.opts.FlushDelay)
	s.lastFlush = time.Now()

	var abandonC <-chan time.Time
	if s.opts.Inactivity > 0 && s.opts.Abandon != nil {
		t := time.NewTicker(checkEvery(s.opts.Inactivity))
		defer t.Stop()
		abandonC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-abandonC:
			s.markAbandoned(ctx)
		default:
		}

		if time.Since(s.lastFlush) >= s.opts.FlushDelay {
			s.flush(ctx)
		}

		res, err := s.rdb.BLPop(ctx, s.opts.FlushDelay, s.opts.Queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			s.log.Errorf("BLPop: %v", err)
			sleep(ctx, time.Second)
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if len(res) < 2 {
			continue
		}
		s.handle(ctx, res[1])
	}
}

func (s *Service) handle(ctx context.Context, payload string) {
	rec, err := cache.DecodeActionRecord([]byte(payload))
	if err != nil {
		s.log.Warnf("dropping queue entry: %v", err)
		return
	}
	s.batch = append(s.batch, rec)
	if len(s.batch) >= s.opts.BatchSize {
		s.flush(ctx)
	}
}

// flush hands the batch to the sink. A failed batch is kept for the next flush.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.sink(ctx, s.batch); err != nil {
		s.log.Errorf("flush of %d actions failed: %v", len(s.batch), err)
		if limit := maxPending * s.opts.BatchSize; len(s.batch) > limit {
			dropped := len(s.batch) - limit
			s.batch = append(s.batch[:0], s.batch[dropped:]...)
			s.log.Errorf("backlog full, dropped %d oldest actions", dropped)
		}
		return
	}
	s.log.Debugf("Flushed %d actions to DB.", len(s.batch))
	s.batch = s.batch[:0]
}

func (s *Service) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(ctx)
	if len(s.batch) > 0 {
		s.log.Errorf("shutdown with %d unflushed actions", len(s.batch))
	}
	s.log.Info("historian shutting down.")
}

func (s *Service) markAbandoned(ctx context.Context) {
	n, err := s.opts.Abandon(ctx, time.Now().Add(-s.opts.Inactivity))
	if err != nil {
		s.log.Errorf("failed to mark games abandoned: %v", err)
		return
	}
	if n > 0 {
		s.log.Infof("Marked %d games as 'abandoned' due to inactivity.", n)
	}
}

func checkEvery(inactivity time.Duration) time.Duration {
	if every := inactivity / 10; every > time.Minute {
		return time.Minute
	} else if every > 0 {
		return every
	}
	return inactivity
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

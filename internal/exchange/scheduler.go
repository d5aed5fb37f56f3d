package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Schedule describes a recurring exchange: swap Amount of From into To every
// Interval, at most MaxRuns times (0 = until stopped)
type Schedule struct {
	From     tokens.TokenInfo
	To       tokens.TokenInfo
	Amount   decimal.Decimal
	Interval time.Duration
	MaxRuns  int
}

// Scheduler runs recurring exchanges on a fixed interval. A failed run is
// logged and skipped; the schedule keeps going.
type Scheduler struct {
	executor *Executor
	session  *Session
	logger   *logrus.Logger

	mu      sync.Mutex
	runs    int
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler over an executor and its session
func NewScheduler(executor *Executor, session *Session, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		executor: executor,
		session:  session,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Runs returns how many executions have completed, successfully or not
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Start launches the schedule loop. It returns immediately; Stop or context
// cancellation ends the loop.
func (s *Scheduler) Start(ctx context.Context, sched Schedule) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(sched.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.execute(ctx, sched)

				s.mu.Lock()
				s.runs++
				finished := sched.MaxRuns > 0 && s.runs >= sched.MaxRuns
				s.mu.Unlock()
				if finished {
					s.logger.WithFields(logrus.Fields{
						"runs": sched.MaxRuns,
					}).Info("recurring exchange schedule completed")
					return
				}
			}
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, sched Schedule) {
	s.session.SetPair(sched.From, sched.To)
	s.session.SetAmountNow(sched.Amount)

	if _, err := s.session.RecomputeQuote(ctx); err != nil {
		s.logger.WithFields(logrus.Fields{
			"from":  sched.From.Symbol,
			"to":    sched.To.Symbol,
			"error": err,
		}).Warn("recurring quote failed, skipping run")
		return
	}

	rec, err := s.executor.Swap(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"from":  sched.From.Symbol,
			"to":    sched.To.Symbol,
			"error": err,
		}).Warn("recurring exchange failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"signature":  rec.Signature,
		"pair":       rec.Pair,
		"amount_in":  rec.AmountIn,
		"amount_out": rec.AmountOut,
	}).Info("recurring exchange executed")
}

// Stop ends the schedule and waits for the loop to exit. Safe to call more
// than once, or before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-tracker/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PruneSchedule drops idle rate limiter entries
const PruneSchedule = "@every 5m"

const digestTimeout = 10 * time.Minute

// DigestSource builds the monthly digests to send
type DigestSource interface {
	MonthlyDigests(ctx context.Context) ([]email.Digest, error)
}

// DigestSender delivers one digest
type DigestSender interface {
	SendMonthlyDigest(d email.Digest) error
}

// Pruner forgets stale state
type Pruner interface {
	Prune() int
}

// Scheduler runs the background jobs
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New creates a scheduler whose jobs never overlap themselves and survive panics
func New(log *logrus.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  log,
	}
}

// AddDigest schedules the monthly digest mail
func (s *Scheduler) AddDigest(spec string, src DigestSource, sender DigestSender) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if _, err := RunDigest(ctx, src, sender, s.log); err != nil {
			s.log.Errorf("Monthly digest failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	s.log.Infof("Monthly digest scheduled: %s", spec)
	return nil
}

// AddPrune schedules periodic pruning of p
func (s *Scheduler) AddPrune(spec string, p Pruner) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := p.Prune(); n > 0 {
			s.log.Debugf("Pruned %d idle rate limiter clients", n)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

// RunDigest builds and sends every digest. A failed send is logged and
// the remaining users are still served.
func RunDigest(ctx context.Context, src DigestSource, sender DigestSender, log *logrus.Logger) (int, error) {
	digests, err := src.MonthlyDigests(ctx)
	if err != nil {
		return 0, err
	}

	sent, failed := 0, 0
	for _, d := range digests {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := sender.SendMonthlyDigest(d); err != nil {
			failed++
			log.WithField("to", d.To).Warnf("Digest not delivered: %v", err)
			continue
		}
		sent++
	}
	log.Infof("Monthly digest finished: %d sent, %d failed", sent, failed)
	if failed > 0 {
		return sent, fmt.Errorf("%d of %d digests failed", failed, len(digests))
	}
	return sent, nil
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

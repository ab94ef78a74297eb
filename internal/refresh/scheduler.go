package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pfrederiksen/ff-events/internal/logger"
)

// DefaultSchedule fires every Sunday at midnight
const DefaultSchedule = "0 0 * * 0"

// Refresher is the part of Service the scheduler drives
type Refresher interface {
	Refresh(ctx context.Context, trigger string) error
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context, trigger string) error

// Refresh calls f
func (f RefresherFunc) Refresh(ctx context.Context, trigger string) error {
	return f(ctx, trigger)
}

// ServiceRefresher adapts a Service to Refresher
func ServiceRefresher(s *Service) Refresher {
	return RefresherFunc(func(ctx context.Context, trigger string) error {
		_, err := s.Refresh(ctx, trigger)
		return err
	})
}

// Scheduler triggers refreshes on a cron expression
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	spec  string
	ctx   context.Context
}

// NewScheduler parses spec (standard five fields) in loc
func NewScheduler(r Refresher, spec string, loc *time.Location) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{spec: spec, ctx: context.Background()}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	id, err := s.cron.AddFunc(spec, func() {
		// failures are logged by the service; the next activation retries
		_ = r.Refresh(s.ctx, TriggerSchedule)
	})
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start runs the scheduler in the background; scheduled runs use ctx
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	logger.Info("Scheduler started", logger.Fields{
		"schedule": s.spec,
		"next_run": s.Next().Format(time.RFC3339),
	})
}

// Stop stops the scheduler and waits for a running refresh, or until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next activation time, zero if the scheduler is not running
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Spec returns the cron expression
func (s *Scheduler) Spec() string {
	return s.spec
}

// NextAfter returns the next activation of spec in loc after t
func NextAfter(spec string, loc *time.Location, t time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t.In(loc)), nil
}

// cronLogger routes cron's own messages into the structured logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

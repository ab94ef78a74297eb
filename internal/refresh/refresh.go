package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/ff-events/internal/event"
	"github.com/pfrederiksen/ff-events/internal/logger"
	"github.com/pfrederiksen/ff-events/internal/metrics"
	"github.com/pfrederiksen/ff-events/internal/notifier"
	"github.com/pfrederiksen/ff-events/internal/scraper"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

// Triggers label why a run happened.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerLazy     = "lazy"
	TriggerStartup  = "startup"
	TriggerCLI      = "cli"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context) (*scraper.Result, error)
}

// Observer records run outcomes
type Observer interface {
	ObserveRun(trigger, outcome string, duration time.Duration, result *scraper.Result)
}

// Service serializes runs and writes their snapshots
type Service struct {
	mu       sync.Mutex
	runner   Runner
	store    storage.Store
	notifier notifier.Notifier
	observer Observer
	now      func() time.Time
}

// NewService creates a Service. notifier and observer may be nil.
func NewService(runner Runner, store storage.Store, n notifier.Notifier, observer Observer) *Service {
	return &Service{
		runner:   runner,
		store:    store,
		notifier: n,
		observer: observer,
		now:      time.Now,
	}
}

// Refresh runs the pipeline and replaces the snapshot. A failed run leaves
// the stored snapshot untouched. Notification failures are logged only.
func (s *Service) Refresh(ctx context.Context, trigger string) (*event.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx, trigger)
}

// EnsureSnapshot returns the stored snapshot, running the pipeline first when
// none exists yet.
func (s *Service) EnsureSnapshot(ctx context.Context, trigger string) (*event.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have produced it while we waited
	snap, err = s.store.Load(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	logger.Info("No snapshot found, running scrape", logger.Fields{"trigger": trigger})
	return s.refreshLocked(ctx, trigger)
}

// Load returns the stored snapshot without running anything
func (s *Service) Load(ctx context.Context) (*event.Snapshot, error) {
	return s.store.Load(ctx)
}

func (s *Service) refreshLocked(ctx context.Context, trigger string) (*event.Snapshot, error) {
	start := s.now()

	result, err := s.runner.Run(ctx)
	if err != nil {
		s.observe(trigger, metrics.ResultFailed, s.now().Sub(start), nil)
		logger.Error("Scrape failed", logger.Fields{"trigger": trigger}, err)
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	snap := result.Snapshot()
	if err := s.store.Replace(ctx, snap); err != nil {
		s.observe(trigger, metrics.ResultStoreError, s.now().Sub(start), result)
		logger.Error("Failed to store snapshot", logger.Fields{
			"trigger": trigger,
			"run_id":  result.RunID,
		}, err)
		return nil, fmt.Errorf("storing snapshot: %w", err)
	}
	s.observe(trigger, metrics.ResultSuccess, s.now().Sub(start), result)

	logger.Info("Snapshot replaced", logger.Fields{
		"trigger": trigger,
		"run_id":  result.RunID,
		"events":  snap.Len(),
	})

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, snap.Events); err != nil {
			logger.Warn("Failed to announce snapshot", logger.Fields{
				"run_id": result.RunID,
				"error":  err.Error(),
			})
		}
	}

	return snap, nil
}

func (s *Service) observe(trigger, outcome string, d time.Duration, result *scraper.Result) {
	if s.observer != nil {
		s.observer.ObserveRun(trigger, outcome, d, result)
	}
}

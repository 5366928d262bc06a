// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/erp/procurement/internal/domain/shared"
)

// driftLockKey serializes drift checks across service instances
const driftLockKey = "drift-check"

// ErrSchedulerStopped is returned when triggering a stopped scheduler
var ErrSchedulerStopped = errors.New("scheduler is not running")

// DriftRunner performs one drift check
type DriftRunner interface {
	Run(ctx context.Context) (*appinv.DriftCheckStats, error)
}

// DriftSchedulerConfig holds drift scheduler configuration
type DriftSchedulerConfig struct {
	// Interval between two runs
	Interval time.Duration
	// Timeout bounds a single run
	Timeout time.Duration
	// RunOnStart triggers a check right after Start
	RunOnStart bool
}

// DriftScheduler runs the drift check on a fixed interval. A run that is
// still in progress when the next tick fires causes that tick to be skipped.
type DriftScheduler struct {
	config DriftSchedulerConfig
	runner DriftRunner
	locker shared.KeyedLocker
	logger *zap.Logger

	trigger chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewDriftScheduler creates a new scheduler; locker may be nil for a single instance
func NewDriftScheduler(cfg DriftSchedulerConfig, runner DriftRunner, locker shared.KeyedLocker, logger *zap.Logger) *DriftScheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &DriftScheduler{
		config:  cfg,
		runner:  runner,
		locker:  locker,
		logger:  logger.Named("drift_scheduler"),
		trigger: make(chan struct{}, 1),
	}
}

// Start launches the background loop. Calling Start twice is a no-op.
func (s *DriftScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.config.Interval <= 0 {
		return errors.New("drift scheduler interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Drift scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("timeout", s.config.Timeout),
	)
	if s.config.RunOnStart {
		s.enqueue()
	}
	return nil
}

// Stop cancels the loop and waits for an in-flight run or ctx expiry
func (s *DriftScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Drift scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger requests an immediate run. A pending request absorbs further ones.
func (s *DriftScheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerStopped
	}
	s.enqueue()
	return nil
}

func (s *DriftScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *DriftScheduler) enqueue() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *DriftScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
		}
	}
}

func (s *DriftScheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.config.Timeout)
	defer cancel()

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, driftLockKey, s.config.Timeout)
		if err != nil {
			s.logger.Error("Failed to acquire drift check lock", zap.Error(err))
			return
		}
		if !ok {
			s.logger.Debug("Drift check already running elsewhere, skipping")
			return
		}
		defer release()
	}

	start := time.Now()
	stats, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Drift check failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Info("Drift check finished",
		zap.String("run_id", stats.RunID.String()),
		zap.Int("drifted", stats.Drifted),
		zap.Duration("elapsed", time.Since(start)),
	)
}

package cache

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates the reconciliation locker based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to an
// in-process locker. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is configured and reachable.
// Without Redis, or when it is unreachable and fallback is allowed, an in-memory locker is used.
func (f *LockerFactory) CreateLocker() (shared.KeyedLocker, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory reconciliation locker")
		return NewInMemoryLocker(), nil
	}

	locker, err := NewRedisLocker(f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB, f.logger)
	if err == nil {
		f.logger.Info("Using Redis reconciliation locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for reconciliation locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory reconciliation locker. "+
		"Concurrent receives of one order on different instances are then only protected by item claims.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), nil
}

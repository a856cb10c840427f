package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
)

const lockKeyPrefix = "ledger:lock:account:"

var ErrNilRedisClient = errors.New("redis client is nil")

// RedisOptions tunes the redsync mutexes. Zero values fall back to defaults.
type RedisOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func (o RedisOptions) withDefaults() RedisOptions {
	if o.Expiry <= 0 {
		o.Expiry = 10 * time.Second
	}
	if o.Tries <= 0 {
		o.Tries = 32
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 50 * time.Millisecond
	}
	return o
}

// RedisLocker shares account locks between service instances through Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *zap.Logger
}

func NewRedisLocker(client *redis.Client, opts RedisOptions, logger *zap.Logger) (*RedisLocker, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts.withDefaults(),
		logger: logger,
	}, nil
}

func lockKey(accountID string) string {
	return lockKeyPrefix + accountID
}

func (l *RedisLocker) WithAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context) error) error {
	held := make([]*redsync.Mutex, 0, len(accountIDs))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			if ok, err := held[i].UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
				l.logger.Warn("failed to release account lock",
					zap.String("lock_key", held[i].Name()),
					zap.Bool("unlock_ok", ok),
					zap.Error(err))
			}
		}
	}()

	for _, id := range orderedKeys(accountIDs) {
		mutex := l.rs.NewMutex(lockKey(id),
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)
		if err := mutex.LockContext(ctx); err != nil {
			return fmt.Errorf("acquire lock for account %s: %w", id, err)
		}
		held = append(held, mutex)
	}
	return fn(ctx)
}

var _ interfaces.AccountLocker = (*RedisLocker)(nil)

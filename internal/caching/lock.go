package caching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockBusy is returned when a lock could not be acquired within the
// configured tries.
var ErrLockBusy = errors.New("lock is held by another worker")

// Locker runs fn while holding the named lock.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type LockOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultLockOptions suits a reconciliation of a single license.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:     30 * time.Second,
		Tries:      3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// LicenseLockKey names the lock guarding reconciliation of one license.
func LicenseLockKey(id uuid.UUID) string {
	return fmt.Sprintf("licensewatch:lock:license:%s", id.String())
}

type redisLocker struct {
	rs   *redsync.Redsync
	opts LockOptions
}

func NewRedisLocker(client redis.UniversalClient, opts LockOptions) Locker {
	return &redisLocker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLockBusy, key, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			logrus.WithError(err).WithField("lock_key", key).Warn("failed to release lock")
		}
	}()

	return fn(ctx)
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker serializes callers within the process only.
func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

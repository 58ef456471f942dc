// Package redislock реализует распределённую блокировку на Redis: SET NX PX с токеном владельца
// и снятием через Lua-скрипт, который удаляет ключ только при совпадении токена.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

const (
	DefaultTTL        = 10 * time.Second
	DefaultWait       = 5 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
	keyPrefix         = "library:lock:"
	releaseTimeout    = 2 * time.Second
)

// ErrLockTimeout возвращается, когда ключ не удалось захватить за отведённое время.
var ErrLockTimeout = errors.New("lock wait timeout")

var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Options задаёт время жизни ключа и ожидание захвата.
type Options struct {
	TTL        time.Duration
	Wait       time.Duration
	RetryDelay time.Duration
}

// Locker — блокировка поверх Redis.
type Locker struct {
	client redis.UniversalClient
	opts   Options
	log    *logrus.Entry
}

// New создаёт Locker. Нулевые значения в opts заменяются умолчаниями.
func New(client redis.UniversalClient, opts Options, logger *logrus.Entry) *Locker {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Locker{
		client: client,
		opts:   opts,
		log:    logger.WithField("component", "redis-lock"),
	}
}

// Lock захватывает ключ, повторяя попытки до истечения Wait или отмены ctx.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.opts.Wait)
	defer cancel()

	ticker := time.NewTicker(l.opts.RetryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.opts.TTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

// Ping проверяет соединение с Redis.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *Locker) unlockFunc(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}
}

func (l *Locker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
	if err != nil {
		l.log.WithError(err).WithField("key", redisKey).Warn("failed to release lock")
		return
	}
	if deleted == 0 {
		l.log.WithField("key", redisKey).Warn("lock expired before release")
	}
}

var _ domain.Locker = (*Locker)(nil)

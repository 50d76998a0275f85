package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/hrygo/venuebook/plugin/ai/timeout"
)

const redisKeyPrefix = "venuebook:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// RedisOptions holds the Redis connection configuration.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisLocker implements VenueLocker with SET NX and a token-checked release.
// A crashed holder loses the lock after VenueLockTTL.
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
}

var _ VenueLocker = (*RedisLocker)(nil)

// NewRedisLocker connects to Redis and verifies the connection.
func NewRedisLocker(opts RedisOptions, logger *slog.Logger) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return NewRedisLockerWithClient(client, logger), nil
}

// NewRedisLockerWithClient wraps an existing client.
func NewRedisLockerWithClient(client *redis.Client, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client:        client,
		ttl:           timeout.VenueLockTTL,
		retryInterval: timeout.VenueLockRetryInterval,
		logger:        logger,
	}
}

func (r *RedisLocker) Acquire(ctx context.Context, venueID string) (Release, error) {
	key := redisKeyPrefix + venueID
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to acquire lock for venue %s", venueID)
		}
		if ok {
			return r.releaser(key, token), nil
		}

		timer := time.NewTimer(r.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RedisLocker) releaser(key, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int64()
			if err != nil {
				r.logger.Warn("failed to release venue lock", "key", key, "error", err)
				return
			}
			if n == 0 {
				r.logger.Warn("venue lock expired before release", "key", key)
			}
		})
	}
}

func (r *RedisLocker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisLocker) Close() error {
	return r.client.Close()
}

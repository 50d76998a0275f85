// Package lock serializes booking writes per venue, so a conflict check and
// the insert that follows it run as one unit.
package lock

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/internal/profile"
)

// Release gives a held venue lock back. It is safe to call once.
type Release func()

// VenueLocker grants exclusive access to one venue at a time.
// Implementations can be in-process or backed by Redis for multi-instance deployments.
type VenueLocker interface {
	// Acquire blocks until the venue lock is held or ctx is done.
	Acquire(ctx context.Context, venueID string) (Release, error)

	// HealthCheck verifies the lock backend is accessible.
	HealthCheck(ctx context.Context) error

	// Close cleans up resources and closes connections.
	Close() error
}

// New builds the locker selected by the profile.
func New(p *profile.Profile, logger *slog.Logger) (VenueLocker, error) {
	switch p.LockBackend {
	case "", "local":
		return NewLocalLocker(), nil
	case "redis":
		return NewRedisLocker(RedisOptions{
			Addr:     p.RedisAddr,
			Password: p.RedisPassword,
			DB:       p.RedisDB,
		}, logger)
	default:
		return nil, errors.Errorf("unsupported lock backend %q", p.LockBackend)
	}
}

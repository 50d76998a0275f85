package lock

import (
	"context"
	"sync"
)

// LocalLocker is an in-process VenueLocker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

var _ VenueLocker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(venueID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[venueID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[venueID] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, venueID string) (Release, error) {
	ch := l.slot(venueID)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) HealthCheck(context.Context) error {
	return nil
}

func (l *LocalLocker) Close() error {
	return nil
}

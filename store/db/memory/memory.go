// Package memory is a store.Driver that keeps bookings in process memory.
// It backs development mode and tests, and can be told to fail so degraded
// mode can be exercised.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/store"
)

// ErrUnavailable is returned by every operation while the driver is failing.
var ErrUnavailable = errors.New("memory driver unavailable")

type DB struct {
	mu       sync.RWMutex
	bookings map[string]*store.Booking
	failing  bool
}

func NewDB() *DB {
	return &DB{bookings: make(map[string]*store.Booking)}
}

// SetFailing makes every operation return ErrUnavailable until reset.
func (d *DB) SetFailing(failing bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing = failing
}

// available reports a done context like database/sql does, then the failure switch.
// Callers hold d.mu.
func (d *DB) available(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.failing {
		return ErrUnavailable
	}
	return nil
}

func (d *DB) GetDB() *sql.DB {
	return nil
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) Ping(context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.failing {
		return ErrUnavailable
	}
	return nil
}

func (d *DB) IsInitialized(context.Context) (bool, error) {
	return true, nil
}

func (d *DB) CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.available(ctx); err != nil {
		return nil, err
	}
	if _, ok := d.bookings[create.ID]; ok {
		return nil, errors.Errorf("booking %s already exists", create.ID)
	}
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	d.bookings[create.ID] = create.Clone()
	return create, nil
}

func (d *DB) ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.available(ctx); err != nil {
		return nil, err
	}
	list := make([]*store.Booking, 0)
	for _, b := range d.bookings {
		if find.Matches(b) {
			list = append(list, b.Clone())
		}
	}
	store.SortBookings(list)
	return list, nil
}

func (d *DB) UpdateBooking(ctx context.Context, update *store.UpdateBooking) (*store.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.available(ctx); err != nil {
		return nil, err
	}
	b, ok := d.bookings[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	update.Apply(b)
	return b.Clone(), nil
}

func (d *DB) DeleteBooking(ctx context.Context, del *store.DeleteBooking) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.available(ctx); err != nil {
		return err
	}
	if _, ok := d.bookings[del.ID]; !ok {
		return store.ErrNotFound
	}
	delete(d.bookings, del.ID)
	return nil
}

func (d *DB) UpsertBooking(ctx context.Context, b *store.Booking) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.available(ctx); err != nil {
		return err
	}
	d.bookings[b.ID] = b.Clone()
	return nil
}

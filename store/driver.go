package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	// GetDB returns the underlying database, or nil for drivers without one.
	GetDB() *sql.DB
	Close() error
	Ping(ctx context.Context) error

	IsInitialized(ctx context.Context) (bool, error)

	// Booking model related methods.
	CreateBooking(ctx context.Context, create *Booking) (*Booking, error)
	ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error)
	UpdateBooking(ctx context.Context, update *UpdateBooking) (*Booking, error)
	DeleteBooking(ctx context.Context, delete *DeleteBooking) error
	// UpsertBooking writes b whether or not it exists; used to replay degraded-mode writes.
	UpsertBooking(ctx context.Context, b *Booking) error
}

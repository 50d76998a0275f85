package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/plugin/ai/timeout"
)

// Store provides booking persistence on top of a Driver.
//
// Every booking is mirrored in memory. When the driver fails, the store enters
// degraded mode and serves reads and writes from the mirror; writes made while
// degraded are replayed onto the driver by Recover.
type Store struct {
	profile   *profile.Profile
	driver    Driver
	logger    *slog.Logger
	opTimeout time.Duration

	mu       sync.RWMutex
	mirror   map[string]*Booking
	dirty    map[string]struct{}
	degraded bool
	lastErr  error

	onStateChange func(degraded bool)
}

// Health is a snapshot of the store state.
type Health struct {
	Status        string `json:"status"` // healthy or degraded
	Driver        string `json:"driver"`
	Degraded      bool   `json:"degraded"`
	BookingCount  int    `json:"bookingCount"`
	PendingWrites int    `json:"pendingWrites"`
	LastError     string `json:"lastError,omitempty"`
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		profile:   profile,
		driver:    driver,
		logger:    slog.Default(),
		opTimeout: timeout.StoreOperationTimeout,
		mirror:    make(map[string]*Booking),
		dirty:     make(map[string]struct{}),
	}
}

// WithLogger sets the logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// OnStateChange registers a callback fired when degraded mode is entered or left.
func (s *Store) OnStateChange(fn func(degraded bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Load fills the mirror from the driver. A failing driver puts the store in
// degraded mode instead of returning an error.
func (s *Store) Load(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	list, err := s.driver.ListBookings(opCtx, &FindBooking{})
	if err != nil {
		if callerGone(ctx, err) {
			s.logger.Warn("booking load abandoned", "error", err)
			return
		}
		s.degrade("load", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range list {
		s.mirror[b.ID] = b.Clone()
	}
}

// IsDegraded reports whether the store is serving from its mirror.
func (s *Store) IsDegraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Health reports the store state.
func (s *Store) Health(_ context.Context) Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := Health{
		Status:        "healthy",
		Driver:        s.profile.Driver,
		Degraded:      s.degraded,
		BookingCount:  len(s.mirror),
		PendingWrites: len(s.dirty),
	}
	if s.degraded {
		h.Status = "degraded"
	}
	if s.lastErr != nil {
		h.LastError = s.lastErr.Error()
	}
	return h
}

// Recover pings the driver and, when it answers, replays the writes made in
// degraded mode and leaves degraded mode.
func (s *Store) Recover(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.degraded {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.driver.Ping(ctx); err != nil {
		s.lastErr = err
		return errors.Wrap(err, "primary store still unavailable")
	}

	for id := range s.dirty {
		var err error
		if b, ok := s.mirror[id]; ok {
			err = s.driver.UpsertBooking(ctx, b)
		} else if err = s.driver.DeleteBooking(ctx, &DeleteBooking{ID: id}); errors.Is(err, ErrNotFound) {
			err = nil
		}
		if err != nil {
			s.lastErr = err
			return errors.Wrapf(err, "failed to replay booking %s", id)
		}
		delete(s.dirty, id)
	}

	s.degraded = false
	s.lastErr = nil
	s.logger.Info("booking store recovered", "driver", s.profile.Driver)
	if s.onStateChange != nil {
		s.onStateChange(false)
	}
	return nil
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// write runs a mutation against the driver, falling back to the mirror when the
// driver fails. fallback runs under the store lock and must not mutate the mirror.
func (s *Store) write(ctx context.Context, op, id string, primary func(context.Context) (*Booking, error), fallback func() (*Booking, error)) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.degraded {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		b, err := primary(opCtx)
		cancel()
		if err == nil {
			s.applyMirror(op, id, b)
			return b, nil
		}
		if errors.Is(err, ErrNotFound) || callerGone(ctx, err) {
			return nil, err
		}
		s.degradeLocked(op, err)
	}

	b, err := fallback()
	if err != nil {
		return nil, err
	}
	s.applyMirror(op, id, b)
	s.dirty[id] = struct{}{}
	return b, nil
}

func (s *Store) applyMirror(op, id string, b *Booking) {
	if op == "delete" {
		delete(s.mirror, id)
		return
	}
	s.mirror[id] = b.Clone()
}

// callerGone reports whether err comes from the caller giving up rather than
// from the driver. Only the driver's own failures degrade the store; the
// operation timeout applied by the store still counts as a driver failure.
func callerGone(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func (s *Store) degrade(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degradeLocked(op, err)
}

func (s *Store) degradeLocked(op string, err error) {
	s.lastErr = err
	if s.degraded {
		return
	}
	s.degraded = true
	s.logger.Warn("booking store degraded, serving from memory",
		"driver", s.profile.Driver,
		"operation", op,
		"error", err)
	if s.onStateChange != nil {
		s.onStateChange(true)
	}
}

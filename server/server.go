// Package server assembles the booking core from a Profile: storage driver,
// store, venue lock, external collaborator, resolver and services.
package server

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/internal/venue"
	"github.com/hrygo/venuebook/plugin/ai"
	"github.com/hrygo/venuebook/plugin/ai/aitime"
	aischedule "github.com/hrygo/venuebook/plugin/ai/schedule"
	"github.com/hrygo/venuebook/server/internal/observability"
	"github.com/hrygo/venuebook/server/service/booking"
	"github.com/hrygo/venuebook/store"
	"github.com/hrygo/venuebook/store/db"
	"github.com/hrygo/venuebook/store/lock"
)

type Server struct {
	Profile   *profile.Profile
	Store     *store.Store
	Catalog   *venue.Catalog
	Resolver  *aischedule.Resolver
	Bookings  *booking.Service
	Assistant *booking.Assistant

	llm     ai.LLMService
	locker  lock.VenueLocker
	tracing *observability.Tracing
	logger  *slog.Logger
}

// AI collaborator states reported by Health.
const (
	AIStatusDisabled    = "disabled"
	AIStatusOperational = "operational"
	AIStatusDegraded    = "degraded"
)

// Health is the combined health of the store, the lock backend and the
// external collaborator.
type Health struct {
	Store     store.Health `json:"store"`
	Lock      string       `json:"lock"`
	LockError string       `json:"lockError,omitempty"`
	AIEnabled bool         `json:"aiEnabled"`
	AIStatus  string       `json:"aiStatus"`
	AIError   string       `json:"aiError,omitempty"`
}

func NewServer(ctx context.Context, profile *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Profile: profile, logger: logger}

	tracing, err := observability.InitTracing(ctx, "venuebook", profile.Version, profile.OTLPEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init tracing")
	}
	s.tracing = tracing

	driver, err := db.NewDBDriver(profile)
	if err != nil {
		return nil, err
	}
	s.Store = store.New(driver, profile).WithLogger(logger)
	s.Store.OnStateChange(observability.SetStoreDegraded)
	if err := s.Store.Migrate(ctx); err != nil {
		_ = s.Store.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	s.Store.Load(ctx)

	s.locker, err = lock.New(profile, logger)
	if err != nil {
		_ = s.Store.Close()
		return nil, errors.Wrap(err, "failed to create venue locker")
	}

	location := profile.LoadLocation()
	s.Catalog = venue.Default()

	opts := []aischedule.ResolverOption{
		aischedule.WithLogger(logger),
		aischedule.WithMaxOccurrences(profile.MaxOccurrences),
	}
	if profile.IsAIEnabled() {
		cfg := ai.NewLLMConfigFromProfile(profile)
		if err := cfg.Validate(); err != nil {
			_ = s.Close(ctx)
			return nil, errors.Wrap(err, "invalid AI configuration")
		}
		llm, err := ai.NewLLMService(cfg, logger)
		if err != nil {
			_ = s.Close(ctx)
			return nil, errors.Wrap(err, "failed to create LLM service")
		}
		s.llm = llm
		suggester := aischedule.NewLLMSuggester(llm, s.Catalog, location, logger)
		opts = append(opts, aischedule.WithSuggester(booking.NewMeteredSuggester(suggester)))
		logger.Info("external suggestions enabled", "provider", cfg.Provider, "model", cfg.Model)
	}

	s.Resolver = aischedule.NewResolver(s.Catalog, aitime.NewExtractor(location, logger), opts...)
	s.Bookings = booking.NewService(s.Store, s.Catalog, location,
		booking.WithLocker(s.locker),
		booking.WithLogger(logger))
	s.Assistant = booking.NewAssistant(s.Resolver, s.Bookings)

	logger.Info("venuebook ready",
		"driver", profile.Driver,
		"lock", profile.LockBackend,
		"timezone", location.String(),
		"degraded", s.Store.IsDegraded())
	return s, nil
}

// Health reports store, lock and AI state. A degraded store is given one
// chance to recover first. An enabled collaborator is pinged once; a failed
// ping marks it degraded and parsing falls back to local rules.
func (s *Server) Health(ctx context.Context) Health {
	if s.Store.IsDegraded() {
		if err := s.Store.Recover(ctx); err != nil {
			s.logger.Warn("booking store still degraded", "error", err)
		}
	}

	h := Health{
		Store:     s.Store.Health(ctx),
		Lock:      s.Profile.LockBackend,
		AIEnabled: s.Profile.IsAIEnabled(),
		AIStatus:  AIStatusDisabled,
	}
	if err := s.locker.HealthCheck(ctx); err != nil {
		h.LockError = err.Error()
	}
	if s.llm != nil {
		h.AIStatus = AIStatusOperational
		if err := s.llm.Ping(ctx); err != nil {
			h.AIStatus, h.AIError = AIStatusDegraded, err.Error()
			s.logger.Warn("external collaborator unreachable", "error", err)
		}
	}
	return h
}

// Close releases the store, lock backend and tracer.
func (s *Server) Close(ctx context.Context) error {
	var firstErr error
	if s.locker != nil {
		if err := s.locker.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.tracing.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

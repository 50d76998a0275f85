package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldOperation is the field name for the booking operation.
	LogFieldOperation = "operation"
	// LogFieldVenueID is the field name for venue ID.
	LogFieldVenueID = "venue_id"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldOutcome is the field name for the request outcome.
	LogFieldOutcome = "outcome"
)

// RequestContext carries the structured logging fields of one booking request.
type RequestContext struct {
	RequestID string
	Operation string
	VenueID   string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, operation string) *RequestContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestContext{
		RequestID: uuid.New().String(),
		Operation: operation,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// LogAttrs returns the request fields as slog attributes.
func (r *RequestContext) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldOperation, r.Operation),
	}
	if r.VenueID != "" {
		attrs = append(attrs, slog.String(LogFieldVenueID, r.VenueID))
	}
	return attrs
}

// WithFields returns a logger carrying the request fields plus attrs.
func (r *RequestContext) WithFields(attrs ...slog.Attr) *slog.Logger {
	all := append(r.LogAttrs(), attrs...)
	args := make([]any, len(all))
	for i, a := range all {
		args[i] = a
	}
	return r.Logger.With(args...)
}

// Info logs an info message.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelInfo, msg, attrs...)
}

// Warn logs a warning message.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelWarn, msg, attrs...)
}

// Error logs an error message with the error.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	r.log(slog.LevelError, msg, append(attrs, slog.String("error", err.Error()))...)
}

func (r *RequestContext) log(level slog.Level, msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), level, msg, append(r.LogAttrs(), attrs...)...)
}

// Duration returns the elapsed time since the request started.
func (r *RequestContext) Duration() time.Duration {
	return time.Since(r.StartTime)
}

// LogCompletion logs the end of the request. Conflicts and validation failures
// are user outcomes and log at Warn; anything else non-nil logs at Error.
func (r *RequestContext) LogCompletion(err error) {
	duration := slog.Int64(LogFieldDuration, r.Duration().Milliseconds())
	if err == nil {
		r.Info("request completed", duration, slog.String(LogFieldOutcome, "ok"))
		return
	}

	code := bookingerrors.CodeOf(err, bookingerrors.ErrCodeStoreUnavailable)
	attrs := []slog.Attr{duration, slog.String(LogFieldErrorCode, string(code)), slog.String("error", err.Error())}
	switch code {
	case bookingerrors.ErrCodeBookingConflict, bookingerrors.ErrCodeValidationFailed,
		bookingerrors.ErrCodeInvalidArgument, bookingerrors.ErrCodeBookingNotFound:
		r.Warn("request rejected", append(attrs, slog.String(LogFieldOutcome, "rejected"))...)
	default:
		r.log(slog.LevelError, "request failed", append(attrs, slog.String(LogFieldOutcome, "failed"))...)
	}
}

type ctxKey struct{}

// WithRequestContext adds the request context to the context.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context from the context.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

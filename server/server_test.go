package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/server/service/booking"
)

func TestNewServer_Memory(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Driver: "memory", Timezone: "Asia/Hong_Kong"}
	require.NoError(t, p.Validate())

	ctx := context.Background()
	s, err := NewServer(ctx, p, nil)
	require.NoError(t, err)
	defer s.Close(ctx)

	h := s.Health(ctx)
	assert.Equal(t, "healthy", h.Store.Status)
	assert.Equal(t, "local", h.Lock)
	assert.Empty(t, h.LockError)
	assert.False(t, h.AIEnabled)
	assert.Equal(t, AIStatusDisabled, h.AIStatus)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	b, err := s.Bookings.Create(ctx, &booking.CreateRequest{
		VenueID:     "auditorium",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		ContactInfo: "校務處",
	})
	require.NoError(t, err)
	assert.Equal(t, "禮堂", b.VenueName)
	assert.Equal(t, 1, s.Health(ctx).Store.BookingCount)
}

func TestNewServer_SQLite(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
	require.NoError(t, p.Validate())

	ctx := context.Background()
	s, err := NewServer(ctx, p, nil)
	require.NoError(t, err)
	defer s.Close(ctx)

	parsed := s.Assistant.Parse(ctx, "明天下午2點借101號室開會")
	assert.True(t, parsed.CanProceed)
	assert.Equal(t, "room-101", parsed.Intent.Venue.ID)
}

func TestNewServer_RejectsBadAIConfig(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Driver: "memory", AIEnabled: true, AIAPIKey: "sk-test", AIProvider: "gemini", AIModel: "x"}
	require.NoError(t, p.Validate())

	_, err := NewServer(context.Background(), p, nil)
	assert.Error(t, err)
}

func aiProfile(baseURL string) *profile.Profile {
	return &profile.Profile{
		Mode: "dev", Driver: "memory",
		AIEnabled: true, AIProvider: "deepseek", AIModel: "deepseek-chat", AIAPIKey: "sk-test",
		AIBaseURL: baseURL + "/v1", AITimeout: time.Second, AIMaxRetries: 1, AIRequestsPerSecond: 100,
	}
}

func TestHealth_AIStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("operational", func(t *testing.T) {
		vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "chatcmpl-health", "object": "chat.completion", "model": "deepseek-chat",
				"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": "ok"}}},
			})
		}))
		defer vendor.Close()

		p := aiProfile(vendor.URL)
		require.NoError(t, p.Validate())
		s, err := NewServer(ctx, p, nil)
		require.NoError(t, err)
		defer s.Close(ctx)

		h := s.Health(ctx)
		assert.True(t, h.AIEnabled)
		assert.Equal(t, AIStatusOperational, h.AIStatus)
		assert.Empty(t, h.AIError)
	})

	t.Run("degraded when the vendor fails", func(t *testing.T) {
		vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":{"message":"down"}}`, http.StatusServiceUnavailable)
		}))
		defer vendor.Close()

		p := aiProfile(vendor.URL)
		require.NoError(t, p.Validate())
		s, err := NewServer(ctx, p, nil)
		require.NoError(t, err)
		defer s.Close(ctx)

		h := s.Health(ctx)
		assert.Equal(t, AIStatusDegraded, h.AIStatus)
		assert.NotEmpty(t, h.AIError)
		assert.Equal(t, "healthy", h.Store.Status)
	})
}

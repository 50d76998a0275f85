package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletions serves the OpenAI chat completions endpoint.
func fakeCompletions(t *testing.T, handler func(attempt int32, w http.ResponseWriter)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		handler(atomic.AddInt32(&calls, 1), w)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "deepseek-chat",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func testConfig(baseURL string) *LLMConfig {
	return &LLMConfig{
		Enabled:           true,
		Provider:          "deepseek",
		Model:             "deepseek-chat",
		APIKey:            "test-key",
		BaseURL:           baseURL + "/v1",
		Timeout:           200 * time.Millisecond,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
		RequestsPerSecond: 1000,
	}
}

func TestLLMService_Chat(t *testing.T) {
	srv, calls := fakeCompletions(t, func(_ int32, w http.ResponseWriter) {
		writeCompletion(w, `{"venue":"音樂室"}`)
	})

	svc, err := NewLLMService(testConfig(srv.URL), nil)
	require.NoError(t, err)

	got, err := svc.Chat(context.Background(), []Message{SystemPrompt("sys"), UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, `{"venue":"音樂室"}`, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestLLMService_RetriesThenSucceeds(t *testing.T) {
	srv, calls := fakeCompletions(t, func(attempt int32, w http.ResponseWriter) {
		if attempt < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		writeCompletion(w, "ok")
	})

	svc, err := NewLLMService(testConfig(srv.URL), nil)
	require.NoError(t, err)

	got, err := svc.Chat(context.Background(), []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestLLMService_GivesUpAfterMaxRetries(t *testing.T) {
	srv, calls := fakeCompletions(t, func(_ int32, w http.ResponseWriter) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
	})

	svc, err := NewLLMService(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []Message{UserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestLLMService_AttemptTimeout(t *testing.T) {
	srv, _ := fakeCompletions(t, func(_ int32, w http.ResponseWriter) {
		time.Sleep(500 * time.Millisecond)
		writeCompletion(w, "too late")
	})

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRetries = 2
	svc, err := NewLLMService(cfg, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Chat(context.Background(), []Message{UserMessage("hi")})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestLLMService_Disabled(t *testing.T) {
	svc, err := NewLLMService(&LLMConfig{Enabled: false}, nil)
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLLMDisabled)
	assert.ErrorIs(t, svc.Ping(context.Background()), ErrLLMDisabled)
}

func TestLLMService_Ping(t *testing.T) {
	t.Run("operational", func(t *testing.T) {
		srv, calls := fakeCompletions(t, func(_ int32, w http.ResponseWriter) {
			writeCompletion(w, "p")
		})
		svc, err := NewLLMService(testConfig(srv.URL), nil)
		require.NoError(t, err)

		require.NoError(t, svc.Ping(context.Background()))
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("single attempt on failure", func(t *testing.T) {
		srv, calls := fakeCompletions(t, func(_ int32, w http.ResponseWriter) {
			http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
		})
		svc, err := NewLLMService(testConfig(srv.URL), nil)
		require.NoError(t, err)

		assert.Error(t, svc.Ping(context.Background()))
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})
}

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMConfig
		wantErr bool
	}{
		{"disabled", LLMConfig{}, false},
		{"valid", LLMConfig{Enabled: true, Provider: "deepseek", Model: "deepseek-chat", APIKey: "k"}, false},
		{"missing key", LLMConfig{Enabled: true, Provider: "openai", Model: "gpt-4o-mini"}, true},
		{"missing provider", LLMConfig{Enabled: true, Model: "m", APIKey: "k"}, true},
		{"unsupported provider", LLMConfig{Enabled: true, Provider: "ollama", Model: "m", APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProfileDefaults 测试默认配置
func TestProfileDefaults(t *testing.T) {
	for _, key := range []string{
		"VENUEBOOK_TIMEZONE", "VENUEBOOK_MAX_OCCURRENCES", "VENUEBOOK_AI_ENABLED",
		"VENUEBOOK_AI_PROVIDER", "VENUEBOOK_AI_BASE_URL", "DEEPSEEK_API_URL",
		"VENUEBOOK_AI_API_KEY", "DEEPSEEK_API_KEY", "VENUEBOOK_AI_MODEL",
		"VENUEBOOK_AI_TIMEOUT", "VENUEBOOK_AI_RPS", "VENUEBOOK_LOCK_BACKEND",
	} {
		t.Setenv(key, "")
	}

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, DefaultTimezone, p.Timezone)
	assert.Equal(t, DefaultMaxOccurrences, p.MaxOccurrences)
	assert.False(t, p.AIEnabled)
	assert.Equal(t, "deepseek", p.AIProvider)
	assert.Equal(t, "https://api.deepseek.com/v1", p.AIBaseURL)
	assert.Equal(t, "deepseek-chat", p.AIModel)
	assert.Equal(t, 8*time.Second, p.AITimeout)
	assert.Equal(t, 3, p.AIMaxRetries)
	assert.Equal(t, "local", p.LockBackend)
	assert.False(t, p.IsAIEnabled())
}

// TestProfileLegacyEnv 测试旧版 DEEPSEEK_* 环境变量
func TestProfileLegacyEnv(t *testing.T) {
	t.Setenv("VENUEBOOK_AI_API_KEY", "")
	t.Setenv("VENUEBOOK_AI_BASE_URL", "")
	t.Setenv("DEEPSEEK_API_KEY", "legacy-key")
	t.Setenv("DEEPSEEK_API_URL", "https://example.test/v1")
	t.Setenv("VENUEBOOK_AI_ENABLED", "true")
	t.Setenv("VENUEBOOK_AI_TIMEOUT", "3s")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "legacy-key", p.AIAPIKey)
	assert.Equal(t, "https://example.test/v1", p.AIBaseURL)
	assert.Equal(t, 3*time.Second, p.AITimeout)
	assert.True(t, p.IsAIEnabled())

	t.Setenv("VENUEBOOK_AI_API_KEY", "new-key")
	p.FromEnv()
	assert.Equal(t, "new-key", p.AIAPIKey)
}

func TestProfileValidate(t *testing.T) {
	t.Run("sqlite fills DSN", func(t *testing.T) {
		dir := t.TempDir()
		p := &Profile{Mode: "dev", Data: dir}
		require.NoError(t, p.Validate())
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(dir, "venuebook_dev.db"), p.DSN)
		assert.Equal(t, DefaultMaxOccurrences, p.MaxOccurrences)
	})

	t.Run("unknown mode becomes demo", func(t *testing.T) {
		p := &Profile{Mode: "weird", Driver: "memory"}
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
	})

	t.Run("missing data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: filepath.Join(t.TempDir(), "missing")}
		assert.Error(t, p.Validate())
	})

	t.Run("postgres requires DSN", func(t *testing.T) {
		p := &Profile{Driver: "postgres"}
		assert.Error(t, p.Validate())
	})

	t.Run("redis lock requires address", func(t *testing.T) {
		p := &Profile{Driver: "memory", LockBackend: "redis"}
		assert.Error(t, p.Validate())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		p := &Profile{Driver: "mysql"}
		assert.Error(t, p.Validate())
	})
}

func TestProfileLoadLocation(t *testing.T) {
	p := &Profile{Timezone: "Not/AZone"}
	loc := p.LoadLocation()
	_, offset := time.Date(2025, 6, 28, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*60*60, offset)
}

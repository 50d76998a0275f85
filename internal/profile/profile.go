package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/venuebook/server/timezone"
)

const (
	// DefaultTimezone is the civil timezone every relative date is anchored to.
	DefaultTimezone = "Asia/Hong_Kong"
	// DefaultMaxOccurrences bounds recurring expansions when nothing is configured.
	DefaultMaxOccurrences = 8
)

// Profile is the configuration to start the booking core.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where venuebook stores its bookings
	DSN string
	// Driver is the database driver (sqlite, postgres or memory)
	Driver string
	// Version is the current version of the binary
	Version string

	// Timezone is the IANA name of the civil timezone (VENUEBOOK_TIMEZONE)
	Timezone string
	// MaxOccurrences caps recurring expansions (VENUEBOOK_MAX_OCCURRENCES)
	MaxOccurrences int

	// External NL collaborator
	AIEnabled           bool          // VENUEBOOK_AI_ENABLED
	AIProvider          string        // VENUEBOOK_AI_PROVIDER (default: deepseek)
	AIBaseURL           string        // VENUEBOOK_AI_BASE_URL (legacy: DEEPSEEK_API_URL)
	AIAPIKey            string        // VENUEBOOK_AI_API_KEY (legacy: DEEPSEEK_API_KEY)
	AIModel             string        // VENUEBOOK_AI_MODEL (default: deepseek-chat)
	AITimeout           time.Duration // VENUEBOOK_AI_TIMEOUT (default: 8s)
	AIMaxRetries        int           // VENUEBOOK_AI_MAX_RETRIES (default: 3)
	AIRequestsPerSecond float64       // VENUEBOOK_AI_RPS (default: 2)

	// Per-venue write lock
	LockBackend   string // VENUEBOOK_LOCK_BACKEND: local or redis
	RedisAddr     string // VENUEBOOK_REDIS_ADDR
	RedisPassword string // VENUEBOOK_REDIS_PASSWORD
	RedisDB       int    // VENUEBOOK_REDIS_DB

	// OTLPEndpoint enables tracing export when set (VENUEBOOK_OTLP_ENDPOINT)
	OTLPEndpoint string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the external collaborator is enabled and has credentials.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// FromEnv loads configuration from environment variables.
// Supports VENUEBOOK_* and the legacy DEEPSEEK_* names.
func (p *Profile) FromEnv() {
	getEnvWithDefault := func(key, legacyKey, defaultValue string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if legacyKey != "" {
			if val := os.Getenv(legacyKey); val != "" {
				return val
			}
		}
		return defaultValue
	}
	getIntEnv := func(key string, defaultValue int) int {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return n
		}
		return defaultValue
	}

	p.Timezone = getEnvWithDefault("VENUEBOOK_TIMEZONE", "", DefaultTimezone)
	p.MaxOccurrences = getIntEnv("VENUEBOOK_MAX_OCCURRENCES", DefaultMaxOccurrences)

	p.AIEnabled = getEnvWithDefault("VENUEBOOK_AI_ENABLED", "", "false") == "true"
	p.AIProvider = getEnvWithDefault("VENUEBOOK_AI_PROVIDER", "", "deepseek")
	p.AIBaseURL = getEnvWithDefault("VENUEBOOK_AI_BASE_URL", "DEEPSEEK_API_URL", "https://api.deepseek.com/v1")
	p.AIAPIKey = getEnvWithDefault("VENUEBOOK_AI_API_KEY", "DEEPSEEK_API_KEY", "")
	p.AIModel = getEnvWithDefault("VENUEBOOK_AI_MODEL", "", "deepseek-chat")
	p.AIMaxRetries = getIntEnv("VENUEBOOK_AI_MAX_RETRIES", 3)
	p.AITimeout = 8 * time.Second
	if d, err := time.ParseDuration(os.Getenv("VENUEBOOK_AI_TIMEOUT")); err == nil {
		p.AITimeout = d
	}
	p.AIRequestsPerSecond = 2
	if rps, err := strconv.ParseFloat(os.Getenv("VENUEBOOK_AI_RPS"), 64); err == nil {
		p.AIRequestsPerSecond = rps
	}

	p.LockBackend = getEnvWithDefault("VENUEBOOK_LOCK_BACKEND", "", "local")
	p.RedisAddr = getEnvWithDefault("VENUEBOOK_REDIS_ADDR", "", "")
	p.RedisPassword = getEnvWithDefault("VENUEBOOK_REDIS_PASSWORD", "", "")
	p.RedisDB = getIntEnv("VENUEBOOK_REDIS_DB", 0)

	p.OTLPEndpoint = getEnvWithDefault("VENUEBOOK_OTLP_ENDPOINT", "", "")
}

// LoadLocation resolves the civil timezone. Hosts without tzdata get a fixed UTC+8 zone.
func (p *Profile) LoadLocation() *time.Location {
	name := p.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := timezone.ParseTimezone(name)
	if err != nil {
		slog.Warn("failed to load timezone, using fixed UTC+8", "timezone", name, "error", err)
	}
	return loc
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.MaxOccurrences <= 0 {
		p.MaxOccurrences = DefaultMaxOccurrences
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.LockBackend == "" {
		p.LockBackend = "local"
	}

	switch p.Driver {
	case "memory":
		return p.validateLock()
	case "postgres":
		if p.DSN == "" {
			return errors.New("postgres driver requires a DSN")
		}
		return p.validateLock()
	case "sqlite":
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = "/var/opt/venuebook"
		} else {
			p.Data = "."
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("venuebook_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return p.validateLock()
}

func (p *Profile) validateLock() error {
	switch p.LockBackend {
	case "local":
		return nil
	case "redis":
		if p.RedisAddr == "" {
			return errors.New("redis lock backend requires VENUEBOOK_REDIS_ADDR")
		}
		return nil
	default:
		return errors.Errorf("unsupported lock backend %q", p.LockBackend)
	}
}

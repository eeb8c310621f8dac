// Package config provides environment-aware configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sectorwars2102/gameserver/internal/domain/region"
)

// Environment identifies the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// ParseEnvironment parses a raw GAMESERVER_ENV-style string into an
// Environment, defaulting callers to Development on unrecognized input.
func ParseEnvironment(s string) (Environment, bool) {
	switch Environment(strings.ToLower(s)) {
	case Development:
		return Development, true
	case Testing:
		return Testing, true
	case Production:
		return Production, true
	default:
		return Development, false
	}
}

// Config holds all application configuration.
type Config struct {
	Env Environment

	// Global shard
	GlobalDatabaseURL string
	DBMaxConnections  int
	DBIdleTimeout     time.Duration

	// HTTP / API surface
	APIPort          int
	MetricsPort      int
	RequestTimeout   time.Duration

	// Region this process's gameplay API and scheduler lease contend for;
	// the scheduler still opens every active region's shard regardless, so
	// its jobs can run wherever this instance wins the lease.
	GameRegionName string

	// Identity & access
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	RefreshExpiry    time.Duration
	Argon2Memory     uint32
	Argon2Iterations uint32

	// External OAuth providers
	OAuthGithubClientID     string
	OAuthGithubClientSecret string
	OAuthGoogleClientID     string
	OAuthGoogleClientSecret string
	OAuthDiscordClientID    string
	OAuthDiscordClientSecret string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Event fabric
	WSOutboundHighWater int
	WSDurableSendDeadline time.Duration

	// AI advisory, each entry "endpoint=apikey"
	AIProviderKeys       []string
	AICallTimeout        time.Duration
	AICacheTTL           time.Duration

	// Provisioner (C9)
	ProvisionerWebhookSecret string
	OrchestratorBaseURL      string

	// Scheduler lease manager
	SchedulerLeaseTTL           time.Duration
	SchedulerLeaseRenewInterval time.Duration
	ColonyTickCronSpec          string
	ElectionSweepCronSpec       string
	TravelSweepCronSpec         string
	TravelTimeout               time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Features
	EnableProfiling bool
	MetricsEnabled  bool
	TestMode        bool
}

// Load loads configuration based on the GAMESERVER_ENV environment
// variable, optionally overlaying an environment-specific .env file.
func Load() (*Config, error) {
	envStr := os.Getenv("GAMESERVER_ENV")
	if envStr == "" {
		envStr = string(Development)
	}
	env, ok := ParseEnvironment(envStr)
	if !ok {
		return nil, fmt.Errorf("invalid GAMESERVER_ENV: %s (must be development, testing, or production)", envStr)
	}

	configFile := filepath.Join("config", fmt.Sprintf("%s.env", env))
	if err := godotenv.Load(configFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Warning: could not load %s: %v\n", configFile, err)
		}
	}

	cfg := &Config{Env: env}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	c.GlobalDatabaseURL = getEnv("GLOBAL_DATABASE_URL", "")
	if c.GlobalDatabaseURL == "" {
		return fmt.Errorf("GLOBAL_DATABASE_URL is required")
	}
	c.DBMaxConnections = getIntEnv("DB_MAX_CONNECTIONS", 20)
	dbIdleTimeout := getEnv("DB_IDLE_TIMEOUT", "5m")
	var err error
	c.DBIdleTimeout, err = time.ParseDuration(dbIdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid DB_IDLE_TIMEOUT: %w", err)
	}

	c.APIPort = getIntEnv("API_PORT", 8080)
	c.MetricsPort = getIntEnv("METRICS_PORT", 9090)
	requestTimeout := getEnv("REQUEST_TIMEOUT", "30s")
	c.RequestTimeout, err = time.ParseDuration(requestTimeout)
	if err != nil {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	c.GameRegionName = getEnv("GAME_REGION_NAME", region.NexusName)

	c.JWTSecret = getEnv("JWT_SECRET", "")
	if c.JWTSecret == "" && c.Env == Production {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	jwtExpiry := getEnv("JWT_ACCESS_EXPIRY", "15m")
	c.JWTAccessExpiry, err = time.ParseDuration(jwtExpiry)
	if err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRY: %w", err)
	}
	refreshExpiry := getEnv("REFRESH_EXPIRY", "720h")
	c.RefreshExpiry, err = time.ParseDuration(refreshExpiry)
	if err != nil {
		return fmt.Errorf("invalid REFRESH_EXPIRY: %w", err)
	}
	c.Argon2Memory = uint32(getIntEnv("ARGON2_MEMORY_KB", 64*1024))
	c.Argon2Iterations = uint32(getIntEnv("ARGON2_ITERATIONS", 3))

	c.OAuthGithubClientID = getEnv("OAUTH_GITHUB_CLIENT_ID", "")
	c.OAuthGithubClientSecret = getEnv("OAUTH_GITHUB_CLIENT_SECRET", "")
	c.OAuthGoogleClientID = getEnv("OAUTH_GOOGLE_CLIENT_ID", "")
	c.OAuthGoogleClientSecret = getEnv("OAUTH_GOOGLE_CLIENT_SECRET", "")
	c.OAuthDiscordClientID = getEnv("OAUTH_DISCORD_CLIENT_ID", "")
	c.OAuthDiscordClientSecret = getEnv("OAUTH_DISCORD_CLIENT_SECRET", "")

	c.RateLimitEnabled = getBoolEnv("RATE_LIMIT_ENABLED", true)
	c.RateLimitRequests = getIntEnv("RATE_LIMIT_REQUESTS", 100)
	rateLimitWindow := getEnv("RATE_LIMIT_WINDOW", "1m")
	c.RateLimitWindow, err = time.ParseDuration(rateLimitWindow)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	c.WSOutboundHighWater = getIntEnv("WS_OUTBOUND_HIGH_WATER", 256)
	wsDeadline := getEnv("WS_DURABLE_SEND_DEADLINE", "2s")
	c.WSDurableSendDeadline, err = time.ParseDuration(wsDeadline)
	if err != nil {
		return fmt.Errorf("invalid WS_DURABLE_SEND_DEADLINE: %w", err)
	}

	keys := getEnv("AI_PROVIDER_KEYS", "")
	if keys != "" {
		c.AIProviderKeys = strings.Split(keys, ",")
	}
	aiTimeout := getEnv("AI_CALL_TIMEOUT", "2s")
	c.AICallTimeout, err = time.ParseDuration(aiTimeout)
	if err != nil {
		return fmt.Errorf("invalid AI_CALL_TIMEOUT: %w", err)
	}
	aiCacheTTL := getEnv("AI_CACHE_TTL", "5m")
	c.AICacheTTL, err = time.ParseDuration(aiCacheTTL)
	if err != nil {
		return fmt.Errorf("invalid AI_CACHE_TTL: %w", err)
	}

	c.ProvisionerWebhookSecret = getEnv("PROVISIONER_WEBHOOK_SECRET", "")
	c.OrchestratorBaseURL = getEnv("ORCHESTRATOR_BASE_URL", "")

	leaseTTL := getEnv("SCHEDULER_LEASE_TTL", "2m")
	c.SchedulerLeaseTTL, err = time.ParseDuration(leaseTTL)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_LEASE_TTL: %w", err)
	}
	leaseRenew := getEnv("SCHEDULER_LEASE_RENEW_INTERVAL", "30s")
	c.SchedulerLeaseRenewInterval, err = time.ParseDuration(leaseRenew)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_LEASE_RENEW_INTERVAL: %w", err)
	}
	c.ColonyTickCronSpec = getEnv("COLONY_TICK_CRON", "@every 1h")
	c.ElectionSweepCronSpec = getEnv("ELECTION_SWEEP_CRON", "@every 5m")
	c.TravelSweepCronSpec = getEnv("TRAVEL_SWEEP_CRON", "@every 5m")
	travelTimeout := getEnv("TRAVEL_TIMEOUT", "30m")
	c.TravelTimeout, err = time.ParseDuration(travelTimeout)
	if err != nil {
		return fmt.Errorf("invalid TRAVEL_TIMEOUT: %w", err)
	}

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogFormat = getEnv("LOG_FORMAT", "json")

	c.EnableProfiling = getBoolEnv("ENABLE_PROFILING", false)
	c.MetricsEnabled = getBoolEnv("METRICS_ENABLED", c.Env == Production)
	c.TestMode = getBoolEnv("TEST_MODE", false)

	return nil
}

// IsDevelopment reports whether running in the development environment.
func (c *Config) IsDevelopment() bool { return c.Env == Development }

// IsTesting reports whether running in the testing environment.
func (c *Config) IsTesting() bool { return c.Env == Testing }

// IsProduction reports whether running in the production environment.
func (c *Config) IsProduction() bool { return c.Env == Production }

// Validate applies stricter checks appropriate to the active environment.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.TestMode {
			return fmt.Errorf("TEST_MODE must be false in production")
		}
		if !c.RateLimitEnabled {
			return fmt.Errorf("RATE_LIMIT_ENABLED must be true in production")
		}
	}
	if c.APIPort < 1024 || c.APIPort > 65535 {
		return fmt.Errorf("invalid API_PORT: %d (must be between 1024 and 65535)", c.APIPort)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

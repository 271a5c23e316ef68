// Package config loads skytint settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmylchreest/skytint/internal/cache"
	"github.com/jmylchreest/skytint/internal/festival"
)

// Defaults.
const (
	DefaultListen      = "127.0.0.1:8080"
	DefaultGenAIModel  = "gemini-2.5-flash-image"
	DefaultArtworkTTL  = 30 * 24 * time.Hour
	DefaultArtworkRate = 6 // generations per minute per client
)

// GenAI backends.
const (
	BackendGeminiAPI = "gemini"
	BackendVertexAI  = "vertex"
)

// Config holds all runtime settings.
type Config struct {
	Festivals FestivalConfig
	Cache     CacheConfig
	Server    ServerConfig
	GenAI     GenAIConfig
}

// FestivalConfig selects the festival table and matching mode.
type FestivalConfig struct {
	TablePath string // empty uses the built-in table
	CityMatch festival.CityMatch
}

// CacheConfig selects the artwork cache.
type CacheConfig struct {
	Backend  cache.Backend
	Dir      string
	RedisURL string
	TTL      time.Duration
}

// Options converts the settings to cache.Options.
func (c CacheConfig) Options() cache.Options {
	return cache.Options{Backend: c.Backend, Dir: c.Dir, RedisURL: c.RedisURL}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ArtworkPerMin   int
	ShutdownTimeout time.Duration
}

// GenAIConfig configures artwork generation.
type GenAIConfig struct {
	APIKey   string
	Model    string
	Backend  string
	Project  string
	Location string
}

// Enabled reports whether enough is configured to create a client.
func (c GenAIConfig) Enabled() bool {
	if c.Backend == BackendVertexAI {
		return c.Project != ""
	}
	return c.APIKey != ""
}

// Load reads configuration from the environment, first priming it from
// SKYTINT_ENV_FILE or ./.env when present.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cityMatch, err := festival.ParseCityMatch(getEnv("SKYTINT_CITY_MATCH", "exact"))
	if err != nil {
		return cfg, fmt.Errorf("SKYTINT_CITY_MATCH: %w", err)
	}
	cfg.Festivals = FestivalConfig{
		TablePath: getEnv("SKYTINT_FESTIVALS", ""),
		CityMatch: cityMatch,
	}

	ttl, err := parseDurationEnv("SKYTINT_CACHE_TTL", DefaultArtworkTTL, true)
	if err != nil {
		return cfg, err
	}
	cfg.Cache = CacheConfig{
		Backend:  cache.Backend(strings.ToLower(getEnv("SKYTINT_CACHE", string(cache.BackendFile)))),
		Dir:      getEnv("SKYTINT_CACHE_DIR", ""),
		RedisURL: getEnv("SKYTINT_REDIS_URL", ""),
		TTL:      ttl,
	}

	readTimeout, err := parseDurationEnv("SKYTINT_READ_TIMEOUT", 10*time.Second, false)
	if err != nil {
		return cfg, err
	}
	writeTimeout, err := parseDurationEnv("SKYTINT_WRITE_TIMEOUT", 90*time.Second, false)
	if err != nil {
		return cfg, err
	}
	artworkPerMin, err := parseIntEnv("SKYTINT_ARTWORK_RATE", DefaultArtworkRate, true)
	if err != nil {
		return cfg, err
	}
	cfg.Server = ServerConfig{
		Listen:          getEnv("SKYTINT_LISTEN", DefaultListen),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ArtworkPerMin:   artworkPerMin,
		ShutdownTimeout: 10 * time.Second,
	}

	apiKey := getEnv("GOOGLE_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}
	cfg.GenAI = GenAIConfig{
		APIKey:   apiKey,
		Model:    getEnv("SKYTINT_GENAI_MODEL", DefaultGenAIModel),
		Backend:  strings.ToLower(getEnv("SKYTINT_GENAI_BACKEND", BackendGeminiAPI)),
		Project:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		Location: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("SKYTINT_REDIS_URL is required when SKYTINT_CACHE=redis")
		}
	default:
		return fmt.Errorf("SKYTINT_CACHE must be one of memory, file, redis (got %q)", c.Cache.Backend)
	}

	switch c.GenAI.Backend {
	case BackendGeminiAPI, BackendVertexAI:
	default:
		return fmt.Errorf("SKYTINT_GENAI_BACKEND must be %q or %q (got %q)", BackendGeminiAPI, BackendVertexAI, c.GenAI.Backend)
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("SKYTINT_LISTEN cannot be empty")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// parseIntEnv reads a positive integer from key. With allowZero, 0 is also
// accepted and left for the caller to interpret as "off".
func parseIntEnv(key string, fallback int, allowZero bool) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if err := checkPositive(key, parsed, allowZero); err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration, allowZero bool) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if err := checkPositive(key, parsed, allowZero); err != nil {
		return 0, err
	}
	return parsed, nil
}

func checkPositive[T int | time.Duration](key string, v T, allowZero bool) error {
	switch {
	case v < 0 && allowZero:
		return fmt.Errorf("%s must not be negative", key)
	case v <= 0 && !allowZero:
		return fmt.Errorf("%s must be greater than 0", key)
	}
	return nil
}

func loadEnv() error {
	if envFile := os.Getenv("SKYTINT_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the catalog search service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Mirror     MirrorConfig     `yaml:"mirror"`
	Generation GenerationConfig `yaml:"generation"`
	Search     SearchConfig     `yaml:"search"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the catalog Postgres connection settings.
type DatabaseConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	ReadinessTimeout   int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds catalog snapshot cache settings.
type CacheConfig struct {
	TTLSec            int `yaml:"ttl_sec"`
	RefreshTimeoutSec int `yaml:"refresh_timeout_sec"`
	MaxActivities     int `yaml:"max_activities"`
	MaxVenues         int `yaml:"max_venues"`
	MaxDestinations   int `yaml:"max_destinations"`
}

// MirrorConfig holds the optional Redis snapshot mirror settings.
// The mirror also persists generation budget counters.
type MirrorConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	SnapshotTTLSec   int      `yaml:"snapshot_ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// GenerationConfig holds the narrative generation provider settings.
// An empty APIKey disables generation; answers then come from the template.
type GenerationConfig struct {
	Provider    string       `yaml:"provider"`
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float32      `yaml:"temperature"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// Enabled reports whether a generation provider is configured.
func (g GenerationConfig) Enabled() bool { return g.APIKey != "" }

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// SearchConfig holds query and ranking settings.
type SearchConfig struct {
	MaxQueryLength  int `yaml:"max_query_length"`
	MaxActivities   int `yaml:"max_activities"`
	MaxVenues       int `yaml:"max_venues"`
	MaxDestinations int `yaml:"max_destinations"`
	// Weights overrides the built-in scoring weights when set.
	Weights *WeightsConfig `yaml:"weights"`
}

// FieldWeightsConfig holds per-field points for one scoring tier.
type FieldWeightsConfig struct {
	Name        int `yaml:"name"`
	Description int `yaml:"description"`
	Location    int `yaml:"location"`
	Facet       int `yaml:"facet"`
}

// CombinationWeightsConfig holds the decaying combination tier.
type CombinationWeightsConfig struct {
	Base  int                `yaml:"base"`
	Decay int                `yaml:"decay"`
	Floor int                `yaml:"floor"`
	Share FieldWeightsConfig `yaml:"share"`
}

// WeightsConfig holds all scoring weights.
type WeightsConfig struct {
	Exact       FieldWeightsConfig       `yaml:"exact"`
	Combination CombinationWeightsConfig `yaml:"combination"`
	Keyword     FieldWeightsConfig       `yaml:"keyword"`
	ExactBonus  int                      `yaml:"exact_bonus"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expands env variables, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 1800
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.RefreshTimeoutSec <= 0 {
		c.Cache.RefreshTimeoutSec = 10
	}
	if c.Cache.MaxActivities <= 0 {
		c.Cache.MaxActivities = 100
	}
	if c.Cache.MaxVenues <= 0 {
		c.Cache.MaxVenues = 50
	}
	if c.Cache.MaxDestinations <= 0 {
		c.Cache.MaxDestinations = 30
	}

	if c.Mirror.KeyPrefix == "" {
		c.Mirror.KeyPrefix = "catalog-search:"
	}
	if c.Mirror.SnapshotTTLSec <= 0 {
		c.Mirror.SnapshotTTLSec = 86400
	}
	if c.Mirror.ReadinessTimeout <= 0 {
		c.Mirror.ReadinessTimeout = 5
	}

	if c.Generation.Provider == "" {
		c.Generation.Provider = "openai"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 200
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 8
	}
	if c.Generation.Budget.Action == "" {
		c.Generation.Budget.Action = "warn"
	}

	if c.Search.MaxQueryLength <= 0 {
		c.Search.MaxQueryLength = 500
	}
	if c.Search.MaxActivities <= 0 {
		c.Search.MaxActivities = 10
	}
	if c.Search.MaxVenues <= 0 {
		c.Search.MaxVenues = 8
	}
	if c.Search.MaxDestinations <= 0 {
		c.Search.MaxDestinations = 6
	}
}

// Validate checks the configuration for correctness.
// Scoring weights are validated by the search package when the scorer is built.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Mirror.Enabled && len(c.Mirror.Addrs) == 0 {
		return fmt.Errorf("mirror.addrs is required when the mirror is enabled")
	}
	switch c.Generation.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf(
			"generation.budget.action must be \"warn\" or \"reject\", got %q",
			c.Generation.Budget.Action,
		)
	}
	if c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be at most 2, got %v", c.Generation.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

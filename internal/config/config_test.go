package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "postgres://localhost/catalog"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.Budget.Action = "invalid_action"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `generation.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Generation.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"mirror addrs", func(c *Config) { c.Mirror.Enabled = true }, "mirror.addrs"},
		{"temperature", func(c *Config) { c.Generation.Temperature = 3 }, "generation.temperature"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Cache.TTLSec != 300 {
		t.Errorf("cache ttl = %d, want 300", cfg.Cache.TTLSec)
	}
	if cfg.Cache.MaxActivities != 100 || cfg.Cache.MaxVenues != 50 || cfg.Cache.MaxDestinations != 30 {
		t.Errorf("unexpected fetch caps: %+v", cfg.Cache)
	}
	if cfg.Search.MaxActivities != 10 || cfg.Search.MaxVenues != 8 || cfg.Search.MaxDestinations != 6 {
		t.Errorf("unexpected output caps: %+v", cfg.Search)
	}
	if cfg.Search.MaxQueryLength != 500 {
		t.Errorf("max query length = %d", cfg.Search.MaxQueryLength)
	}
	if cfg.Generation.MaxTokens != 200 || cfg.Generation.Temperature != 0.7 || cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("unexpected generation defaults: %+v", cfg.Generation)
	}
	if cfg.Generation.Budget.Action != "warn" {
		t.Errorf("budget action = %q", cfg.Generation.Budget.Action)
	}
	if cfg.Mirror.KeyPrefix != "catalog-search:" {
		t.Errorf("key prefix = %q", cfg.Mirror.KeyPrefix)
	}
	if cfg.Generation.Enabled() {
		t.Error("generation must be disabled without an api key")
	}
}

func TestParse_ExpandsEnvAndWeights(t *testing.T) {
	t.Setenv("CATALOG_DSN", "postgres://db/catalog")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	data := []byte(`
http:
  port: 9090
database:
  dsn: ${CATALOG_DSN}
generation:
  api_key: ${OPENAI_API_KEY}
  base_url: ${OPENAI_BASE_URL:-https://api.openai.com/v1}
search:
  weights:
    exact: {name: 60, description: 45, location: 40, facet: 35}
    combination:
      base: 30
      decay: 3
      floor: 2
      share: {name: 100, description: 80, location: 70, facet: 60}
    keyword: {name: 12, description: 8, location: 6, facet: 4}
    exact_bonus: 25
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.DSN != "postgres://db/catalog" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if !cfg.Generation.Enabled() || cfg.Generation.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.Generation.APIKey)
	}
	if cfg.Generation.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base url default not applied: %q", cfg.Generation.BaseURL)
	}
	w := cfg.Search.Weights
	if w == nil {
		t.Fatal("expected weights override")
	}
	if w.Exact.Name != 60 || w.Combination.Decay != 3 || w.Keyword.Facet != 4 || w.ExactBonus != 25 {
		t.Errorf("unexpected weights: %+v", *w)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SET_VAR", "value")

	got := string(expandEnvVars([]byte("a=${SET_VAR} b=${UNSET_VAR_XYZ:-fallback} c=${UNSET_VAR_XYZ}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("expandEnvVars = %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "DATABASE_DRIVER", "DATABASE_URL", "POSTGRES_DSN",
	"SQLITE_PATH", "DATABASE_MAX_OPEN_CONNS", "ALLOWED_ORIGINS", "DEBUG",
	"MAX_BODY_BYTES", "REQUEST_TIMEOUT",
}

// clearEnv isolates a test from the host environment and from .env files.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadConfig()

	if cfg.Environment != "development" || cfg.Port != "3000" {
		t.Errorf("unexpected env/port %q %q", cfg.Environment, cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.SQLitePath != "./data/cms.db" {
		t.Errorf("unexpected database defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.MaxBodyBytes != 1<<20 || cfg.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected limits %d %v", cfg.MaxBodyBytes, cfg.RequestTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_DRIVER", "PGX")
	t.Setenv("POSTGRES_DSN", " postgres://u@h/db \n")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DEBUG", "true")
	t.Setenv("REQUEST_TIMEOUT", "15")

	cfg := LoadConfig()
	if cfg.DatabaseDriver != "pgx" || cfg.DatabaseURL != "postgres://u@h/db" {
		t.Errorf("unexpected database config %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.Debug {
		t.Error("debug must be forced off in production")
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("environment helpers disagree")
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(filepath.Join(".", ".env.local"), []byte("PORT=4000\nSQLITE_PATH=\"/tmp/x.db\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides a variable that exists, even when empty
	os.Unsetenv("PORT")
	os.Unsetenv("SQLITE_PATH")

	cfg := LoadConfig()
	if cfg.Port != "4000" || cfg.SQLitePath != "/tmp/x.db" {
		t.Errorf("env file not loaded: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Port: "3000", DatabaseDriver: "sqlite", SQLitePath: "x.db", MaxBodyBytes: 1, RequestTimeout: time.Second}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid sqlite", func(c *Config) {}, true},
		{"missing port", func(c *Config) { c.Port = "" }, false},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres" }, false},
		{"postgres with url", func(c *Config) { c.DatabaseDriver = "postgres"; c.DatabaseURL = "postgres://x" }, true},
		{"pq alias with url", func(c *Config) { c.DatabaseDriver = "pq"; c.DatabaseURL = "postgres://x" }, true},
		{"pq alias without url", func(c *Config) { c.DatabaseDriver = "pq" }, false},
		{"sqlite3 alias", func(c *Config) { c.DatabaseDriver = "sqlite3" }, true},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, false},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

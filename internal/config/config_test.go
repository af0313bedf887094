package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func load(t *testing.T, args []string, configFile string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	v, err := NewViper(fs)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	return Load(v, configFile)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(t, nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MongoURI != DefaultMongoURI {
		t.Errorf("MongoURI: got %q, want %q", cfg.MongoURI, DefaultMongoURI)
	}
	if cfg.Database != "tmdb" {
		t.Errorf("Database: got %q, want tmdb", cfg.Database)
	}
	if cfg.DryRun {
		t.Error("expected DryRun false by default")
	}
	if cfg.GCRate != 95 {
		t.Errorf("GCRate: got %v, want 95", cfg.GCRate)
	}
	if cfg.BillingDay != 20 {
		t.Errorf("BillingDay: got %d, want 20", cfg.BillingDay)
	}
	if cfg.BatchSize != 500 {
		t.Errorf("BatchSize: got %d, want 500", cfg.BatchSize)
	}
	if cfg.OpeningBalance != 0 {
		t.Errorf("OpeningBalance: got %v, want 0", cfg.OpeningBalance)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout: got %s, want %s", cfg.Timeout, DefaultTimeout)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017/legacy")
	t.Setenv("DEFAULT_GC_RATE", "110.5")
	t.Setenv("DEFAULT_BILLING_DAY", "5")

	cfg, err := load(t, nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MongoURI != "mongodb://db.internal:27017/legacy" {
		t.Errorf("MongoURI: got %q", cfg.MongoURI)
	}
	if cfg.Database != "legacy" {
		t.Errorf("Database: got %q, want legacy", cfg.Database)
	}
	if cfg.GCRate != 110.5 {
		t.Errorf("GCRate: got %v, want 110.5", cfg.GCRate)
	}
	if cfg.BillingDay != 5 {
		t.Errorf("BillingDay: got %d, want 5", cfg.BillingDay)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_GC_RATE", "110")
	t.Setenv("DEFAULT_BILLING_DAY", "5")

	cfg, err := load(t, []string{
		"--gc-rate=120",
		"--billing-day=28",
		"--batch-size=50",
		"--opening-balance=1500.25",
		"--dry-run",
	}, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GCRate != 120 {
		t.Errorf("GCRate: got %v, want 120", cfg.GCRate)
	}
	if cfg.BillingDay != 28 {
		t.Errorf("BillingDay: got %d, want 28", cfg.BillingDay)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize: got %d, want 50", cfg.BatchSize)
	}
	if cfg.OpeningBalance != 1500.25 {
		t.Errorf("OpeningBalance: got %v, want 1500.25", cfg.OpeningBalance)
	}
	if !cfg.DryRun {
		t.Error("expected DryRun true")
	}
}

func TestLoad_ConfigFileBelowEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_GC_RATE", "101")

	path := filepath.Join(t.TempDir(), "migrate.yaml")
	body := "gc-rate: 99\nbatch-size: 25\ntimeout: 2m\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(t, nil, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GCRate != 101 {
		t.Errorf("GCRate: env should win over file, got %v", cfg.GCRate)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("BatchSize: got %d, want 25 from file", cfg.BatchSize)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Timeout: got %s, want 2m", cfg.Timeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "non-numeric gc rate", env: map[string]string{"DEFAULT_GC_RATE": "lots"}},
		{name: "non-numeric billing day", env: map[string]string{"DEFAULT_BILLING_DAY": "twentieth"}},
		{name: "billing day too large", args: []string{"--billing-day=32"}},
		{name: "billing day zero", args: []string{"--billing-day=0"}},
		{name: "zero batch size", args: []string{"--batch-size=0"}},
		{name: "negative batch size", env: map[string]string{"BATCH_SIZE": "-3"}},
		{name: "bad mongo uri", args: []string{"--mongo=postgres://nope"}},
		{name: "empty mongo uri", env: map[string]string{"MONGO_URI": " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(t, tt.args, "")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := load(t, nil, filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

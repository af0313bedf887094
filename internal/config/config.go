// Package config resolves the migration settings from command-line flags,
// environment variables, an optional YAML file and built-in defaults, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// ErrInvalidConfig marks configuration errors. They are raised before any I/O.
var ErrInvalidConfig = errors.New("invalid configuration")

// Keys double as flag names and config file keys.
const (
	KeyMongo          = "mongo"
	KeyDryRun         = "dry-run"
	KeyGCRate         = "gc-rate"
	KeyBillingDay     = "billing-day"
	KeyBatchSize      = "batch-size"
	KeyOpeningBalance = "opening-balance"
	KeyLegacySQL      = "legacy-sql"
	KeyLogLevel       = "log-level"
	KeyLogFile        = "log-file"
	KeyTimeout        = "timeout"
)

const (
	DefaultMongoURI       = "mongodb://127.0.0.1:27017/tmdb"
	DefaultDatabase       = "tmdb"
	DefaultGCRate         = 95.0
	DefaultBillingDay     = 20
	DefaultBatchSize      = 500
	DefaultOpeningBalance = 0.0
	DefaultTimeout        = 60 * time.Second
)

var envBindings = map[string]string{
	KeyMongo:          "MONGO_URI",
	KeyDryRun:         "DRY_RUN",
	KeyGCRate:         "DEFAULT_GC_RATE",
	KeyBillingDay:     "DEFAULT_BILLING_DAY",
	KeyBatchSize:      "BATCH_SIZE",
	KeyOpeningBalance: "OPENING_BALANCE",
	KeyLegacySQL:      "LEGACY_SQL_DSN",
	KeyLogLevel:       "LOG_LEVEL",
	KeyLogFile:        "LOG_FILE",
	KeyTimeout:        "MIGRATION_TIMEOUT",
}

// Config holds the settings of one migration run. It is built once by Load
// and passed by value afterwards.
type Config struct {
	MongoURI       string
	Database       string
	DryRun         bool
	GCRate         float64
	BillingDay     int
	BatchSize      int
	OpeningBalance float64
	LegacySQL      string
	LogLevel       string
	LogFile        string
	Timeout        time.Duration
}

// RegisterFlags declares the migration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyMongo, DefaultMongoURI, "Target MongoDB connection string (env MONGO_URI)")
	fs.Bool(KeyDryRun, false, "Compute counts and mappings without writing anything")
	fs.Float64(KeyGCRate, DefaultGCRate, "Default GC billing rate when none can be resolved (env DEFAULT_GC_RATE)")
	fs.Int(KeyBillingDay, DefaultBillingDay, "Invoice billing day (1-31) for migrated projects (env DEFAULT_BILLING_DAY)")
	fs.Int(KeyBatchSize, DefaultBatchSize, "Crew log batch size")
	fs.Float64(KeyOpeningBalance, DefaultOpeningBalance, "Opening balance for migrated projects")
	fs.String(KeyLegacySQL, "", "Read legacy data from this SQL Server DSN instead of MongoDB")
	fs.String(KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	fs.String(KeyLogFile, "", "Also write logs to this rotated file")
	fs.Duration(KeyTimeout, DefaultTimeout, "Per-operation database timeout")
}

// NewViper returns a viper instance with defaults and environment bindings
// installed, and fs bound as the highest-precedence source.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyMongo, DefaultMongoURI)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyGCRate, DefaultGCRate)
	v.SetDefault(KeyBillingDay, DefaultBillingDay)
	v.SetDefault(KeyBatchSize, DefaultBatchSize)
	v.SetDefault(KeyOpeningBalance, DefaultOpeningBalance)
	v.SetDefault(KeyLegacySQL, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTimeout, DefaultTimeout)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	return v, nil
}

// Load resolves a Config. configFile, when non-empty, names a YAML file whose
// keys match the flag names.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read config file %s: %v", ErrInvalidConfig, configFile, err)
		}
	}

	var cfg Config
	var problems []string
	fail := func(key string, err error) {
		problems = append(problems, fmt.Sprintf("%s: %v", key, err))
	}

	cfg.MongoURI = strings.TrimSpace(cast.ToString(v.Get(KeyMongo)))
	if cfg.MongoURI == "" {
		fail(KeyMongo, errors.New("connection string is required"))
	} else {
		cs, err := connstring.ParseAndValidate(cfg.MongoURI)
		if err != nil {
			fail(KeyMongo, err)
		} else {
			cfg.Database = cs.Database
		}
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	var err error
	if cfg.DryRun, err = cast.ToBoolE(v.Get(KeyDryRun)); err != nil {
		fail(KeyDryRun, err)
	}
	if cfg.GCRate, err = cast.ToFloat64E(v.Get(KeyGCRate)); err != nil {
		fail(KeyGCRate, err)
	}
	if cfg.BillingDay, err = cast.ToIntE(v.Get(KeyBillingDay)); err != nil {
		fail(KeyBillingDay, err)
	} else if cfg.BillingDay < 1 || cfg.BillingDay > 31 {
		fail(KeyBillingDay, fmt.Errorf("must be between 1 and 31, got %d", cfg.BillingDay))
	}
	if cfg.BatchSize, err = cast.ToIntE(v.Get(KeyBatchSize)); err != nil {
		fail(KeyBatchSize, err)
	} else if cfg.BatchSize <= 0 {
		fail(KeyBatchSize, fmt.Errorf("must be positive, got %d", cfg.BatchSize))
	}
	if cfg.OpeningBalance, err = cast.ToFloat64E(v.Get(KeyOpeningBalance)); err != nil {
		fail(KeyOpeningBalance, err)
	}
	if cfg.Timeout, err = cast.ToDurationE(v.Get(KeyTimeout)); err != nil {
		fail(KeyTimeout, err)
	} else if cfg.Timeout <= 0 {
		fail(KeyTimeout, fmt.Errorf("must be positive, got %s", cfg.Timeout))
	}

	cfg.LegacySQL = strings.TrimSpace(cast.ToString(v.Get(KeyLegacySQL)))
	cfg.LogLevel = cast.ToString(v.Get(KeyLogLevel))
	cfg.LogFile = cast.ToString(v.Get(KeyLogFile))

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return cfg, nil
}

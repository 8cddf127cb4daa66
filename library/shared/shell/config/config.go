package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	EnvPrefix      = "LIBRARY_"
	DefaultEnvFile = ".env"

	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	DriverPGXPool = "pgxpool"
	DriverSQLDB   = "sql"
	DriverSQLX    = "sqlx"
)

var (
	ErrUnknownEngine = errors.New("unknown engine")
	ErrUnknownDriver = errors.New("unknown postgres driver")
	ErrMissingDSN    = errors.New("postgres dsn must not be empty")
	ErrMissingPath   = errors.New("sqlite path must not be empty")
)

// Config is the runtime configuration.
type Config struct {
	Engine      string         `koanf:"engine"`
	AutoMigrate bool           `koanf:"auto_migrate"`
	Postgres    PostgresConfig `koanf:"postgres"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Retry       RetryConfig    `koanf:"retry"`
}

type PostgresConfig struct {
	Driver            string        `koanf:"driver"`
	DSN               string        `koanf:"dsn"`
	ReplicaDSN        string        `koanf:"replica_dsn"`
	Isolation         string        `koanf:"isolation"`
	MaxConns          int32         `koanf:"max_conns"`
	MinConns          int32         `koanf:"min_conns"`
	MaxConnLifetime   time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `koanf:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `koanf:"health_check_period"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay"`
}

// Default returns the built-in configuration: an in-memory engine with migrations enabled.
func Default() Config {
	return Config{
		Engine:      EngineMemory,
		AutoMigrate: true,
		Postgres: PostgresConfig{
			Driver:            DriverPGXPool,
			DSN:               PostgresTestDSN,
			Isolation:         "read_committed",
			MaxConns:          8,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   time.Minute * 5,
			HealthCheckPeriod: time.Minute,
			ConnectTimeout:    time.Second * 5,
		},
		SQLite: SQLiteConfig{
			Path: "library.db",
		},
		Retry: RetryConfig{
			MaxAttempts: 4,
			BaseDelay:   10 * time.Millisecond,
		},
	}
}

// Load builds a Config from the defaults, the optional envFile, and LIBRARY_* environment variables.
// An empty envFile means DefaultEnvFile. A missing env file is not an error.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file %q: %w", envFile, err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// transformEnvKey maps LIBRARY_POSTGRES_MAX_CONNS to postgres.max_conns.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	for _, section := range []string{"postgres", "sqlite", "retry"} {
		if rest, found := strings.CutPrefix(key, section+"_"); found {
			return section + "." + rest, value
		}
	}

	return key, value
}

// Validate checks the engine selection and the settings it depends on.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineMemory:
		return nil
	case EngineSQLite:
		if c.SQLite.Path == "" {
			return ErrMissingPath
		}
		return nil
	case EnginePostgres:
		if c.Postgres.DSN == "" {
			return ErrMissingDSN
		}
		switch c.Postgres.Driver {
		case DriverPGXPool, DriverSQLDB, DriverSQLX:
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Postgres.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
}

// RetryOptions converts the retry settings for shell.RetryWithExponentialBackoff.
func (c Config) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.Retry.MaxAttempts),
		shell.WithBaseDelay(c.Retry.BaseDelay),
	}
}

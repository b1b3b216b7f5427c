package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Config holds the full runtime configuration of the lending service,
// populated from environment variables (optionally via a .env file).
type Config struct {
	Env             string        `env:"ENV" envDefault:"dev"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LibrarianToken  string        `env:"LIBRARIAN_TOKEN" envDefault:""`
	MemberToken     string        `env:"MEMBER_TOKEN" envDefault:""`

	// ObservabilityEnabled turns on OpenTelemetry metrics, tracing and
	// trace-correlated logging, using the globally registered providers.
	ObservabilityEnabled bool `env:"OBSERVABILITY_ENABLED" envDefault:"false"`

	Postgres Postgres
}

// Postgres holds the connection settings for the books database.
type Postgres struct {
	Host              string        `env:"PG_HOST" envDefault:"localhost"`
	Port              int           `env:"PG_PORT" envDefault:"5432"`
	DBName            string        `env:"PG_DB_NAME" envDefault:"lending"`
	User              string        `env:"PG_USER" envDefault:"lending"`
	Password          string        `env:"PG_PASSWORD" envDefault:"lending"`
	SSLMode           string        `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns          int32         `env:"PG_MAX_CONNS" envDefault:"8"`
	MinConns          int32         `env:"PG_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	HealthCheckPeriod time.Duration `env:"PG_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	ConnectTimeout    time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"5s"`
}

// DSN builds the PostgreSQL connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// MustLoad reads the configuration from the environment, loading a .env file
// first when present. It terminates the process on invalid configuration.
func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

// PGXPoolConfig creates a pgxpool.Config from the Postgres settings.
func (p Postgres) PGXPoolConfig() (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(p.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	dbConfig.MaxConns = p.MaxConns
	dbConfig.MinConns = p.MinConns
	dbConfig.MaxConnLifetime = p.MaxConnLifetime
	dbConfig.MaxConnIdleTime = p.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = p.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = p.ConnectTimeout

	return dbConfig, nil
}

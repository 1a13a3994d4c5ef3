package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.App.ShutdownTimeout <= 0 {
		err = multierr.Append(err, errors.New("shutdown timeout must be positive"))
	}
	switch strings.ToLower(c.DB.Driver) {
	case DriverPostgres, DriverSQLite:
	default:
		err = multierr.Append(err, fmt.Errorf("unsupported db driver %q", c.DB.Driver))
	}
	if c.RateLimit.SignupWindow < 0 {
		err = multierr.Append(err, errors.New("signup rate limit window must not be negative"))
	}
	if c.RateLimit.SignupIPLimit < 0 || c.RateLimit.SignupEmailLimit < 0 {
		err = multierr.Append(err, errors.New("signup rate limits must not be negative"))
	}
	return err
}

type AppConfig struct {
	Env             string        `envconfig:"SHAREIT_APP_ENV" required:"true"`
	Port            string        `envconfig:"SHAREIT_APP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"SHAREIT_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"SHAREIT_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"SHAREIT_LOG_WARN_STACK" default:"false"`
	ReadTimeout     time.Duration `envconfig:"SHAREIT_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SHAREIT_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHAREIT_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"SHAREIT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHAREIT_DB_DSN"`
	Driver string `envconfig:"SHAREIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHAREIT_DB_HOST"`
	LegacyPort     int    `envconfig:"SHAREIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHAREIT_DB_USER"`
	LegacyPassword string `envconfig:"SHAREIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHAREIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHAREIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHAREIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHAREIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHAREIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHAREIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SHAREIT_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// RedisConfig is optional; with neither URL nor address set the API runs
// without rate limiting and idempotency replay.
type RedisConfig struct {
	URL          string        `envconfig:"SHAREIT_REDIS_URL"`
	Address      string        `envconfig:"SHAREIT_REDIS_ADDR"`
	Password     string        `envconfig:"SHAREIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHAREIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHAREIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHAREIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHAREIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHAREIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHAREIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	SignupWindow     time.Duration `envconfig:"SHAREIT_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupIPLimit    int           `envconfig:"SHAREIT_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
	SignupEmailLimit int           `envconfig:"SHAREIT_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHAREIT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

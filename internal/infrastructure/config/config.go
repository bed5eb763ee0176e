package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Outbox    OutboxConfig
	Scheduler SchedulerConfig
	Trust     TrustConfig
	Payout    PayoutConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings. The engine only verifies tokens; issuance
// lives elsewhere.
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// OutboxConfig holds outbox processor configuration
type OutboxConfig struct {
	Enabled      bool
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
}

// SchedulerConfig holds the payout sweep schedule
type SchedulerConfig struct {
	Enabled        bool
	PayoutCronSpec string
}

// TrustConfig holds trust scoring and restriction tunables
type TrustConfig struct {
	NewSellerDays            int
	EstablishedSellerDays    int
	TrustedSellerDays        int
	HighDisputeRateThreshold float64
	RefundRateThreshold      float64
	MaxDailyListingsNew      int
	ExpectedShipmentDays     int
	BadgeCacheTTL            time.Duration
}

// PayoutConfig holds the payout delay tiers in days
type PayoutConfig struct {
	DelayNewSellerDays   int
	DelayEstablishedDays int
	DelayTrustedDays     int
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest): SOKO_-prefixed environment variables
// (e.g. SOKO_DATABASE_PASSWORD), config.toml, built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars cover it
	}

	v.SetEnvPrefix("SOKO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Outbox: OutboxConfig{
			Enabled:      v.GetBool("outbox.enabled"),
			PollInterval: v.GetDuration("outbox.poll_interval"),
			BatchSize:    v.GetInt("outbox.batch_size"),
			MaxRetries:   v.GetInt("outbox.max_retries"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("scheduler.enabled"),
			PayoutCronSpec: v.GetString("scheduler.payout_cron_spec"),
		},
		Trust: TrustConfig{
			NewSellerDays:            v.GetInt("trust.new_seller_days"),
			EstablishedSellerDays:    v.GetInt("trust.established_seller_days"),
			TrustedSellerDays:        v.GetInt("trust.trusted_seller_days"),
			HighDisputeRateThreshold: v.GetFloat64("trust.high_dispute_rate_threshold"),
			RefundRateThreshold:      v.GetFloat64("trust.refund_rate_threshold"),
			MaxDailyListingsNew:      v.GetInt("trust.max_daily_listings_new_seller"),
			ExpectedShipmentDays:     v.GetInt("trust.expected_shipment_days"),
			BadgeCacheTTL:            v.GetDuration("trust.badge_cache_ttl"),
		},
		Payout: PayoutConfig{
			DelayNewSellerDays:   v.GetInt("payout.delay_new_seller_days"),
			DelayEstablishedDays: v.GetInt("payout.delay_established_days"),
			DelayTrustedDays:     v.GetInt("payout.delay_trusted_days"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "soko-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "soko"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "soko-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 5 * time.Second
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.MaxRetries == 0 {
		cfg.Outbox.MaxRetries = 5
	}
	if cfg.Scheduler.PayoutCronSpec == "" {
		// Monday 06:00
		cfg.Scheduler.PayoutCronSpec = "0 6 * * 1"
	}
	if cfg.Trust.NewSellerDays == 0 {
		cfg.Trust.NewSellerDays = 7
	}
	if cfg.Trust.EstablishedSellerDays == 0 {
		cfg.Trust.EstablishedSellerDays = 30
	}
	if cfg.Trust.TrustedSellerDays == 0 {
		cfg.Trust.TrustedSellerDays = 90
	}
	if cfg.Trust.HighDisputeRateThreshold == 0 {
		cfg.Trust.HighDisputeRateThreshold = 0.10
	}
	if cfg.Trust.RefundRateThreshold == 0 {
		cfg.Trust.RefundRateThreshold = 0.10
	}
	if cfg.Trust.MaxDailyListingsNew == 0 {
		cfg.Trust.MaxDailyListingsNew = 5
	}
	if cfg.Trust.ExpectedShipmentDays == 0 {
		cfg.Trust.ExpectedShipmentDays = 7
	}
	if cfg.Trust.BadgeCacheTTL == 0 {
		cfg.Trust.BadgeCacheTTL = 5 * time.Minute
	}
	if cfg.Payout.DelayNewSellerDays == 0 {
		cfg.Payout.DelayNewSellerDays = 14
	}
	if cfg.Payout.DelayEstablishedDays == 0 {
		cfg.Payout.DelayEstablishedDays = 7
	}
	if cfg.Payout.DelayTrustedDays == 0 {
		cfg.Payout.DelayTrustedDays = 3
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Trust.HighDisputeRateThreshold <= 0 || c.Trust.HighDisputeRateThreshold >= 1 {
		return fmt.Errorf("trust.high_dispute_rate_threshold must be in (0,1)")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for Redis
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageTypePostgres = "postgres"
	StorageTypeMemory   = "memory"
)

type AppConfig struct {
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	Storage  string `yaml:"storage"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	LowStockTopic string   `yaml:"low_stock_topic"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type AlertConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	Threshold int           `yaml:"threshold"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Alert    AlertConfig    `yaml:"alert"`
}

// NewConfig reads .env (if present), then the YAML file named by CONFIG_PATH
// (if set), then applies environment overrides and defaults.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "storetrack"
	cfg.App.Port = "8080"
	cfg.App.Env = "production"
	cfg.App.LogLevel = "info"
	cfg.App.Storage = StorageTypePostgres

	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute
	cfg.Postgres.MigrationsPath = "migrations"

	cfg.Redis.IdempotencyTTL = 10 * time.Minute

	cfg.Kafka.LowStockTopic = "inventory.low-stock"

	cfg.Auth.TokenTTL = time.Hour

	cfg.Alert.Enabled = true
	cfg.Alert.Interval = 30 * time.Second
	cfg.Alert.Threshold = 10

	return cfg
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("config: invalid config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.App.Name, "APP_NAME")
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")
	setString(&cfg.App.Storage, "APP_STORAGE")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")
	setString(&cfg.Postgres.MigrationsPath, "DB_MIGRATIONS_PATH")

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("config: invalid DB_MAX_CONNS %q: %w", v, err)
		}
		cfg.Postgres.MaxConns = int32(n)
	}
	if v := os.Getenv("DB_MIN_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("config: invalid DB_MIN_CONNS %q: %w", v, err)
		}
		cfg.Postgres.MinConns = int32(n)
	}
	if err := setDuration(&cfg.Postgres.MaxConnLifetime, "DB_MAX_CONN_LIFETIME"); err != nil {
		return err
	}

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = n
	}
	if err := setDuration(&cfg.Redis.IdempotencyTTL, "IDEMPOTENCY_TTL"); err != nil {
		return err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.LowStockTopic, "KAFKA_LOW_STOCK_TOPIC")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	if err := setDuration(&cfg.Auth.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}

	if v := os.Getenv("ALERT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid ALERT_ENABLED %q: %w", v, err)
		}
		cfg.Alert.Enabled = b
	}
	if err := setDuration(&cfg.Alert.Interval, "ALERT_INTERVAL"); err != nil {
		return err
	}
	if v := os.Getenv("ALERT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid ALERT_THRESHOLD %q: %w", v, err)
		}
		cfg.Alert.Threshold = n
	}

	return nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch c.App.Storage {
	case StorageTypePostgres:
		required := map[string]string{
			"DB_HOST":     c.Postgres.Host,
			"DB_PORT":     c.Postgres.Port,
			"DB_USER":     c.Postgres.User,
			"DB_PASSWORD": c.Postgres.Password,
			"DB_NAME":     c.Postgres.DBName,
		}
		for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
			if required[key] == "" {
				return fmt.Errorf("config: %s is required", key)
			}
		}
		if c.Postgres.MinConns > c.Postgres.MaxConns {
			return fmt.Errorf("config: DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("config: unknown APP_STORAGE %q", c.App.Storage)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.Alert.Enabled && c.Alert.Interval <= 0 {
		return errors.New("config: ALERT_INTERVAL must be positive")
	}
	if c.Alert.Threshold < 0 || c.Alert.Threshold > math.MaxInt32 {
		return fmt.Errorf("config: ALERT_THRESHOLD must be between 0 and %d", math.MaxInt32)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

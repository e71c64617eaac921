package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"

	DefaultConfigFile = "todo.toml"
)

type Config struct {
	AppHost                string `toml:"app_host"`
	AppPort                string `toml:"app_port"`
	StorageDriver          string `toml:"storage_driver"`
	DatabaseDSN            string `toml:"database_dsn"`
	RedisHost              string `toml:"redis_host"`
	RedisPort              string `toml:"redis_port"`
	StorageKey             string `toml:"storage_key"`
	RateLimit              int    `toml:"rate_limit_per_minute"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
	LogLevel               string `toml:"log_level"`
	LogFormat              string `toml:"log_format"`
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func Defaults() Config {
	return Config{
		AppHost:                "127.0.0.1",
		AppPort:                "8080",
		StorageDriver:          DriverSQLite,
		DatabaseDSN:            "tasks.db",
		RedisHost:              "127.0.0.1",
		RedisPort:              "6379",
		StorageKey:             "tasks",
		RateLimit:              60,
		ShutdownTimeoutSeconds: 20,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load builds the config from defaults, then the TOML file at path (skipped
// when path is empty and todo.toml does not exist), then the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			file = DefaultConfigFile
		}
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	if err := loadFromEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", cfg.StorageDriver)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.StorageKey = getEnv("STORAGE_KEY", cfg.StorageKey)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.RateLimit, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit); err != nil {
		return err
	}
	if cfg.ShutdownTimeoutSeconds, err = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownTimeoutSeconds); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.AppHost == "" || c.AppPort == "" {
		errs = append(errs, errors.New("APP_HOST and APP_PORT must not be empty"))
	}
	switch c.StorageDriver {
	case DriverSQLite:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
		}
	case DriverRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			errs = append(errs, errors.New("REDIS_HOST and REDIS_PORT must not be empty"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be one of sqlite, redis, memory (got %q)", c.StorageDriver))
	}
	if c.StorageKey == "" {
		errs = append(errs, errors.New("STORAGE_KEY must not be empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

package cmd

import (
	"errors"
	"fmt"
	"net"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "todo-manager.com/todo-manager/internal/configs"
	apperrors "todo-manager.com/todo-manager/internal/errors"
	repository "todo-manager.com/todo-manager/internal/repositories"
	"todo-manager.com/todo-manager/internal/services"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *services.TaskStore
	close  func()
}

func loadApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(&cfg, cmd, opts); err != nil {
		return nil, err
	}

	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}

	kv, closeFn, err := openKeyValueStore(cfg)
	if err != nil {
		return nil, err
	}

	store := services.NewTaskStore(repository.NewTaskRepository(kv, cfg.StorageKey), logger)
	if err := store.Initialize(cmd.Context()); err != nil {
		if !errors.Is(err, apperrors.ErrPersistenceFailed) {
			closeFn()
			return nil, err
		}
		logger.Warn("default tasks were not saved", "err", err)
	}

	return &app{cfg: cfg, logger: logger, store: store, close: closeFn}, nil
}

func applyFlags(cfg *config.Config, cmd *cobra.Command, opts *rootOptions) error {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.StorageDriver = opts.storageDriver
	}
	if flags.Changed("dsn") {
		cfg.DatabaseDSN = opts.databaseDSN
	}
	if flags.Changed("redis-addr") {
		host, port, err := net.SplitHostPort(opts.redisAddr)
		if err != nil {
			return fmt.Errorf("invalid --redis-addr: %w", err)
		}
		cfg.RedisHost, cfg.RedisPort = host, port
	}
	if flags.Changed("key") {
		cfg.StorageKey = opts.storageKey
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg.Validate()
}

func openKeyValueStore(cfg config.Config) (repository.KeyValueStore, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverRedis:
		client, err := config.NewRedisClient(cfg.RedisAddr())
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(client), client.Close, nil

	case config.DriverMemory:
		return repository.NewMemoryStore(), func() {}, nil

	default:
		db, err := config.NewDatabaseClient(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewSQLiteStore(db), closeFn, nil
	}
}

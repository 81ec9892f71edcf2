package repository

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/config"
	"guild-economy-api/pkg/logger"
)

// Open builds the guild repository selected by cfg.Type.
func Open(cfg config.StoreConfig, log logrus.FieldLogger) (GuildRepository, error) {
	entry := logger.Component(log, "Store")

	switch strings.ToLower(cfg.Type) {
	case "postgres", "postgresql":
		repo, err := NewPostgresGuildRepository(cfg.PostgresDSN(), cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		entry.Info("PostgreSQL guild repository initialized")
		return repo, nil
	case "mysql":
		repo, err := NewMySQLGuildRepository(cfg.MySQLDSN(), cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
		}
		entry.Info("MySQL guild repository initialized")
		return repo, nil
	case "redis":
		repo, err := NewRedisGuildRepository(RedisConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.Name,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		entry.Infof("Redis guild repository initialized (%s)", cfg.RedisAddress())
		return repo, nil
	case "memory":
		entry.Warn("Using in-memory guild repository; data is lost on exit")
		return NewMemoryGuildRepository(cfg.Name), nil
	case "", "sqlite":
		repo, err := NewSQLiteGuildRepository(cfg.Path, cfg.Name, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		entry.Infof("SQLite guild repository initialized (%s)", cfg.Path)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}

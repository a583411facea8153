package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const redisKeyPrefix = "storefront"

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			slog.Debug("env file not loaded", "path", opts.EnvFile, "error", err)
		}
	}
	return config.FromEnv()
}

// openStore builds the base key-value store for cfg.StoreDriver. The
// returned close func releases the backend connection.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := config.InitDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return &storage.GormStore{DB: db}, sqlDB.Close, nil
	case config.DriverRedis:
		rs, err := storage.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisKeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	case config.DriverMemory:
		return storage.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}

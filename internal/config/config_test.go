package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/storage"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ORIGIN_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CHECKOUT_DELAY", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("ORIGIN_IDLE_TTL", "")
	t.Setenv("MAX_ORIGINS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, []byte("s3cret"), cfg.OriginSecret)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.OriginIdleTTL)
	assert.Equal(t, 10000, cfg.MaxOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ORIGIN_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHECKOUT_DELAY", "150ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ORIGIN_IDLE_TTL", "5m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 150*time.Millisecond, cfg.CheckoutDelay)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 5*time.Minute, cfg.OriginIdleTTL)
}

func TestFromEnv_Errors(t *testing.T) {
	t.Setenv("ORIGIN_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("ORIGIN_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = FromEnv()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "floppy")
	_, err = FromEnv()
	require.Error(t, err)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "maybe")
	assert.True(t, EnvBoolDefault("X_BOOL", true))
	assert.Equal(t, 3, EnvIntDefault("X_INT", 3))
	assert.Equal(t, time.Second, EnvDurationDefault("X_DUR", time.Second))
	assert.Equal(t, "d", EnvDefault("X_MISSING_KEY", "d"))
}

func TestInitDB_SQLite(t *testing.T) {
	cfg := &Config{StoreDriver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "store.db")}

	db, err := InitDB(context.Background(), cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := &storage.GormStore{DB: db}
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, err = InitDB(context.Background(), &Config{StoreDriver: DriverMemory})
	require.Error(t, err)
}

func TestInitDB_PostgresViaPQ(t *testing.T) {
	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL is required for tests")
	}
	cfg := &Config{StoreDriver: DriverPostgres, DatabaseURL: dsn}

	db, err := InitDB(context.Background(), cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, "*pq.Driver", fmt.Sprintf("%T", sqlDB.Driver()))
	require.NoError(t, (&storage.GormStore{DB: db}).Ping(context.Background()))
}

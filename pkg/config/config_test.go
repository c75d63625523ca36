package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-core/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.SequenceBackendPostgres, cfg.Sequence.Backend)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, "WMS_EVENTS", cfg.NATS.Stream)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("SEQUENCE_BACKEND", "etcd")

	cfg, err := config.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SEQUENCE_BACKEND", "Redis")
	t.Setenv("DB_QUERY_TIMEOUT_MS", "1500")
	t.Setenv("REDIS_ADDRESS", "cache:6380")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.SequenceBackendRedis, cfg.Sequence.Backend)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.QueryTimeout)
	assert.Equal(t, "cache:6380", cfg.Redis.Address)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestDBConfig_DSNEscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "wms", Password: "p@ss/word", DBName: "wms", SSLMode: "disable"}
	assert.Equal(t, "postgres://wms:p%40ss%2Fword@db:5432/wms?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.ConnectionString())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"NEWSGRAPH_CONFIG", "PORT", "LOG_LEVEL", "WARM_CRON",
		"ARANGO_URL", "ARANGO_USER", "ARANGO_PASSWORD", "ARANGO_DATABASE",
		"ARANGO_NEWS_GRAPH", "ARANGO_VIDEO_GRAPH", "ARANGO_ENTITY_GRAPH",
		"REDIS_ADDR", "REDIS_PASS", "REDIS_DB", "CACHE_TTL_SECONDS",
		"S3_BUCKET", "S3_REGION", "S3_PROFILE", "S3_PREFIX", "S3_USE_PATH_STYLE",
		"KAFKA_BOOTSTRAP_SERVERS", "KAFKA_TOPIC", "KAFKA_GROUP_ID",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultEndpoint, cfg.Arango.Endpoint)
	assert.Equal(t, DefaultDatabase, cfg.Arango.Database)
	assert.Equal(t, DefaultNewsGraph, cfg.Arango.NewsGraph)
	assert.Equal(t, DefaultVideoGraph, cfg.Arango.VideoGraph)
	assert.Equal(t, DefaultEntityGraph, cfg.Arango.EntityGraph)
	assert.Equal(t, DefaultCacheTTL, cfg.Redis.TTL)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredentials)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARANGO_URL", "http://arango:8529")
	t.Setenv("ARANGO_USER", "reader")
	t.Setenv("ARANGO_PASSWORD", "secret")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("S3_PREFIX", "/exports/")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "k1:9092, k2:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://arango:8529", cfg.Arango.Endpoint)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "exports/", cfg.S3.Prefix)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "newsgraph.yaml")
	body := []byte(`
port: "9090"
arango:
  username: yaml-user
  password: yaml-pass
  news_graph: otherGraph
redis:
  addr: redis:6379
  ttl: 5m
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("ARANGO_USER", "env-user")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "env-user", cfg.Arango.Username)
	assert.Equal(t, "yaml-pass", cfg.Arango.Password)
	assert.Equal(t, "otherGraph", cfg.Arango.NewsGraph)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

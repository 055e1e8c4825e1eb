package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials is returned when the graph database credentials are not configured.
var ErrMissingCredentials = errors.New("ARANGO_USER and ARANGO_PASSWORD must be set")

// ArangoConfig holds graph database connection settings.
type ArangoConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	NewsGraph   string `yaml:"news_graph"`
	VideoGraph  string `yaml:"video_graph"`
	EntityGraph string `yaml:"entity_graph"`
}

// RedisConfig configures the result cache and the warm-key set.
// An empty Addr disables both.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// S3Config selects where related-article snapshots are exported.
// An empty Bucket disables exports.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// KafkaConfig configures the article-published consumer.
// No brokers means the consumer is not started.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Config is the full process configuration.
type Config struct {
	Port     string       `yaml:"port"`
	LogLevel string       `yaml:"log_level"`
	WarmCron string       `yaml:"warm_cron"`
	Arango   ArangoConfig `yaml:"arango"`
	Redis    RedisConfig  `yaml:"redis"`
	S3       S3Config     `yaml:"s3"`
	Kafka    KafkaConfig  `yaml:"kafka"`
}

// Load builds the configuration from, in order: .env (optional), the YAML file at
// path or NEWSGRAPH_CONFIG (optional), then environment variables.
func Load(path string) (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		path = os.Getenv("NEWSGRAPH_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// Validate reports configuration that would make every query fail.
func (c *Config) Validate() error {
	if c.Arango.Username == "" || c.Arango.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.WarmCron, "WARM_CRON")

	setString(&cfg.Arango.Endpoint, "ARANGO_URL")
	setString(&cfg.Arango.Username, "ARANGO_USER")
	setString(&cfg.Arango.Password, "ARANGO_PASSWORD")
	setString(&cfg.Arango.Database, "ARANGO_DATABASE")
	setString(&cfg.Arango.NewsGraph, "ARANGO_NEWS_GRAPH")
	setString(&cfg.Arango.VideoGraph, "ARANGO_VIDEO_GRAPH")
	setString(&cfg.Arango.EntityGraph, "ARANGO_ENTITY_GRAPH")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASS")
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		if db, err := strconv.Atoi(v); err == nil && db >= 0 {
			cfg.Redis.DB = db
		}
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL_SECONDS")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Redis.TTL = time.Duration(secs) * time.Second
		}
	}

	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Profile, "S3_PROFILE")
	setString(&cfg.S3.Prefix, "S3_PREFIX")
	if v := strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")); v != "" {
		cfg.S3.UsePathStyle = strings.EqualFold(v, "true")
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.WarmCron == "" {
		cfg.WarmCron = DefaultWarmCron
	}
	if cfg.Arango.Endpoint == "" {
		cfg.Arango.Endpoint = DefaultEndpoint
	}
	if cfg.Arango.Database == "" {
		cfg.Arango.Database = DefaultDatabase
	}
	if cfg.Arango.NewsGraph == "" {
		cfg.Arango.NewsGraph = DefaultNewsGraph
	}
	if cfg.Arango.VideoGraph == "" {
		cfg.Arango.VideoGraph = DefaultVideoGraph
	}
	if cfg.Arango.EntityGraph == "" {
		cfg.Arango.EntityGraph = DefaultEntityGraph
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = DefaultCacheTTL
	}
	if cfg.S3.Prefix != "" {
		cfg.S3.Prefix = strings.Trim(cfg.S3.Prefix, "/") + "/"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
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

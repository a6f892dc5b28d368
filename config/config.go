package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName            string `env:"APP_NAME" env-default:"fern"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs         bool   `env:"PRETTY_LOGS" env-default:"false"`
	StartupMaxAttempts int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5" validate:"gte=1"`

	// Ingestion
	DataFolder        string `env:"DATA_FOLDER" env-default:"data/data_subset"`
	Reseed            string `env:"RESEED" env-default:"false"`
	UserVideoActLimit int    `env:"USER_VIDEO_ACT_LIMIT" env-default:"0" validate:"gte=0"`

	// Reasoning thresholds
	SkipRateThreshold       float64 `env:"SKIP_RATE_THRESHOLD" env-default:"0.01" validate:"gte=0,lte=1"`
	SkipPercentageThreshold float64 `env:"SKIP_PERCENTAGE_THRESHOLD" env-default:"0.01" validate:"gte=0,lte=1"`
	MinSkipped              int     `env:"MIN_SKIPPED" env-default:"3" validate:"gte=0"`
	ThresholdPercentage     float64 `env:"THRESHOLD_PERCENTAGE" env-default:"0.3" validate:"gte=0,lte=1"`
	ThresholdNumber         int     `env:"THRESHOLD_NUMBER" env-default:"1" validate:"gte=0"`

	// Similarity
	SimilarityTopK            int           `env:"SIMILARITY_TOP_K" env-default:"5" validate:"gte=1"`
	SimilarityProjectionsFile string        `env:"SIMILARITY_PROJECTIONS_FILE" env-default:""`
	SimilarityCacheTTL        time.Duration `env:"SIMILARITY_CACHE_TTL" env-default:"10m"`

	// Graph Database (Neo4j)
	Neo4jURI      string `env:"NEO4J_URI" env-default:"bolt://localhost:7687"`
	Neo4jUser     string `env:"NEO4J_USER" env-default:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD" env-default:"password"`
	Neo4jDatabase string `env:"NEO4J_DATABASE" env-default:""`

	// HTTP (fern serve)
	Port                          int `env:"PORT" env-default:"3004"`
	HttpServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"60"`
	HttpServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`

	// Tracing
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`

	// Kafka Producer (recommendation events)
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"fern-recommendations"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Redis (similarity cache)
	RedisEnabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// PostgreSQL (report archive)
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"fern"`
	DatabaseSSLMode             string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"5"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
}

var validate = validator.New()

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ShouldReseed reports whether RESEED holds a truthy value.
func (c *Config) ShouldReseed() bool {
	return IsTruthy(c.Reseed)
}

// IsTruthy accepts 1, true, yes and y in any case.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// ArchiveEnabled reports whether a Postgres host is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseHost != ""
}

// DatabaseDSN builds the lib/pq connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUserName, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode)
}

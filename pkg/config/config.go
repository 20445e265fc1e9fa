package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
	LiveKit   LiveKitConfig
	JWT       JWTConfig
	Worker    WorkerConfig
	Transcode TranscodeConfig
	Paths     PathsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"capture_stitcher"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string        `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"SPEAKER_CACHE_TTL" default:"1h"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string        `envconfig:"STORAGE_TYPE" default:"minio"` // "minio" or "s3"
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"meeting-captures"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"STORAGE_PUBLIC_URL"`
	PresignExpiry   time.Duration `envconfig:"STORAGE_PRESIGN_EXPIRY" default:"1h"`
}

// KafkaConfig holds the job queue configuration. The consumer is off without brokers.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"recording.tasks"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"capture-stitcher"`
}

// LiveKitConfig holds the webhook credentials. URL enables room metadata lookups.
type LiveKitConfig struct {
	URL       string `envconfig:"LIVEKIT_URL"`
	APIKey    string `envconfig:"LIVEKIT_API_KEY"`
	APISecret string `envconfig:"LIVEKIT_API_SECRET"`
}

// JWTConfig holds service token configuration
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"your-secret-change-in-production"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"capture-stitcher"`
	Expiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	Count      int           `envconfig:"WORKER_COUNT" default:"2"`
	QueueSize  int           `envconfig:"WORKER_QUEUE_SIZE" default:"100"`
	JobTimeout time.Duration `envconfig:"JOB_TIMEOUT" default:"30m"`
	MaxRetries int           `envconfig:"JOB_MAX_RETRIES" default:"3"`
}

// TranscodeConfig holds ffmpeg configuration
type TranscodeConfig struct {
	Enabled    bool   `envconfig:"TRANSCODE_ENABLED" default:"true"`
	FFmpegPath string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	Width      int    `envconfig:"TRANSCODE_WIDTH" default:"1280"`
	Height     int    `envconfig:"TRANSCODE_HEIGHT" default:"720"`
	FPS        string `envconfig:"TRANSCODE_FPS" default:"14.98"`
}

// PathsConfig holds local working directories and the object key layout
type PathsConfig struct {
	WorkDir       string `envconfig:"WORK_DIR" default:"/tmp/capture-stitcher"`
	CapturePrefix string `envconfig:"CAPTURE_PREFIX" default:"captures"`
	OutputPrefix  string `envconfig:"OUTPUT_PREFIX" default:"output"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv decodes the configuration from the process environment without validating it
func FromEnv() (*Config, error) {
	config := &Config{}

	// sections are decoded one by one so keys are not prefixed with the section name
	sections := map[string]interface{}{
		"server":    &config.Server,
		"database":  &config.Database,
		"redis":     &config.Redis,
		"storage":   &config.Storage,
		"kafka":     &config.Kafka,
		"livekit":   &config.LiveKit,
		"jwt":       &config.JWT,
		"worker":    &config.Worker,
		"transcode": &config.Transcode,
		"paths":     &config.Paths,
	}
	for name, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read %s configuration: %w", name, err)
		}
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.BucketName == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.Worker.QueueSize < 1 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must be at least 1")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if (c.LiveKit.APIKey == "") != (c.LiveKit.APISecret == "") {
		return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET must be set together")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

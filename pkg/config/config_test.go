package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Kafka.Topic != "recording.tasks" {
		t.Errorf("unexpected topic %s", cfg.Kafka.Topic)
	}
	if cfg.Transcode.FPS != "14.98" || cfg.Transcode.Width != 1280 || cfg.Transcode.Height != 720 {
		t.Errorf("unexpected transcode defaults %+v", cfg.Transcode)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JOB_TIMEOUT", "5m")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}

	if got := cfg.GetDatabaseDSN(); got != "host=db.internal port=6543 user=postgres password=postgres dbname=capture_stitcher sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
	if got := cfg.GetRedisAddr(); got != "cache:6379" {
		t.Errorf("unexpected redis addr %s", got)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Worker.JobTimeout != 5*time.Minute || cfg.Worker.Count != 4 {
		t.Errorf("unexpected worker config %+v", cfg.Worker)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("WORKER_COUNT", "0")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero workers")
	}

	cfg.Worker.Count = 1
	cfg.LiveKit.APIKey = "key"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for key without secret")
	}

	cfg.LiveKit.APISecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.Name != "order-projector" {
		t.Errorf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.Service.Port != 8081 {
		t.Errorf("Service.Port = %d, want 8081", cfg.Service.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Kafka.IngestTopic != "order-events" {
		t.Errorf("Kafka.IngestTopic = %q", cfg.Kafka.IngestTopic)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.Port != 8081 {
		t.Errorf("Service.Port = %d, want default 8081", cfg.Service.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
service:
  name: my-projector
  port: 9090
storage:
  backend: redis
  redis_addr: redis:6379
alerts:
  rules:
    - 'new_status == "CANCELLED"'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.Name != "my-projector" || cfg.Service.Port != 9090 {
		t.Errorf("service = %+v", cfg.Service)
	}
	if cfg.Storage.Backend != "redis" || cfg.Storage.RedisAddr != "redis:6379" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if len(cfg.Alerts.Rules) != 1 {
		t.Errorf("alerts = %+v", cfg.Alerts)
	}
	// 未出现的字段仍拿默认值
	if cfg.Kafka.GroupID != "order-projector-group" {
		t.Errorf("Kafka.GroupID = %q", cfg.Kafka.GroupID)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mysql")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/orders")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("INGEST_WORKERS", "8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "mysql" {
		t.Errorf("Storage.Backend = %q, want mysql", cfg.Storage.Backend)
	}
	if cfg.Storage.MysqlDSN != "user:pass@tcp(db:3306)/orders" {
		t.Errorf("Storage.MysqlDSN = %q", cfg.Storage.MysqlDSN)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Ingest.Workers != 8 {
		t.Errorf("Ingest.Workers = %d, want 8", cfg.Ingest.Workers)
	}
}

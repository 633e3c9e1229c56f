// internal/pkg/config/config.go

// Package config 从 YAML 文件加载服务配置，环境变量可覆盖关键项。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 order-projector 的全部配置。
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Storage StorageConfig `yaml:"storage"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Tracing TracingConfig `yaml:"tracing"`
	Nacos   NacosConfig   `yaml:"nacos"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type IngestConfig struct {
	// File 为空时不执行文件摄入
	File string `yaml:"file"`
	// Workers > 1 时并发摄入，按订单 ID 串行化
	Workers int `yaml:"workers"`
	// LockBackend: local / zookeeper。多实例部署共享存储时用 zookeeper
	LockBackend string `yaml:"lock_backend"`
	ZkServers   string `yaml:"zk_servers"`
}

type KafkaConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Brokers           []string `yaml:"brokers"`
	IngestTopic       string   `yaml:"ingest_topic"`
	NotificationTopic string   `yaml:"notification_topic"`
	GroupID           string   `yaml:"group_id"`
}

type StorageConfig struct {
	// Backend: memory / mysql / redis
	Backend   string `yaml:"backend"`
	MysqlDSN  string `yaml:"mysql_dsn"`
	RedisAddr string `yaml:"redis_addr"`
}

type AlertsConfig struct {
	// Rules 是 CEL 表达式，可用变量: order_id, old_status, new_status。
	// 为空时使用默认规则（进入 CANCELLED 或 SHIPPED 即告警）。
	Rules []string `yaml:"rules"`
}

type TracingConfig struct {
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
}

type NacosConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addrs     string `yaml:"addrs"`
	Namespace string `yaml:"namespace"`
	Group     string `yaml:"group"`
}

// Load 读取配置文件并套用默认值与环境变量覆盖。
// path 为空或文件不存在时，返回纯默认值配置。
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("open config file: %w", err)
			}
		} else {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "order-projector"
	}
	if c.Service.Port == 0 {
		c.Service.Port = 8081
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = 1
	}
	if c.Ingest.LockBackend == "" {
		c.Ingest.LockBackend = "local"
	}
	if c.Ingest.ZkServers == "" {
		c.Ingest.ZkServers = "localhost:2181"
	}
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.IngestTopic == "" {
		c.Kafka.IngestTopic = "order-events"
	}
	if c.Kafka.NotificationTopic == "" {
		c.Kafka.NotificationTopic = "order-notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "order-projector-group"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}
	if c.Tracing.JaegerEndpoint == "" {
		c.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	}
	if c.Nacos.Addrs == "" {
		c.Nacos.Addrs = "localhost:8848"
	}
	if c.Nacos.Group == "" {
		c.Nacos.Group = "DEFAULT_GROUP"
	}
}

func (c *Config) applyEnv() {
	c.Ingest.File = getEnv("INGEST_FILE", c.Ingest.File)
	if v, err := strconv.Atoi(getEnv("INGEST_WORKERS", "")); err == nil && v > 0 {
		c.Ingest.Workers = v
	}
	c.Ingest.LockBackend = getEnv("INGEST_LOCK_BACKEND", c.Ingest.LockBackend)
	c.Ingest.ZkServers = getEnv("ZK_SERVERS", c.Ingest.ZkServers)
	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.MysqlDSN = getEnv("MYSQL_DSN", c.Storage.MysqlDSN)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Tracing.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", c.Tracing.JaegerEndpoint)
	c.Nacos.Addrs = getEnv("NACOS_SERVER_ADDRS", c.Nacos.Addrs)
	c.Nacos.Namespace = getEnv("NACOS_NAMESPACE", c.Nacos.Namespace)
	c.Nacos.Group = getEnv("NACOS_GROUP", c.Nacos.Group)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

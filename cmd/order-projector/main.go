// cmd/order-projector/main.go
package main

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/segmentio/kafka-go"

	"orderflow/internal/pkg/bootstrap"
	"orderflow/internal/pkg/config"
	"orderflow/internal/pkg/lock"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/mq"
	"orderflow/internal/service/order/application"
	"orderflow/internal/service/order/domain"
	"orderflow/internal/service/order/infrastructure"
	"orderflow/internal/service/order/infrastructure/adapter"
	"orderflow/internal/service/order/interfaces"
	"orderflow/internal/service/order/interfaces/push"
	"orderflow/internal/service/order/port"
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	eventsFile := flag.String("events", "", "NDJSON events file to ingest at startup (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to load config")
	}
	if *eventsFile != "" {
		cfg.Ingest.File = *eventsFile
	}

	logger.Init(cfg.Service.Name)

	repo, cleanupRepo := buildRepository(cfg)

	var observers []port.Observer
	var closers []io.Closer

	observers = append(observers, adapter.NewLoggerObserver())
	observers = append(observers, adapter.NewMetricsObserver(nil))

	alerts, err := adapter.NewCelAlertObserver(cfg.Alerts.Rules)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to compile alert rules")
	}
	observers = append(observers, alerts)

	hub := push.NewHub()
	go hub.Run()
	observers = append(observers, hub)

	var ingestWriter *kafka.Writer
	var ingestor *interfaces.KafkaIngestor
	if cfg.Kafka.Enabled {
		notifyWriter := mq.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		notifier := adapter.NewKafkaNotificationObserver(notifyWriter)
		observers = append(observers, notifier)
		closers = append(closers, notifier)

		ingestWriter = mq.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.IngestTopic)
		closers = append(closers, ingestWriter)
	}

	processor := application.NewEventProcessor(repo, observers)

	if cfg.Kafka.Enabled {
		reader := mq.NewReader(cfg.Kafka.Brokers, cfg.Kafka.IngestTopic, cfg.Kafka.GroupID)
		ingestor = interfaces.NewKafkaIngestor(reader, processor)
	}

	handler := interfaces.NewOrderHandler(repo, ingestWriter)

	bootstrap.StartService(bootstrap.AppInfo{
		Config: cfg,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.HandleFunc("/ws", hub.ServeWS)
		},
		OnStart: func(ctx context.Context) {
			if cfg.Ingest.File != "" {
				fileIngestor := interfaces.NewFileIngestor(processor, cfg.Ingest.Workers, buildLocker(cfg, &closers))
				go func() {
					if err := fileIngestor.Ingest(ctx, cfg.Ingest.File); err != nil {
						logger.Ctx(ctx).Error().Err(err).Msg("file ingestion failed")
					}
				}()
			}
			if ingestor != nil {
				ingestor.Start(ctx)
			}
		},
		OnShutdown: func(ctx context.Context) {
			if ingestor != nil {
				ingestor.Stop()
			}
			hub.Close()
			for _, c := range closers {
				if err := c.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing resource")
				}
			}
			if cleanupRepo != nil {
				cleanupRepo()
			}
		},
	})
}

// buildLocker 按配置选择摄入用的订单锁。多实例共享存储时
// 用 ZooKeeper 跨进程串行化，单实例用本地分片锁。
func buildLocker(cfg *config.Config, closers *[]io.Closer) lock.Locker {
	if cfg.Ingest.LockBackend == "zookeeper" {
		locker, err := lock.NewZkLocker(strings.Split(cfg.Ingest.ZkServers, ","))
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to connect zookeeper for order locks")
		}
		*closers = append(*closers, locker)
		logger.Logger().Info().Msg("using zookeeper order locks")
		return locker
	}
	return lock.NewKeyed()
}

// buildRepository 按配置选择存储后端，返回仓储和清理函数。
func buildRepository(cfg *config.Config) (domain.OrderRepository, func()) {
	switch cfg.Storage.Backend {
	case "mysql":
		repo, err := infrastructure.NewGormRepository(cfg.Storage.MysqlDSN)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to initialize mysql repository")
		}
		logger.Logger().Info().Msg("using mysql order repository")
		return repo, nil
	case "redis":
		repo, err := infrastructure.NewRedisRepository(cfg.Storage.RedisAddr)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to initialize redis repository")
		}
		logger.Logger().Info().Msg("using redis order repository")
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Logger().Error().Err(err).Msg("error closing redis repository")
			}
		}
	default:
		logger.Logger().Info().Msg("using in-memory order repository")
		return infrastructure.NewMemoryRepository(), nil
	}
}

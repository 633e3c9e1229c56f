// internal/service/order/interfaces/kafka_ingestor.go
package interfaces

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/mq"
	"orderflow/internal/service/order/application"
	"orderflow/internal/service/order/codec"
)

// KafkaIngestor 是驱动适配器：监听事件 topic 并驱动引擎。
// 与文件摄入一样按记录隔离失败，坏消息打日志后提交 offset 跳过。
type KafkaIngestor struct {
	reader    *kafka.Reader
	processor *application.EventProcessor
	wg        sync.WaitGroup
	stopped   bool
}

// NewKafkaIngestor 创建 Kafka 摄入器。
func NewKafkaIngestor(reader *kafka.Reader, processor *application.EventProcessor) *KafkaIngestor {
	return &KafkaIngestor{reader: reader, processor: processor}
}

// Start 启动消费循环。这是一个长期运行的后台任务。
func (k *KafkaIngestor) Start(ctx context.Context) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		logger.Logger().Info().
			Str("topic", k.reader.Config().Topic).
			Msg("kafka ingestor started")
		for {
			if k.stopped {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，以便控制提交时机和退出逻辑
			msg, err := k.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger().Info().Msg("kafka ingestor shutting down")
					return
				}
				logger.Logger().Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(time.Second)
				continue
			}

			k.processMessage(ctx, msg)

			if err := k.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger().Error().Err(err).Msg("failed to commit messages")
			}
		}
	}()
}

// Stop 优雅地停止消费。
func (k *KafkaIngestor) Stop() {
	k.stopped = true
	k.reader.Close()
	k.wg.Wait()
	logger.Logger().Info().Msg("kafka ingestor stopped")
}

// processMessage 恢复追踪上下文、解码并应用一条消息。
func (k *KafkaIngestor) processMessage(parentCtx context.Context, msg kafka.Message) {
	ctx := mq.ExtractContext(parentCtx, msg)

	evt, err := codec.Decode(msg.Value)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to decode message, skipping")
		return
	}

	if _, err := k.processor.Process(ctx, evt); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("event_id", evt.Meta().EventID).
			Msg("failed to process message, skipping")
	}
}

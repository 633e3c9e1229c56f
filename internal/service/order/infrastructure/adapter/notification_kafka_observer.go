// internal/service/order/infrastructure/adapter/notification_kafka_observer.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/mq"
	"orderflow/internal/service/order/domain"
)

// StatusNotification 是发往通知 topic 的消息体。
type StatusNotification struct {
	OrderID   string `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	Message   string `json:"message"`
}

// KafkaNotificationObserver 把状态变化发布到 Kafka 通知 topic，
// 下游（短信、推送网关等）自行订阅消费。
type KafkaNotificationObserver struct {
	writer *kafka.Writer
}

// NewKafkaNotificationObserver 创建 Kafka 通知监听器。
func NewKafkaNotificationObserver(writer *kafka.Writer) *KafkaNotificationObserver {
	return &KafkaNotificationObserver{writer: writer}
}

// OnEventProcessed 对通知监听器是空操作，避免给下游造成噪音。
func (o *KafkaNotificationObserver) OnEventProcessed(context.Context, domain.Event, *domain.Order) {}

func (o *KafkaNotificationObserver) OnStatusChanged(ctx context.Context, orderID string, oldStatus, newStatus domain.Status) {
	notification := StatusNotification{
		OrderID:   orderID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		Message:   fmt.Sprintf("Order %s moved from %s to %s.", orderID, oldStatus, newStatus),
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal status notification")
		return
	}

	// 同一订单以 orderID 为 key，保证分区内有序
	if err := mq.ProduceMessage(ctx, o.writer, []byte(orderID), payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", orderID).
			Msg("failed to publish status notification")
	}
}

// Close 关闭底层的 Kafka writer。
func (o *KafkaNotificationObserver) Close() error {
	return o.writer.Close()
}

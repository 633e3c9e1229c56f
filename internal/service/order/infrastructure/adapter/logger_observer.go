// internal/service/order/infrastructure/adapter/logger_observer.go
package adapter

import (
	"context"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/service/order/domain"
)

// LoggerObserver 把每次事件处理和状态变化写成结构化日志。
type LoggerObserver struct{}

// NewLoggerObserver 创建日志监听器。
func NewLoggerObserver() *LoggerObserver {
	return &LoggerObserver{}
}

func (o *LoggerObserver) OnEventProcessed(ctx context.Context, evt domain.Event, order *domain.Order) {
	meta := evt.Meta()
	logger.Ctx(ctx).Info().
		Str("event_type", meta.EventType).
		Str("event_id", meta.EventID).
		Str("order_id", order.ID).
		Str("status", string(order.Status)).
		Msg("event processed")
}

func (o *LoggerObserver) OnStatusChanged(ctx context.Context, orderID string, oldStatus, newStatus domain.Status) {
	logger.Ctx(ctx).Info().
		Str("order_id", orderID).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(newStatus)).
		Msg("order status changed")
}

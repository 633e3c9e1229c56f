// internal/service/order/port/observer.go
package port

import (
	"context"

	"orderflow/internal/service/order/domain"
)

// Observer 是事件处理结果的监听器接口。
// 监听器集合在引擎构造时一次性注入，之后不可再注册；
// 回调按注册顺序同步执行，且不得回写仓储或重入引擎。
type Observer interface {
	// OnEventProcessed 在每个事件应用完成后触发，前提是该订单在处理后存在。
	// 重复创建、零额支付等未改变状态的事件同样会触发。
	OnEventProcessed(ctx context.Context, evt domain.Event, order *domain.Order)

	// OnStatusChanged 仅在订单状态实际发生变化时触发。
	OnStatusChanged(ctx context.Context, orderID string, oldStatus, newStatus domain.Status)
}

// internal/service/order/application/outcome.go
package application

import "orderflow/internal/service/order/domain"

// Disposition 描述一个事件被引擎处置的方式。
type Disposition string

const (
	DispositionCreated       Disposition = "created"        // 新订单已创建
	DispositionDuplicate     Disposition = "duplicate"      // 重复创建，幂等忽略
	DispositionApplied       Disposition = "applied"        // 事件已应用到既有订单
	DispositionInvalidAmount Disposition = "invalid_amount" // 零/负金额支付，仅记入历史
	DispositionUnknownOrder  Disposition = "unknown_order"  // 引用了不存在的订单
	DispositionSkipped       Disposition = "skipped"        // 兜底分支，正常情况下不可达
)

// Outcome 记录一次 Process 调用触及了哪个订单、状态是否变化。
type Outcome struct {
	OrderID     string
	Disposition Disposition
	OldStatus   domain.Status
	NewStatus   domain.Status
}

// StatusChanged 报告该事件是否引起了状态变化。
func (o Outcome) StatusChanged() bool {
	return o.OldStatus != o.NewStatus
}

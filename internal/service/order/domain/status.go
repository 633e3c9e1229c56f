// internal/service/order/domain/status.go
package domain

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending       Status = "PENDING"        // 订单已创建，等待支付
	StatusPartiallyPaid Status = "PARTIALLY_PAID" // 已收到部分货款
	StatusPaid          Status = "PAID"           // 已全额支付
	StatusShipped       Status = "SHIPPED"        // 已安排发货
	StatusCancelled     Status = "CANCELLED"      // 已取消 (用户主动或系统)
)

// 注意: SHIPPED/CANCELLED 刻意不作为终态，
// 已取消的订单仍可被后续事件转走，发货和取消都不检查先前状态。

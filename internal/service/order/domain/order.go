// internal/service/order/domain/order.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order 是订单聚合的根实体。
// ID 在创建时确定且不可变；Items 与 TotalAmount 在创建时拷贝自事件，
// 之后不再重算；History 只追加，从不重排或截断。
type Order struct {
	ID          string
	CustomerID  string
	Items       []OrderItem
	TotalAmount decimal.Decimal
	Status      Status
	History     []string
}

// NewOrder 用 OrderCreated 事件构造一个新订单，初始状态为 PENDING。
func NewOrder(evt *OrderCreated) *Order {
	items := make([]OrderItem, len(evt.Items))
	copy(items, evt.Items)

	return &Order{
		ID:          evt.OrderID,
		CustomerID:  evt.CustomerID,
		Items:       items,
		TotalAmount: evt.TotalAmount,
		Status:      StatusPending,
	}
}

// AppendHistory 按 "时间戳 - 事件类型 - 说明" 的格式追加一条审计记录。
// 事件类型使用信封中保留的原文写法。
func (o *Order) AppendHistory(meta Envelope, note string) {
	line := fmt.Sprintf("%s - %s - %s", meta.Timestamp.UTC().Format(time.RFC3339), meta.EventType, note)
	o.History = append(o.History, line)
}

// Clone 返回订单的深拷贝，供仓储在读写边界上做快照隔离。
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.History = make([]string, len(o.History))
	copy(cp.History, o.History)
	return &cp
}

// internal/service/order/domain/event.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// 四个事件变体的规范类型标签。解码器按这些标签做分发，
// 但信封中的 EventType 始终保留输入里的原文写法。
const (
	TypeOrderCreated      = "OrderCreated"
	TypePaymentReceived   = "PaymentReceived"
	TypeShippingScheduled = "ShippingScheduled"
	TypeOrderCancelled    = "OrderCancelled"
)

// Envelope 是所有事件变体共享的公共信封字段。
type Envelope struct {
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"eventType"` // 保留输入原文，供下游日志使用
}

// Meta 返回事件信封。
func (e Envelope) Meta() Envelope { return e }

func (Envelope) isOrderEvent() {}

// Event 是订单事件的封闭和类型。四个变体都内嵌 Envelope，
// 未导出的标记方法保证本包之外无法新增变体，
// 引擎的分发 switch 因此覆盖了全部可能输入。
type Event interface {
	Meta() Envelope
	AggregateID() string

	isOrderEvent()
}

// OrderCreated 表示一个新订单进入系统。
type OrderCreated struct {
	Envelope
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (e *OrderCreated) AggregateID() string { return e.OrderID }

// PaymentReceived 表示收到一笔针对订单的付款。
// AmountPaid 缺失时为零值 0，由引擎按无效金额处理，不视为错误。
type PaymentReceived struct {
	Envelope
	OrderID    string          `json:"orderId"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
}

func (e *PaymentReceived) AggregateID() string { return e.OrderID }

// ShippingScheduled 表示订单已排期发货。
type ShippingScheduled struct {
	Envelope
	OrderID      string `json:"orderId"`
	ShippingDate Date   `json:"shippingDate"`
}

func (e *ShippingScheduled) AggregateID() string { return e.OrderID }

// OrderCancelled 表示订单被取消，Reason 可为空。
type OrderCancelled struct {
	Envelope
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

func (e *OrderCancelled) AggregateID() string { return e.OrderID }

// OrderItem 是订单中的一个行项目。
type OrderItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

const dateLayout = "2006-01-02"

// Date 是不带时间部分的日历日期，JSON 形式为 "2006-01-02"。
type Date struct {
	time.Time
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a %q string, got %s", dateLayout, s)
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	d.Time = t
	return nil
}

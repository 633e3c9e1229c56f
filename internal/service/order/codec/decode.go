// internal/service/order/codec/decode.go

// Package codec 负责把原始 JSON 记录解码为领域事件。
// 它是引擎的协作方边界：引擎只消费这里产出的封闭和类型，
// 未知类型的记录在这一层就被拦截，永远不会进入分发。
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/service/order/domain"
)

// ErrMissingType 表示记录缺少 eventType 字段。
var ErrMissingType = errors.New("event record is missing eventType")

// UnknownTypeError 表示 eventType 不属于四个已知变体。
type UnknownTypeError struct {
	Tag string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown event type: %q", e.Tag)
}

// StructuralError 表示记录整体不是合法 JSON，
// 或字段形状与声明的变体不匹配。
type StructuralError struct {
	Tag string // 已读出的类型标签，整体解析失败时为空
	Err error
}

func (e *StructuralError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("malformed event record: %v", e.Err)
	}
	return fmt.Sprintf("event record does not match variant %q: %v", e.Tag, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Decode 把一条原始记录解码为事件。
// 类型标签按大小写不敏感匹配四个规范名，但信封中保留输入原文，
// 下游日志看到的是事件自报的写法。无法识别的标签返回 UnknownTypeError。
// 记录中多余的未知字段被忽略。
func Decode(raw []byte) (domain.Event, error) {
	var probe struct {
		EventType *string `json:"eventType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &StructuralError{Err: err}
	}
	if probe.EventType == nil || *probe.EventType == "" {
		return nil, ErrMissingType
	}
	tag := *probe.EventType

	var evt domain.Event
	switch {
	case strings.EqualFold(tag, domain.TypeOrderCreated):
		evt = &domain.OrderCreated{}
	case strings.EqualFold(tag, domain.TypePaymentReceived):
		evt = &domain.PaymentReceived{}
	case strings.EqualFold(tag, domain.TypeShippingScheduled):
		evt = &domain.ShippingScheduled{}
	case strings.EqualFold(tag, domain.TypeOrderCancelled):
		evt = &domain.OrderCancelled{}
	default:
		return nil, &UnknownTypeError{Tag: tag}
	}

	if err := json.Unmarshal(raw, evt); err != nil {
		return nil, &StructuralError{Tag: tag, Err: err}
	}

	// 回写读到的原文标签，覆盖任何规范化
	switch e := evt.(type) {
	case *domain.OrderCreated:
		e.EventType = tag
	case *domain.PaymentReceived:
		e.EventType = tag
	case *domain.ShippingScheduled:
		e.EventType = tag
	case *domain.OrderCancelled:
		e.EventType = tag
	}

	return evt, nil
}

// internal/service/order/application/processor.go
package application

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/service/order/domain"
	"orderflow/internal/service/order/port"
)

// EventProcessor 是状态流转引擎：把单个事件映射为对订单仓储的
// 一次幂等变更，并把结果同步广播给注册的监听器。
// 仓储与监听器集合在构造时注入，之后不再变化。
type EventProcessor struct {
	repo      domain.OrderRepository
	observers []port.Observer
	tracer    trace.Tracer
}

// NewEventProcessor 创建引擎实例。observers 会被拷贝，
// 构造之后外部对切片的修改不影响引擎。
func NewEventProcessor(repo domain.OrderRepository, observers []port.Observer) *EventProcessor {
	obs := make([]port.Observer, len(observers))
	copy(obs, observers)

	return &EventProcessor{
		repo:      repo,
		observers: obs,
		tracer:    otel.Tracer("order-projector"),
	}
}

// Process 把一个事件应用到订单仓储并触发监听器广播。
// 领域层面的异常（重复创建、未知订单、无效金额）被就地吸收进 Outcome；
// 只有仓储故障才以 error 返回，由调用方决定是否跳过该记录。
func (p *EventProcessor) Process(ctx context.Context, evt domain.Event) (Outcome, error) {
	meta := evt.Meta()
	ctx, span := p.tracer.Start(ctx, "processor.Process", trace.WithAttributes(
		attribute.String("event.id", meta.EventID),
		attribute.String("event.type", meta.EventType),
		attribute.String("order.id", evt.AggregateID()),
	))
	defer span.End()

	var (
		out Outcome
		err error
	)
	switch e := evt.(type) {
	case *domain.OrderCreated:
		out, err = p.applyOrderCreated(ctx, e)
	case *domain.PaymentReceived:
		out, err = p.applyPaymentReceived(ctx, e)
	case *domain.ShippingScheduled:
		out, err = p.applyShippingScheduled(ctx, e)
	case *domain.OrderCancelled:
		out, err = p.applyOrderCancelled(ctx, e)
	default:
		// 兜底分支：codec 的契约保证未知类型到不了这里
		logger.Ctx(ctx).Warn().
			Str("event_type", meta.EventType).
			Msg("event variant fell through dispatch, skipping")
		out = Outcome{Disposition: DispositionSkipped}
	}
	if err != nil {
		span.RecordError(err)
		return out, err
	}

	span.SetAttributes(attribute.String("event.disposition", string(out.Disposition)))
	p.notify(ctx, evt, out)
	return out, nil
}

// applyOrderCreated 处理订单创建。对同一 ID 的重复创建是有意的幂等：
// 不变更、不告警，只留一条 info 日志。
func (p *EventProcessor) applyOrderCreated(ctx context.Context, evt *domain.OrderCreated) (Outcome, error) {
	exists, err := p.repo.ExistsByID(ctx, evt.OrderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("check order %s existence: %w", evt.OrderID, err)
	}
	if exists {
		logger.Ctx(ctx).Info().
			Str("order_id", evt.OrderID).
			Msg("order already exists, ignoring duplicate creation")
		return Outcome{OrderID: evt.OrderID, Disposition: DispositionDuplicate}, nil
	}

	order := domain.NewOrder(evt)
	order.AppendHistory(evt.Meta(), "Order created")
	if err := p.repo.Save(ctx, order); err != nil {
		return Outcome{}, fmt.Errorf("save order %s: %w", evt.OrderID, err)
	}

	// 创建进入初始状态，不算一次状态变化，不触发 OnStatusChanged
	return Outcome{
		OrderID:     evt.OrderID,
		Disposition: DispositionCreated,
		OldStatus:   domain.StatusPending,
		NewStatus:   domain.StatusPending,
	}, nil
}

// applyPaymentReceived 按付款金额与订单总额的精确十进制比较决定状态：
// paid >= total 转为 PAID；0 < paid < total 转为 PARTIALLY_PAID；
// paid <= 0 不改状态，但事件仍记入历史。
func (p *EventProcessor) applyPaymentReceived(ctx context.Context, evt *domain.PaymentReceived) (Outcome, error) {
	order, err := p.repo.FindByID(ctx, evt.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return p.unknownOrder(ctx, evt.OrderID, evt.Meta()), nil
		}
		return Outcome{}, fmt.Errorf("find order %s: %w", evt.OrderID, err)
	}

	old := order.Status
	disposition := DispositionApplied
	paid := evt.AmountPaid
	total := order.TotalAmount

	switch {
	case paid.Cmp(total) >= 0:
		order.Status = domain.StatusPaid
		order.AppendHistory(evt.Meta(), "Payment received in full: "+paid.String())
	case paid.IsPositive():
		order.Status = domain.StatusPartiallyPaid
		order.AppendHistory(evt.Meta(), "Partial payment received: "+paid.String())
	default:
		disposition = DispositionInvalidAmount
		order.AppendHistory(evt.Meta(), "Payment event with zero/invalid amount")
		logger.Ctx(ctx).Info().
			Str("order_id", evt.OrderID).
			Str("amount", paid.String()).
			Msg("payment with zero/invalid amount, recorded without status change")
	}

	if err := p.repo.Save(ctx, order); err != nil {
		return Outcome{}, fmt.Errorf("save order %s: %w", evt.OrderID, err)
	}
	return Outcome{OrderID: evt.OrderID, Disposition: disposition, OldStatus: old, NewStatus: order.Status}, nil
}

// applyShippingScheduled 无条件转为 SHIPPED，不检查先前状态。
func (p *EventProcessor) applyShippingScheduled(ctx context.Context, evt *domain.ShippingScheduled) (Outcome, error) {
	order, err := p.repo.FindByID(ctx, evt.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return p.unknownOrder(ctx, evt.OrderID, evt.Meta()), nil
		}
		return Outcome{}, fmt.Errorf("find order %s: %w", evt.OrderID, err)
	}

	old := order.Status
	order.Status = domain.StatusShipped
	order.AppendHistory(evt.Meta(), "Shipping scheduled for "+evt.ShippingDate.String())
	if err := p.repo.Save(ctx, order); err != nil {
		return Outcome{}, fmt.Errorf("save order %s: %w", evt.OrderID, err)
	}
	return Outcome{OrderID: evt.OrderID, Disposition: DispositionApplied, OldStatus: old, NewStatus: order.Status}, nil
}

// applyOrderCancelled 无条件转为 CANCELLED，已发货订单同样放行。
func (p *EventProcessor) applyOrderCancelled(ctx context.Context, evt *domain.OrderCancelled) (Outcome, error) {
	order, err := p.repo.FindByID(ctx, evt.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return p.unknownOrder(ctx, evt.OrderID, evt.Meta()), nil
		}
		return Outcome{}, fmt.Errorf("find order %s: %w", evt.OrderID, err)
	}

	old := order.Status
	order.Status = domain.StatusCancelled
	order.AppendHistory(evt.Meta(), "Cancelled: "+evt.Reason)
	if err := p.repo.Save(ctx, order); err != nil {
		return Outcome{}, fmt.Errorf("save order %s: %w", evt.OrderID, err)
	}
	return Outcome{OrderID: evt.OrderID, Disposition: DispositionApplied, OldStatus: old, NewStatus: order.Status}, nil
}

func (p *EventProcessor) unknownOrder(ctx context.Context, orderID string, meta domain.Envelope) Outcome {
	logger.Ctx(ctx).Warn().
		Str("order_id", orderID).
		Str("event_type", meta.EventType).
		Msg("event references unknown order, ignoring")
	return Outcome{OrderID: orderID, Disposition: DispositionUnknownOrder}
}

// notify 在事件应用后广播监听器。只要订单在处理后存在，
// OnEventProcessed 一定触发；OnStatusChanged 仅在状态实际变化时触发。
// 单个监听器 panic 被就地吸收，不影响其余监听器。
func (p *EventProcessor) notify(ctx context.Context, evt domain.Event, out Outcome) {
	if out.OrderID == "" {
		return
	}
	order, err := p.repo.FindByID(ctx, out.OrderID)
	if err != nil {
		// 未知订单：无变更也无广播
		if !errors.Is(err, domain.ErrOrderNotFound) {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", out.OrderID).
				Msg("failed to load order for observer fan-out")
		}
		return
	}

	for _, ob := range p.observers {
		p.invoke(ctx, func() { ob.OnEventProcessed(ctx, evt, order) })
	}
	if out.StatusChanged() {
		for _, ob := range p.observers {
			p.invoke(ctx, func() { ob.OnStatusChanged(ctx, out.OrderID, out.OldStatus, out.NewStatus) })
		}
	}
}

func (p *EventProcessor) invoke(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Ctx(ctx).Error().
				Interface("panic", r).
				Msg("observer panicked, continuing with remaining observers")
		}
	}()
	fn()
}

// internal/service/order/infrastructure/adapter/alert_cel_observer.go
package adapter

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/service/order/domain"
)

// DefaultAlertRules 是未配置规则时的默认告警条件：
// 订单进入 CANCELLED 或 SHIPPED 即告警。
var DefaultAlertRules = []string{
	`new_status == "CANCELLED"`,
	`new_status == "SHIPPED"`,
}

// CelAlertObserver 用 CEL 表达式对状态变化做告警判定。
// 规则在构造时编译，可用变量: order_id, old_status, new_status。
type CelAlertObserver struct {
	rules    []string
	programs []cel.Program
}

// NewCelAlertObserver 编译规则并创建告警监听器。
// rules 为空时使用 DefaultAlertRules。
func NewCelAlertObserver(rules []string) (*CelAlertObserver, error) {
	if len(rules) == 0 {
		rules = DefaultAlertRules
	}

	env, err := cel.NewEnv(
		cel.Variable("order_id", cel.StringType),
		cel.Variable("old_status", cel.StringType),
		cel.Variable("new_status", cel.StringType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel environment")
	}

	programs := make([]cel.Program, 0, len(rules))
	for _, rule := range rules {
		ast, issues := env.Compile(rule)
		if issues != nil && issues.Err() != nil {
			return nil, errors.Wrapf(issues.Err(), "compile alert rule %q", rule)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, errors.Wrapf(err, "build alert program %q", rule)
		}
		programs = append(programs, prg)
	}

	return &CelAlertObserver{rules: rules, programs: programs}, nil
}

// OnEventProcessed 对告警监听器是空操作，它只关心状态变化。
func (o *CelAlertObserver) OnEventProcessed(context.Context, domain.Event, *domain.Order) {}

func (o *CelAlertObserver) OnStatusChanged(ctx context.Context, orderID string, oldStatus, newStatus domain.Status) {
	vars := map[string]any{
		"order_id":   orderID,
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}
	for i, prg := range o.programs {
		val, _, err := prg.Eval(vars)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("rule", o.rules[i]).
				Msg("alert rule evaluation failed")
			continue
		}
		if matched, ok := val.Value().(bool); ok && matched {
			logger.Ctx(ctx).Warn().
				Str("order_id", orderID).
				Str("new_status", string(newStatus)).
				Str("rule", o.rules[i]).
				Msg("ALERT: order status matched alert rule")
		}
	}
}

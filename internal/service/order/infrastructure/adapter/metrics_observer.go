// internal/service/order/infrastructure/adapter/metrics_observer.go
package adapter

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"orderflow/internal/service/order/domain"
)

// MetricsObserver 把事件处理量和状态流转暴露为 Prometheus 指标，
// 经由 /metrics 端点抓取。
type MetricsObserver struct {
	eventsProcessed *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
}

// NewMetricsObserver 注册指标并创建监听器。
// registerer 传 nil 时使用默认注册表。
func NewMetricsObserver(registerer prometheus.Registerer) *MetricsObserver {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &MetricsObserver{
		eventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orderflow_events_processed_total",
			Help: "Number of order events applied, by self-reported event type.",
		}, []string{"event_type"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orderflow_status_transitions_total",
			Help: "Number of order status transitions, by old and new status.",
		}, []string{"old_status", "new_status"}),
	}
}

func (o *MetricsObserver) OnEventProcessed(_ context.Context, evt domain.Event, _ *domain.Order) {
	o.eventsProcessed.WithLabelValues(evt.Meta().EventType).Inc()
}

func (o *MetricsObserver) OnStatusChanged(_ context.Context, _ string, oldStatus, newStatus domain.Status) {
	o.statusChanges.WithLabelValues(string(oldStatus), string(newStatus)).Inc()
}

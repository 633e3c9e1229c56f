// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/mq"
	"orderflow/internal/service/order/codec"
	"orderflow/internal/service/order/domain"
)

const serviceName = "order-projector"

// OrderHandler 暴露订单投影的查询接口和事件提交入口。
type OrderHandler struct {
	repo   domain.OrderRepository
	writer *kafka.Writer // 可为 nil，此时 /events 返回 503
}

// NewOrderHandler 创建 HTTP 处理器。writer 用于把提交的事件
// 转发到摄入 topic，未接 Kafka 时传 nil。
func NewOrderHandler(repo domain.OrderRepository, writer *kafka.Writer) *OrderHandler {
	return &OrderHandler{repo: repo, writer: writer}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/orders", h.listOrdersHandler)
	mux.HandleFunc("/orders/", h.getOrderHandler)
	mux.HandleFunc("/events", h.submitEventHandler)
}

func (h *OrderHandler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.ListOrders")
	defer span.End()

	orders, err := h.repo.FindAll(ctx)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to list orders")
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *OrderHandler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.GetOrder")
	defer span.End()

	orderID := strings.TrimPrefix(r.URL.Path, "/orders/")
	if orderID == "" || strings.Contains(orderID, "/") {
		http.Error(w, "order id is required", http.StatusBadRequest)
		return
	}

	order, err := h.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == domain.ErrOrderNotFound {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to load order")
		http.Error(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// submitEventHandler 校验提交的事件并转发到摄入 topic。
// 调用方没带 eventId 时在这里补一个，保证下游可追踪。
func (h *OrderHandler) submitEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.SubmitEvent")
	defer span.End()

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	evt, err := codec.Decode(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.writer == nil {
		http.Error(w, "event ingestion is not available", http.StatusServiceUnavailable)
		return
	}

	eventID := evt.Meta().EventID
	if eventID == "" {
		eventID = uuid.New().String()
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			http.Error(w, "invalid event payload", http.StatusBadRequest)
			return
		}
		idJSON, _ := json.Marshal(eventID)
		fields["eventId"] = idJSON
		raw, err = json.Marshal(fields)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("failed to rewrite event payload")
			http.Error(w, "failed to accept event", http.StatusInternalServerError)
			return
		}
	}

	if err := mq.ProduceMessage(ctx, h.writer, []byte(evt.AggregateID()), raw); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("event_id", eventID).
			Msg("failed to publish submitted event")
		http.Error(w, "failed to accept event", http.StatusInternalServerError)
		return
	}

	logger.Ctx(ctx).Info().
		Str("event_id", eventID).
		Str("order_id", evt.AggregateID()).
		Msg("event accepted for ingestion")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"eventId": eventID,
		"status":  "accepted",
	})
}

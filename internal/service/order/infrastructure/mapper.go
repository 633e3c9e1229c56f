// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"orderflow/internal/service/order/domain"
)

// toOrderModel 把领域订单转换为数据库模型。
func toOrderModel(order *domain.Order) (*OrderModel, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order items")
	}
	history, err := json.Marshal(order.History)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order history")
	}

	return &OrderModel{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		ItemsJSON:   string(items),
		TotalAmount: order.TotalAmount.String(),
		Status:      string(order.Status),
		HistoryJSON: string(history),
	}, nil
}

// toDomainOrder 把数据库模型还原为领域订单。
func toDomainOrder(model *OrderModel) (*domain.Order, error) {
	var items []domain.OrderItem
	if model.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(model.ItemsJSON), &items); err != nil {
			return nil, errors.Wrap(err, "unmarshal order items")
		}
	}
	var history []string
	if model.HistoryJSON != "" {
		if err := json.Unmarshal([]byte(model.HistoryJSON), &history); err != nil {
			return nil, errors.Wrap(err, "unmarshal order history")
		}
	}
	total, err := decimal.NewFromString(model.TotalAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "parse total amount %q", model.TotalAmount)
	}

	return &domain.Order{
		ID:          model.ID,
		CustomerID:  model.CustomerID,
		Items:       items,
		TotalAmount: total,
		Status:      domain.Status(model.Status),
		History:     history,
	}, nil
}

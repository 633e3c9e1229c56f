// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import "time"

// OrderModel 是订单聚合的数据库模型。
// Items 和 History 以 JSON 文本列存储，金额用 DECIMAL 精确保存。
type OrderModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	CustomerID  string `gorm:"size:64;index"`
	ItemsJSON   string `gorm:"column:items;type:json"`
	TotalAmount string `gorm:"type:decimal(18,2)"`
	Status      string `gorm:"size:20;index"`
	HistoryJSON string `gorm:"column:history;type:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定表名。
func (OrderModel) TableName() string {
	return "orders"
}

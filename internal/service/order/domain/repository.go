// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"errors"
)

// ErrOrderNotFound 由仓储在订单不存在时返回，调用方用 errors.Is 判断。
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository 定义了订单聚合的存取接口。
// 它位于领域层，由基础设施层实现（内存表、MySQL、Redis）。
// 每个方法各自原子；跨方法的读-改-写序列不保证原子性，
// 并发摄入时需要调用方按订单 ID 串行化。
type OrderRepository interface {
	// FindByID 按 ID 查找订单，不存在时返回 ErrOrderNotFound。
	FindByID(ctx context.Context, id string) (*Order, error)

	// ExistsByID 判断订单是否存在，无副作用。
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Save 保存订单（新建或覆盖同 ID 的既有条目）。
	Save(ctx context.Context, order *Order) error

	// FindAll 返回调用时刻的订单快照，顺序不保证。
	FindAll(ctx context.Context) ([]*Order, error)
}

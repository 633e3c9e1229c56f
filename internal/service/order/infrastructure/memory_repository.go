// internal/service/order/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sync"

	"orderflow/internal/service/order/domain"
)

// MemoryRepository 是 OrderRepository 的进程内实现。
// 每个方法各自持锁原子执行；读写都走深拷贝，
// 调用方拿到的快照不会被后续变更影响。
// 进程退出即丢失全部状态，持久性不在本仓储的职责内。
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewMemoryRepository 创建空的内存仓储。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*domain.Order)}
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

func (r *MemoryRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.orders[id]
	return ok, nil
}

func (r *MemoryRepository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *MemoryRepository) FindAll(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		all = append(all, order.Clone())
	}
	return all, nil
}

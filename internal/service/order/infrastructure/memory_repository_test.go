package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"orderflow/internal/service/order/domain"
)

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("FindByID error = %v, want ErrOrderNotFound", err)
	}
	exists, err := repo.ExistsByID(ctx, "missing")
	if err != nil || exists {
		t.Errorf("ExistsByID = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestMemoryRepositorySaveAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order := &domain.Order{
		ID:          "ORD-001",
		TotalAmount: decimal.NewFromInt(100),
		Status:      domain.StatusPending,
		History:     []string{"created"},
	}
	if err := repo.Save(ctx, order); err != nil {
		t.Fatalf("Save: %v", err)
	}

	exists, _ := repo.ExistsByID(ctx, "ORD-001")
	if !exists {
		t.Error("ExistsByID = false after Save")
	}

	got, err := repo.FindByID(ctx, "ORD-001")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.ID != "ORD-001" || got.Status != domain.StatusPending {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestMemoryRepositorySnapshotIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order := &domain.Order{ID: "ORD-001", Status: domain.StatusPending, History: []string{"a"}}
	repo.Save(ctx, order)

	// 保存后修改原对象不应影响仓储内容
	order.Status = domain.StatusCancelled
	order.History = append(order.History, "b")

	got, _ := repo.FindByID(ctx, "ORD-001")
	if got.Status != domain.StatusPending || len(got.History) != 1 {
		t.Errorf("stored order was mutated through caller reference: %+v", got)
	}

	// 读出的快照再怎么改也不影响仓储
	got.Status = domain.StatusShipped
	again, _ := repo.FindByID(ctx, "ORD-001")
	if again.Status != domain.StatusPending {
		t.Errorf("stored order was mutated through read snapshot: %+v", again)
	}
}

func TestMemoryRepositoryFindAll(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		repo.Save(ctx, &domain.Order{ID: id, Status: domain.StatusPending})
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(FindAll) = %d, want 3", len(all))
	}

	// 覆盖保存同一 ID 不增加条目
	repo.Save(ctx, &domain.Order{ID: "ORD-2", Status: domain.StatusPaid})
	all, _ = repo.FindAll(ctx)
	if len(all) != 3 {
		t.Errorf("len(FindAll) after upsert = %d, want 3", len(all))
	}
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewOrder(t *testing.T) {
	t.Parallel()

	evt := &OrderCreated{
		Envelope: Envelope{
			EventID:   "evt-1",
			Timestamp: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			EventType: TypeOrderCreated,
		},
		OrderID:     "ORD-001",
		CustomerID:  "CUST-9",
		Items:       []OrderItem{{ItemID: "SKU-1", Quantity: 2}},
		TotalAmount: decimal.RequireFromString("99.90"),
	}

	order := NewOrder(evt)

	if order.ID != "ORD-001" {
		t.Errorf("ID = %q, want ORD-001", order.ID)
	}
	if order.Status != StatusPending {
		t.Errorf("Status = %q, want %q", order.Status, StatusPending)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("TotalAmount = %s, want 99.90", order.TotalAmount)
	}
	if len(order.History) != 0 {
		t.Errorf("new order should have empty history, got %v", order.History)
	}

	// 构造后修改事件中的 items 不应影响订单
	evt.Items[0].Quantity = 100
	if order.Items[0].Quantity != 2 {
		t.Errorf("order items must be copied from the event, got quantity %d", order.Items[0].Quantity)
	}
}

func TestAppendHistoryFormat(t *testing.T) {
	t.Parallel()

	order := &Order{ID: "ORD-001"}
	meta := Envelope{
		Timestamp: time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
		EventType: "paymentRECEIVED", // 保留输入原文
	}

	order.AppendHistory(meta, "Partial payment received: 10")

	want := "2025-03-01T08:30:00Z - paymentRECEIVED - Partial payment received: 10"
	if len(order.History) != 1 || order.History[0] != want {
		t.Errorf("History = %v, want [%q]", order.History, want)
	}
}

func TestAppendHistoryIsAppendOnly(t *testing.T) {
	t.Parallel()

	order := &Order{ID: "ORD-001"}
	meta := Envelope{Timestamp: time.Now().UTC(), EventType: TypeOrderCreated}

	order.AppendHistory(meta, "first")
	order.AppendHistory(meta, "second")
	order.AppendHistory(meta, "third")

	if len(order.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(order.History))
	}
	for i, suffix := range []string{"first", "second", "third"} {
		if got := order.History[i]; got[len(got)-len(suffix):] != suffix {
			t.Errorf("History[%d] = %q, want suffix %q", i, got, suffix)
		}
	}
}

func TestOrderClone(t *testing.T) {
	original := &Order{
		ID:          "ORD-001",
		Items:       []OrderItem{{ItemID: "SKU-1", Quantity: 1}},
		TotalAmount: decimal.NewFromInt(50),
		Status:      StatusPending,
		History:     []string{"line-1"},
	}

	clone := original.Clone()
	clone.Status = StatusPaid
	clone.Items[0].Quantity = 42
	clone.History = append(clone.History, "line-2")

	if original.Status != StatusPending {
		t.Errorf("clone mutation leaked into original status: %q", original.Status)
	}
	if original.Items[0].Quantity != 1 {
		t.Errorf("clone mutation leaked into original items: %d", original.Items[0].Quantity)
	}
	if len(original.History) != 1 {
		t.Errorf("clone mutation leaked into original history: %v", original.History)
	}

	var nilOrder *Order
	if nilOrder.Clone() != nil {
		t.Error("Clone of nil order should be nil")
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	var d Date
	if err := json.Unmarshal([]byte(`"2025-07-04"`), &d); err != nil {
		t.Fatalf("unmarshal valid date: %v", err)
	}
	if d.String() != "2025-07-04" {
		t.Errorf("String() = %q, want 2025-07-04", d.String())
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	if string(out) != `"2025-07-04"` {
		t.Errorf("marshal = %s, want \"2025-07-04\"", out)
	}

	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Error("expected error for malformed date")
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Errorf("null date should be tolerated: %v", err)
	}
}

package codec

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"orderflow/internal/service/order/domain"
)

func TestDecodeOrderCreated(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"eventId": "evt-1",
		"eventType": "OrderCreated",
		"timestamp": "2025-01-15T10:00:00Z",
		"orderId": "ORD-001",
		"customerId": "CUST-9",
		"items": [{"itemId": "SKU-1", "quantity": 2}],
		"totalAmount": "149.50"
	}`)

	evt, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	created, ok := evt.(*domain.OrderCreated)
	if !ok {
		t.Fatalf("decoded type = %T, want *domain.OrderCreated", evt)
	}
	if created.OrderID != "ORD-001" || created.CustomerID != "CUST-9" {
		t.Errorf("unexpected fields: %+v", created)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("149.50")) {
		t.Errorf("TotalAmount = %s, want 149.50", created.TotalAmount)
	}
	if evt.AggregateID() != "ORD-001" {
		t.Errorf("AggregateID = %q, want ORD-001", evt.AggregateID())
	}
}

func TestDecodeCaseInsensitiveTagKeepsOriginal(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"eventType": "paymentRECEIVED", "orderId": "ORD-001", "amountPaid": "10"}`)

	evt, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := evt.(*domain.PaymentReceived); !ok {
		t.Fatalf("decoded type = %T, want *domain.PaymentReceived", evt)
	}
	// 信封中保留输入原文，而不是规范名
	if got := evt.Meta().EventType; got != "paymentRECEIVED" {
		t.Errorf("EventType = %q, want verbatim paymentRECEIVED", got)
	}
}

func TestDecodeAllVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"shipping", `{"eventType": "ShippingScheduled", "orderId": "ORD-1", "shippingDate": "2025-08-01"}`, "ORD-1"},
		{"cancelled", `{"eventType": "ordercancelled", "orderId": "ORD-2", "reason": "changed mind"}`, "ORD-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if evt.AggregateID() != tt.want {
				t.Errorf("AggregateID = %q, want %q", evt.AggregateID(), tt.want)
			}
		})
	}
}

func TestDecodeMissingType(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"orderId": "ORD-001"}`,
		`{"eventType": "", "orderId": "ORD-001"}`,
	} {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrMissingType) {
			t.Errorf("Decode(%s) error = %v, want ErrMissingType", raw, err)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"eventType": "OrderRefunded", "orderId": "ORD-001"}`))

	var unknown *UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownTypeError", err)
	}
	if unknown.Tag != "OrderRefunded" {
		t.Errorf("Tag = %q, want OrderRefunded", unknown.Tag)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{not json`))

	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("error = %v, want *StructuralError", err)
	}
	if structural.Tag != "" {
		t.Errorf("Tag = %q, want empty for malformed record", structural.Tag)
	}
}

func TestDecodeShapeMismatch(t *testing.T) {
	// items 应是数组，这里给了字符串
	_, err := Decode([]byte(`{"eventType": "OrderCreated", "orderId": "ORD-001", "items": "oops"}`))

	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("error = %v, want *StructuralError", err)
	}
	if structural.Tag != "OrderCreated" {
		t.Errorf("Tag = %q, want OrderCreated", structural.Tag)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"eventType": "OrderCancelled", "orderId": "ORD-001", "reason": "x", "extra": {"a": 1}}`)
	if _, err := Decode(raw); err != nil {
		t.Errorf("unknown fields should be ignored, got %v", err)
	}
}

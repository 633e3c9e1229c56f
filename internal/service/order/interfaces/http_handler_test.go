package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"orderflow/internal/service/order/domain"
	"orderflow/internal/service/order/infrastructure"
)

func newTestServer(t *testing.T) (*httptest.Server, *infrastructure.MemoryRepository) {
	t.Helper()
	repo := infrastructure.NewMemoryRepository()
	handler := NewOrderHandler(repo, nil)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetOrder(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.Save(t.Context(), &domain.Order{
		ID:          "ORD-001",
		CustomerID:  "CUST-1",
		TotalAmount: decimal.NewFromInt(100),
		Status:      domain.StatusPaid,
		History:     []string{"created", "paid"},
	})

	resp, err := http.Get(srv.URL + "/orders/ORD-001")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		ID      string   `json:"ID"`
		Status  string   `json:"Status"`
		History []string `json:"History"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "ORD-001" || got.Status != "PAID" || len(got.History) != 2 {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/orders/ORD-404")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListOrders(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.Save(t.Context(), &domain.Order{ID: "ORD-1", Status: domain.StatusPending})
	repo.Save(t.Context(), &domain.Order{ID: "ORD-2", Status: domain.StatusShipped})

	resp, err := http.Get(srv.URL + "/orders")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestSubmitEventWithoutProducer(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"eventType":"OrderCreated","orderId":"ORD-1","customerId":"C1","items":[],"totalAmount":"10"}`
	resp, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when kafka is disabled", resp.StatusCode)
	}
}

func TestSubmitEventRejectsBadPayload(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing type", `{"orderId":"ORD-1"}`},
		{"unknown type", `{"eventType":"OrderRefunded","orderId":"ORD-1"}`},
		{"malformed", `{nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/events", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			// 校验在 producer 检查之前，坏载荷直接 400
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestSubmitEventMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

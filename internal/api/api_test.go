package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/api/handlers"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubInventory struct {
	records   []domain.InventoryRecord
	suppliers []domain.Supplier
	err       error
	lastQuery domain.InventoryFilter
}

func (s *stubInventory) ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryRecord, error) {
	s.lastQuery = filter
	return s.records, s.err
}

func (s *stubInventory) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.suppliers, s.err
}

func (s *stubInventory) ListStoreIDs(ctx context.Context) ([]int64, error) {
	return []int64{1}, s.err
}

type stubOrders struct {
	saved []replenishment.DraftPurchaseOrder
}

func (s *stubOrders) SaveDrafts(ctx context.Context, orders []replenishment.DraftPurchaseOrder) error {
	s.saved = append(s.saved, orders...)
	return nil
}

var testNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func newTestRouter(inv *stubInventory, orders *stubOrders) *gin.Engine {
	svc := service.NewReplenishmentService(inv, orders, nil,
		service.WithClock(func() time.Time { return testNow }))
	return NewRouter(&Services{ReplenishmentService: svc}, nil)
}

func sampleInventory() *stubInventory {
	return &stubInventory{
		records: []domain.InventoryRecord{
			{ID: "1", Name: "Widget", SKU: "W-1", StoreID: 1, CurrentStock: 0, MinStock: 5, ReorderPoint: 10, MaxStock: 40, ReorderQty: 20, AvgDailySales: 2, UnitCost: decimal.NewFromInt(2), SupplierID: "acme"},
			{ID: "2", Name: "Gadget", SKU: "G-1", StoreID: 1, CurrentStock: 90, MinStock: 5, ReorderPoint: 10, MaxStock: 100, ReorderQty: 20, AvgDailySales: 1, UnitCost: decimal.NewFromInt(4), SupplierID: "acme"},
		},
		suppliers: []domain.Supplier{{ID: "acme", LeadTimeDays: 5}},
	}
}

func doRequest(router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(NewRouter(nil, nil), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetAlerts(t *testing.T) {
	inv := sampleInventory()
	router := newTestRouter(inv, &stubOrders{})

	w := doRequest(router, http.MethodGet, "/api/v1/replenishment/alerts?store_ids=1,2&store_ids=x&skus=W-1,W-1&supplier_ids=acme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data  []replenishment.StockAlert `json:"data"`
		Total int                        `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].Kind != replenishment.KindOutOfStock {
		t.Errorf("unexpected alerts %+v", resp)
	}

	want := domain.InventoryFilter{StoreIDs: []int64{1, 2}, SupplierIDs: []string{"acme"}, SKUs: []string{"W-1"}}
	if !reflect.DeepEqual(inv.lastQuery, want) {
		t.Errorf("filter = %+v, want %+v", inv.lastQuery, want)
	}
}

func TestGetAlerts_RepositoryError(t *testing.T) {
	inv := sampleInventory()
	inv.err = errors.New("db down")

	w := doRequest(newTestRouter(inv, &stubOrders{}), http.MethodGet, "/api/v1/replenishment/alerts", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestDraftsAndConfirm(t *testing.T) {
	orders := &stubOrders{}
	router := newTestRouter(sampleInventory(), orders)

	w := doRequest(router, http.MethodGet, "/api/v1/replenishment/purchase_orders/drafts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"estimated_total":"80"`) {
		t.Errorf("expected a single 40 unit line at 2.00, got %s", w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/api/v1/replenishment/purchase_orders/drafts/confirm", []byte(`{"supplier_ids":["acme"]}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(orders.saved) != 1 || orders.saved[0].SupplierID != "acme" {
		t.Errorf("unexpected saved drafts %+v", orders.saved)
	}

	w = doRequest(router, http.MethodPost, "/api/v1/replenishment/purchase_orders/drafts/confirm", []byte(`{"supplier_ids":`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestEvaluate(t *testing.T) {
	router := newTestRouter(&stubInventory{}, &stubOrders{})

	body := []byte(`{
		"records": [
			{"id": "a", "sku": "A", "current_stock": 2, "min_stock": 5, "max_stock": 20, "reorder_point": 8, "reorder_qty": 5, "avg_daily_sales": 1, "unit_cost": "1.50", "supplier_id": "s1"}
		],
		"suppliers": [{"id": "s1", "lead_time_days": 3}],
		"now": "2026-01-10T00:00:00Z"
	}`)
	w := doRequest(router, http.MethodPost, "/api/v1/replenishment/evaluate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp handlers.EvaluateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Evaluations) != 1 || resp.Evaluations[0].Status != replenishment.StatusCritical {
		t.Fatalf("unexpected evaluations %+v", resp.Evaluations)
	}
	if len(resp.Drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(resp.Drafts))
	}
	draft := resp.Drafts[0]
	if draft.Lines[0].Quantity != 18 || !draft.EstimatedTotal.Equal(decimal.RequireFromString("27")) {
		t.Errorf("unexpected draft %+v", draft)
	}
	if want := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC); !draft.ExpectedDeliveryDate.Equal(want) {
		t.Errorf("delivery = %v, want %v", draft.ExpectedDeliveryDate, want)
	}
	if resp.Summary.ReorderCount != 1 || len(resp.Alerts) != 1 {
		t.Errorf("unexpected summary %+v alerts %+v", resp.Summary, resp.Alerts)
	}
}

func TestEvaluate_InvalidBody(t *testing.T) {
	router := newTestRouter(&stubInventory{}, &stubOrders{})

	w := doRequest(router, http.MethodPost, "/api/v1/replenishment/evaluate", []byte(`{"records": [{"current_stock": "lots"}]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestInvalidateCache(t *testing.T) {
	w := doRequest(newTestRouter(sampleInventory(), &stubOrders{}), http.MethodDelete, "/api/v1/replenishment/cache", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		want     []string
		allowAll bool
	}{
		{"comma separated", []string{"https://a.example, https://b.example"}, []string{"https://a.example", "https://b.example"}, false},
		{"wildcard", []string{"*"}, nil, true},
		{"blank entries", []string{" ", ""}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allowAll := normalizeAllowedOrigins(tt.in)
			if !reflect.DeepEqual(got, tt.want) || allowAll != tt.allowAll {
				t.Errorf("got (%v, %v), want (%v, %v)", got, allowAll, tt.want, tt.allowAll)
			}
		})
	}
}

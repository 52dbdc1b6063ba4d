package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-manager/internal/repository"
	"stock-manager/internal/service"
	"stock-manager/internal/stock"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Stub posting service returning a fixed receipt or error
type stubPostingService struct {
	saleReceipt     *service.SaleReceipt
	purchaseReceipt *service.PurchaseReceipt
	err             error
}

func (s *stubPostingService) PostSale(ctx context.Context, clientRef string, lines []service.SaleLine) (*service.SaleReceipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.saleReceipt, nil
}

func (s *stubPostingService) PostPurchase(ctx context.Context, supplier string, lines []service.PurchaseLine) (*service.PurchaseReceipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.purchaseReceipt, nil
}

// Stub report service that only counts invalidations
type stubReportService struct {
	service.ReportService
	invalidations int
}

func (s *stubReportService) InvalidateReports(ctx context.Context) {
	s.invalidations++
}

func postSaleRequest(t *testing.T, handler *SaleHandler, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, func(next http.Handler) http.Handler { return next })

	req := httptest.NewRequest("POST", "/api/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validSaleBody() map[string]interface{} {
	return map[string]interface{}{
		"client_search": "Acme Corp",
		"products": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 2},
		},
	}
}

func TestPostSaleReturnsReceipt(t *testing.T) {
	saleID := uuid.New()
	posting := &stubPostingService{saleReceipt: &service.SaleReceipt{
		SaleID:     saleID,
		TotalItems: 3,
		TotalPrice: decimal.RequireFromString("25.00"),
	}}
	reports := &stubReportService{}
	handler := NewSaleHandler(posting, reports, zap.NewNop())

	w := postSaleRequest(t, handler, validSaleBody())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp PostSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saleID.String(), resp.SaleID)
	assert.Equal(t, 3, resp.TotalItems)
	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("25.00")))

	assert.Equal(t, 1, reports.invalidations, "a committed sale must drop cached reports")
}

func TestPostSaleStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation error", &service.ValidationError{Message: "quantity must be a positive integer"}, http.StatusBadRequest},
		{"unknown client", repository.ErrClientNotFound, http.StatusNotFound},
		{"unknown product", repository.ErrProductNotFound, http.StatusNotFound},
		{"insufficient stock", &stock.InsufficientStockError{
			ProductID: uuid.New(), ProductName: "Widget", Available: 1, Requested: 2,
		}, http.StatusConflict},
		{"storage failure", &service.StorageError{Op: "commit", Err: context.DeadlineExceeded}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := &stubReportService{}
			handler := NewSaleHandler(&stubPostingService{err: tc.err}, reports, zap.NewNop())

			w := postSaleRequest(t, handler, validSaleBody())

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, 0, reports.invalidations, "failed postings must not touch the cache")
		})
	}
}

func TestPostSaleRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing client", map[string]interface{}{
			"products": []map[string]interface{}{{"product_id": uuid.New().String(), "quantity": 1}},
		}},
		{"empty products", map[string]interface{}{
			"client_search": "Acme Corp",
			"products":      []map[string]interface{}{},
		}},
		{"zero quantity", map[string]interface{}{
			"client_search": "Acme Corp",
			"products":      []map[string]interface{}{{"product_id": uuid.New().String(), "quantity": 0}},
		}},
		{"malformed product id", map[string]interface{}{
			"client_search": "Acme Corp",
			"products":      []map[string]interface{}{{"product_id": "not-a-uuid", "quantity": 1}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewSaleHandler(&stubPostingService{}, &stubReportService{}, zap.NewNop())

			w := postSaleRequest(t, handler, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPostPurchaseReturnsReceipt(t *testing.T) {
	purchaseID := uuid.New()
	posting := &stubPostingService{purchaseReceipt: &service.PurchaseReceipt{
		PurchaseID: purchaseID,
		ItemsCount: 1,
		Total:      decimal.RequireFromString("40.00"),
	}}
	reports := &stubReportService{}
	handler := NewPurchaseHandler(posting, reports, zap.NewNop())

	body := map[string]interface{}{
		"supplier": "Supplies Inc",
		"items": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 5, "unit_price": "8.00"},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, func(next http.Handler) http.Handler { return next })

	req := httptest.NewRequest("POST", "/api/purchases", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp PostPurchaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, purchaseID.String(), resp.PurchaseID)
	assert.Equal(t, 1, resp.ItemsCount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, 1, reports.invalidations)
}

func TestGetSaleRejectsMalformedID(t *testing.T) {
	handler := NewSaleHandler(&stubPostingService{}, &stubReportService{}, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, func(next http.Handler) http.Handler { return next })

	req := httptest.NewRequest("GET", "/api/sales/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

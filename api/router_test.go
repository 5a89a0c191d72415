package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"api_tractors/internal/analytics"
	"api_tractors/internal/insights"
	"api_tractors/internal/integrations/textgen"
	"api_tractors/internal/inventory"
	"api_tractors/internal/invoice"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	s.calls++
	return s.text, s.err
}

var testNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

func initRoutesTests(t *testing.T, gen textgen.Generator, seed bool) (*gin.Engine, *inventory.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	ledger := inventory.NewService(inventory.NewLocalStorage(), logger,
		inventory.WithClock(func() time.Time { return testNow }))
	if seed {
		require.NoError(t, inventory.Seed(ledger))
	}
	renderer, err := invoice.NewRenderer()
	require.NoError(t, err)

	InitRoutes(router, Deps{
		Ledger:     ledger,
		Assistant:  insights.NewAssistant(gen, insights.Config{}, logger),
		Invoices:   renderer,
		Dealership: invoice.DefaultDealership,
		Logger:     logger,
	})
	return router, ledger
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func customerBody() map[string]string {
	return map[string]string{
		"name":    "Anita Singh",
		"address": "7 Canal Rd, Ludhiana",
		"phone":   "9811111111",
		"email":   "anita@example.com",
	}
}

// TestTractorHappyPath_FullFlow covers POST -> PUT -> sell -> GET on the happy path.
func TestTractorHappyPath_FullFlow(t *testing.T) {
	router, _ := initRoutesTests(t, &stubGenerator{text: "ok"}, false)

	var tractorID string

	t.Run("POST_CreateTractor", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tractors", map[string]any{
			"name":          "John Deere 5075E",
			"model":         "5 Series",
			"year":          2022,
			"purchasePrice": 45000,
			"listingPrice":  "55000",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created inventory.Tractor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "T001", created.ID)
		assert.Equal(t, inventory.StatusAvailable, created.Status)
		assert.Equal(t, "https://picsum.photos/seed/T1/600/400", created.ImageURL)
		assert.Equal(t, "55000", created.ListingPrice.String())
		tractorID = created.ID
	})

	if tractorID == "" {
		t.Fatal("tractor ID was not generated in POST_CreateTractor step.")
	}

	t.Run("PUT_UpdateTractor", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/tractors/"+tractorID, map[string]any{
			"name":          "John Deere 5075E",
			"model":         "5 Series",
			"year":          2022,
			"purchasePrice": 45000,
			"listingPrice":  53000,
			"description":   "Low hours.",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated inventory.Tractor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Low hours.", updated.Description)
		assert.Equal(t, "53000", updated.ListingPrice.String())
		assert.Equal(t, "https://picsum.photos/seed/T1/600/400", updated.ImageURL)
	})

	var txID string
	t.Run("POST_SellTractor", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tractors/"+tractorID+"/sell", map[string]any{
			"customer":  customerBody(),
			"salePrice": 50000,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var tx inventory.Transaction
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
		assert.Equal(t, "TRN001", tx.ID)
		assert.Equal(t, "C001", tx.Customer.ID)
		assert.Equal(t, "2025-03-12", tx.Date)
		assert.Equal(t, inventory.StatusAvailable, tx.Tractor.Status)
		txID = tx.ID
	})

	t.Run("GET_SoldTractor", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/tractors?status=Sold", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var sold []inventory.Tractor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sold))
		require.Len(t, sold, 1)
		assert.Equal(t, tractorID, sold[0].ID)
	})

	t.Run("POST_SellAgainConflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tractors/"+tractorID+"/sell", map[string]any{
			"customer":  customerBody(),
			"salePrice": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("GET_Transaction", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/transactions/"+txID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"salePrice":"50000"`)
	})

	t.Run("GET_Invoice", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/transactions/"+txID+"/invoice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "#TRN001")
		assert.Contains(t, w.Body.String(), "12/03/2025")
		assert.Contains(t, w.Body.String(), "₹50,000.00")
	})
}

func TestTractorErrors(t *testing.T) {
	router, _ := initRoutesTests(t, &stubGenerator{}, true)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown tractor", http.MethodGet, "/tractors/T999", nil, http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/tractors?status=Leased", nil, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/tractors", map[string]any{"model": "x", "year": 2020}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/tractors", "not an object", http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/tractors/T999", map[string]any{"name": "a", "model": "b", "year": 2020}, http.StatusNotFound},
		{"reopen sold", http.MethodPut, "/tractors/T003", map[string]any{"name": "a", "model": "b", "year": 2020, "status": "Available"}, http.StatusConflict},
		{"sell unknown", http.MethodPost, "/tractors/T999/sell", map[string]any{"customer": customerBody(), "salePrice": 1}, http.StatusNotFound},
		{"sell sold", http.MethodPost, "/tractors/T003/sell", map[string]any{"customer": customerBody(), "salePrice": 1}, http.StatusConflict},
		{"sell incomplete customer", http.MethodPost, "/tractors/T001/sell", map[string]any{"customer": map[string]string{"name": "x"}, "salePrice": 1}, http.StatusBadRequest},
		{"sell negative price", http.MethodPost, "/tractors/T001/sell", map[string]any{"customer": customerBody(), "salePrice": -5}, http.StatusBadRequest},
		{"sell bad date", http.MethodPost, "/tractors/T001/sell", map[string]any{"customer": customerBody(), "salePrice": 1, "date": "15/08/2023"}, http.StatusBadRequest},
		{"unknown transaction", http.MethodGet, "/transactions/TRN999", nil, http.StatusNotFound},
		{"unknown invoice", http.MethodGet, "/transactions/TRN999/invoice", nil, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/transactions?limit=-1", nil, http.StatusBadRequest},
		{"bad year", http.MethodGet, "/analytics/year?year=23", nil, http.StatusBadRequest},
		{"describe missing fields", http.MethodPost, "/assistant/description", map[string]any{"name": "x"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestSellWithDate(t *testing.T) {
	router, ledger := initRoutesTests(t, &stubGenerator{}, true)

	w := doJSON(t, router, http.MethodPost, "/tractors/T004/sell", map[string]any{
		"customer":  customerBody(),
		"salePrice": "108000.50",
		"date":      "2023-11-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tx, err := ledger.Transaction("TRN002")
	require.NoError(t, err)
	assert.Equal(t, "2023-11-02", tx.Date)
	assert.Equal(t, "C002", tx.Customer.ID)
	assert.Equal(t, "108000.5", tx.SalePrice.String())
}

func TestListTransactions(t *testing.T) {
	router, _ := initRoutesTests(t, &stubGenerator{}, true)
	doJSON(t, router, http.MethodPost, "/tractors/T001/sell", map[string]any{"customer": customerBody(), "salePrice": 54000})

	w := doJSON(t, router, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []inventory.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "TRN002", all[0].ID)

	w = doJSON(t, router, http.MethodGet, "/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var limited []inventory.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &limited))
	require.Len(t, limited, 1)
	assert.Equal(t, "TRN002", limited[0].ID)
}

func TestDashboardAndAnalytics(t *testing.T) {
	router, _ := initRoutesTests(t, &stubGenerator{}, true)
	doJSON(t, router, http.MethodPost, "/tractors/T001/sell", map[string]any{"customer": customerBody(), "salePrice": 54000})

	w := doJSON(t, router, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view analytics.DashboardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.AvailableTractors)
	assert.Equal(t, "179000", view.InventoryValue.String())
	assert.Equal(t, "54000", view.MonthlySales.String())
	assert.Len(t, view.RecentTransactions, 2)

	w = doJSON(t, router, http.MethodGet, "/analytics/monthly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var series []analytics.MonthBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series, 12)
	assert.Equal(t, "Mar", series[2].Month)
	assert.Equal(t, "54000", series[2].Sales.String())
	assert.Equal(t, "45500", series[7].Sales.String())

	w = doJSON(t, router, http.MethodGet, "/analytics/year?year=2023", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var year analytics.YearSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &year))
	assert.Equal(t, 1, year.UnitsSold)
	assert.Equal(t, "7500", year.Profit.String())
	assert.Equal(t, "New Holland T4", year.BestModel)
}

func TestAssistantEndpoints(t *testing.T) {
	gen := &stubGenerator{text: "Tough and efficient."}
	router, _ := initRoutesTests(t, gen, true)

	w := doJSON(t, router, http.MethodPost, "/assistant/description", map[string]any{
		"name": "Kubota M7", "model": "M7 Series", "year": 2023,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"description":"Tough and efficient."}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/assistant/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"Tough and efficient."}`, w.Body.String())
	assert.Equal(t, 2, gen.calls)

	w = doJSON(t, router, http.MethodPost, "/assistant/summary?year=2019", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"`+insights.NoTransactions+`"}`, w.Body.String())
	assert.Equal(t, 2, gen.calls)
}

func TestAssistantFailureIsNotAnHTTPError(t *testing.T) {
	router, ledger := initRoutesTests(t, &stubGenerator{err: textgen.ErrRemoteService}, true)
	before := ledger.Snapshot()

	w := doJSON(t, router, http.MethodPost, "/assistant/description", map[string]any{
		"name": "Kubota M7", "model": "M7 Series", "year": 2023,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"description":"`+insights.DescriptionFailed+`"}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/assistant/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"`+insights.SummaryFailed+`"}`, w.Body.String())

	assert.Equal(t, before, ledger.Snapshot())
}

func TestRequestID(t *testing.T) {
	router, _ := initRoutesTests(t, &stubGenerator{}, false)

	w := doJSON(t, router, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

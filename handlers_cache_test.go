package main

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack-backend/internal/budget"
)

func newCachedTestRouter(t *testing.T, store Store) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	logger := newLogger("error", "test", io.Discard)
	c := newCache(client, logger)
	t.Cleanup(func() { _ = c.close() })

	ttl := CacheConfig{
		TransactionsTTL: time.Minute,
		AnalyticsTTL:    time.Minute,
		BudgetTTL:       time.Minute,
		DashboardTTL:    time.Minute,
	}
	s := newServer(store, c, budget.New(budget.DefaultThresholds()), ttl, logger)
	s.now = func() time.Time { return testNow }
	return newRouter(s, logger, []string{"http://localhost:3000"}), mr
}

func cachedLedger() *memStore {
	store := newMemStore()
	store.categories = []BudgetCategory{
		{ID: 1, Name: "Food", Limit: 800, Color: "orange"},
		{ID: 2, Name: "Bills", Limit: 200, Color: "yellow"},
	}
	store.transactions = []Transaction{
		{ID: 3, Description: "Groceries", Category: "Food", Amount: -100, Type: "expense", Date: testNow.AddDate(0, 0, -1)},
	}
	store.nextID = 10
	return store
}

func getOverview(t *testing.T, h http.Handler) BudgetOverviewResponse {
	t.Helper()
	w := doRequest(t, h, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[BudgetOverviewResponse](t, w)
}

func TestBudgetOverview_ServedFromCache(t *testing.T) {
	store := cachedLedger()
	r, mr := newCachedTestRouter(t, store)

	first := getOverview(t, r)
	assert.Equal(t, 100.0, first.SpentSoFar)
	assert.True(t, mr.Exists(cacheKeyBudget))
	assert.Equal(t, time.Minute, mr.TTL(cacheKeyBudget))

	// Written behind the handlers' back, so only a cache miss would see it.
	store.transactions = append(store.transactions, Transaction{
		ID: 4, Category: "Food", Amount: -50, Date: testNow,
	})

	cached := getOverview(t, r)
	assert.Equal(t, 100.0, cached.SpentSoFar)

	mr.FastForward(time.Minute)
	expired := getOverview(t, r)
	assert.Equal(t, 150.0, expired.SpentSoFar)
}

func TestBudgetOverview_RefreshedAfterMutation(t *testing.T) {
	store := cachedLedger()
	r, _ := newCachedTestRouter(t, store)

	before := getOverview(t, r)
	require.Equal(t, 100.0, before.SpentSoFar)
	require.Equal(t, 1000.0, before.TotalBudget)

	w := doRequest(t, r, http.MethodPost, "/api/transactions", map[string]any{
		"description": "Dinner",
		"category":    "Food",
		"amount":      -400,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	afterCreate := getOverview(t, r)
	assert.Equal(t, 500.0, afterCreate.SpentSoFar)
	assert.Equal(t, 62.5, afterCreate.Categories[0].Percentage)

	w = doRequest(t, r, http.MethodPut, "/api/budget/category/1", map[string]any{"limit": 1000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	afterUpdate := getOverview(t, r)
	assert.Equal(t, 1200.0, afterUpdate.TotalBudget)
	assert.Equal(t, 50.0, afterUpdate.Categories[0].Percentage)

	w = doRequest(t, r, http.MethodDelete, "/api/budget/category/2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	afterDelete := getOverview(t, r)
	assert.Len(t, afterDelete.Categories, 1)
	assert.Equal(t, 1000.0, afterDelete.TotalBudget)

	w = doRequest(t, r, http.MethodDelete, "/api/transactions/3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	afterTxDelete := getOverview(t, r)
	assert.Equal(t, 400.0, afterTxDelete.SpentSoFar)
}

func TestMutationsInvalidateEveryCachedPayload(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{
			name:   "create transaction",
			method: http.MethodPost,
			path:   "/api/transactions",
			body:   map[string]any{"description": "Bus", "category": "Transport", "amount": -3},
			status: http.StatusCreated,
		},
		{
			name:   "delete transaction",
			method: http.MethodDelete,
			path:   "/api/transactions/3",
			status: http.StatusOK,
		},
		{
			name:   "create budget category",
			method: http.MethodPost,
			path:   "/api/budget/category",
			body:   map[string]any{"name": "Pets", "limit": 50},
			status: http.StatusCreated,
		},
		{
			name:   "update budget category",
			method: http.MethodPut,
			path:   "/api/budget/category/1",
			body:   map[string]any{"limit": 900},
			status: http.StatusOK,
		},
		{
			name:   "delete budget category",
			method: http.MethodDelete,
			path:   "/api/budget/category/1",
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mr := newCachedTestRouter(t, cachedLedger())

			for _, path := range []string{"/api/budget", "/api/transactions", "/api/dashboard", "/api/analytics"} {
				w := doRequest(t, r, http.MethodGet, path, nil)
				require.Equal(t, http.StatusOK, w.Code, path)
			}
			for _, key := range allCacheKeys {
				require.True(t, mr.Exists(key), key)
			}

			w := doRequest(t, r, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			for _, key := range allCacheKeys {
				assert.False(t, mr.Exists(key), key)
			}
		})
	}
}

func TestFailedMutationKeepsCache(t *testing.T) {
	r, mr := newCachedTestRouter(t, cachedLedger())

	getOverview(t, r)
	require.True(t, mr.Exists(cacheKeyBudget))

	w := doRequest(t, r, http.MethodDelete, "/api/transactions/99", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, mr.Exists(cacheKeyBudget))
}

func TestCache_UndecodableEntryIsIgnored(t *testing.T) {
	r, mr := newCachedTestRouter(t, cachedLedger())
	require.NoError(t, mr.Set(cacheKeyBudget, "{not json"))

	overview := getOverview(t, r)
	assert.Equal(t, 100.0, overview.SpentSoFar)
}

// wideStore ignores the requested window.
type wideStore struct {
	*memStore
}

func (s wideStore) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	return s.ListTransactions(ctx, transactionListLimit)
}

func TestBudgetOverview_IgnoresRowsOutsideMonth(t *testing.T) {
	store := cachedLedger()
	store.transactions = append(store.transactions,
		Transaction{ID: 4, Category: "Food", Amount: -700, Date: testNow.AddDate(0, -1, 0)},
		Transaction{ID: 5, Category: "Food", Amount: -900, Date: testNow.AddDate(0, 1, 0)},
	)
	r := newTestRouter(t, wideStore{store})

	overview := getOverview(t, r)
	assert.Equal(t, 100.0, overview.SpentSoFar)
}

package config_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go-finance-ledger/internal/config"
	"go-finance-ledger/pkg/database"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status         bool            `json:"status"`
	Message        string          `json:"message"`
	Payload        json.RawMessage `json:"payload"`
	AdditionalInfo json.RawMessage `json:"additional_info"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func setupServer(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	services := config.Bootstrap(&config.BootstrapConfig{
		DB:           db,
		App:          router,
		Log:          logger,
		Validate:     config.NewValidator(),
		JWTConfig:    &config.JWTConfig{SecretKey: "test-secret", ExpirationTime: 1},
		LedgerConfig: &config.LedgerConfig{LowBalanceThreshold: decimal.NewFromInt(50000)},
		NotifyConfig: &config.NotifyConfig{TimeoutSeconds: 1},
	})
	t.Cleanup(services.Dispatcher.Wait)

	return &apiClient{t: t, router: router}
}

func (c *apiClient) register(email string) {
	c.t.Helper()

	code, env := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, code)

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Payload, &auth))
	require.NotEmpty(c.t, auth.Token)
	c.token = auth.Token
}

type walletPayload struct {
	TotalBalance     decimal.Decimal `json:"total_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}

func (c *apiClient) wallet() walletPayload {
	c.t.Helper()

	code, env := c.do(http.MethodGet, "/api/v1/wallet", nil)
	require.Equal(c.t, http.StatusOK, code)

	var w walletPayload
	require.NoError(c.t, json.Unmarshal(env.Payload, &w))
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	client := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	client.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "finance-ledger-api", health["service"])

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	client.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	client := setupServer(t)

	for _, path := range []string{"/api/v1/wallet", "/api/v1/goals", "/api/v1/expenses", "/api/v1/categories"} {
		code, env := client.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.False(t, env.Status)
	}
}

func TestLogin(t *testing.T) {
	client := setupServer(t)
	client.register("login@example.com")

	code, env := client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Success login user", env.Message)

	code, _ = client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLedgerFlow(t *testing.T) {
	client := setupServer(t)
	client.register("flow@example.com")

	code, _ := client.do(http.MethodPost, "/api/v1/wallet/transactions", map[string]any{
		"transaction_type": "income",
		"amount":           "10000",
		"description":      "Salary",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := client.do(http.MethodPost, "/api/v1/goals", map[string]any{
		"title":         "Laptop",
		"target_amount": "8000",
		"deadline":      "2030-12-31",
	})
	require.Equal(t, http.StatusCreated, code)
	var goal struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &goal))

	code, _ = client.do(http.MethodPost, "/api/v1/wallet/allocations", map[string]any{
		"goal_id": goal.ID,
		"amount":  "4000",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = client.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"amount":      "3000",
		"category":    "Food",
		"description": "Groceries",
	})
	require.Equal(t, http.StatusCreated, code, string(env.Payload))

	w := client.wallet()
	assert.Equal(t, "7000", w.TotalBalance.String())
	assert.Equal(t, "3000", w.AvailableBalance.String())
	assert.Equal(t, "4000", w.AllocatedAmount.String())

	t.Run("allocation beyond available is rejected", func(t *testing.T) {
		code, env := client.do(http.MethodPost, "/api/v1/wallet/allocations", map[string]any{
			"goal_id": goal.ID,
			"amount":  "3500",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)

		var info map[string]string
		require.NoError(t, json.Unmarshal(env.AdditionalInfo, &info))
		assert.Equal(t, "500.00", info["shortfall"])
	})

	t.Run("history lists every entry", func(t *testing.T) {
		code, env := client.do(http.MethodGet, "/api/v1/wallet/transactions?limit=10", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Payload), "Groceries")
		assert.Contains(t, string(env.Payload), "Salary")
	})

	t.Run("goal progress reflects the allocation", func(t *testing.T) {
		code, env := client.do(http.MethodGet, fmt.Sprintf("/api/v1/goals/%s", goal.ID), nil)
		require.Equal(t, http.StatusOK, code)

		var g struct {
			CurrentAmount decimal.Decimal `json:"current_amount"`
			Percentage    decimal.Decimal `json:"percentage"`
		}
		require.NoError(t, json.Unmarshal(env.Payload, &g))
		assert.Equal(t, "4000", g.CurrentAmount.String())
		assert.Equal(t, "50", g.Percentage.String())
	})

	t.Run("recompute keeps balances", func(t *testing.T) {
		code, _ := client.do(http.MethodPost, "/api/v1/wallet/recompute", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "3000", client.wallet().AvailableBalance.String())
	})
}

func TestValidationErrors(t *testing.T) {
	client := setupServer(t)
	client.register("invalid@example.com")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"zero amount", "/api/v1/wallet/transactions", map[string]any{"transaction_type": "income", "amount": "0", "description": "x"}},
		{"unknown type", "/api/v1/wallet/transactions", map[string]any{"transaction_type": "gift", "amount": "10", "description": "x"}},
		{"bad date", "/api/v1/wallet/transactions", map[string]any{"transaction_type": "income", "amount": "10", "description": "x", "date": "14/03/2026"}},
		{"goal without deadline", "/api/v1/goals", map[string]any{"title": "x", "target_amount": "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := client.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Status)
		})
	}

	code, _ := client.do(http.MethodPut, "/api/v1/wallet/transactions/not-a-uuid", map[string]any{"amount": "10", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGoalEditAndStatisticsRoutes(t *testing.T) {
	client := setupServer(t)
	client.register("routes@example.com")

	code, _ := client.do(http.MethodPost, "/api/v1/wallet/transactions", map[string]any{
		"transaction_type": "income",
		"amount":           "2000",
		"description":      "Salary",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := client.do(http.MethodPost, "/api/v1/goals", map[string]any{
		"title":         "Bike",
		"target_amount": "1500",
		"deadline":      "2030-12-31",
	})
	require.Equal(t, http.StatusCreated, code)
	var goal struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &goal))
	path := fmt.Sprintf("/api/v1/goals/%s", goal.ID)

	code, _ = client.do(http.MethodPost, "/api/v1/wallet/allocations", map[string]any{
		"goal_id": goal.ID,
		"amount":  "400",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = client.do(http.MethodPut, path, map[string]any{
		"title":         "Road bike",
		"target_amount": "1800",
		"deadline":      "2031-01-31",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Payload, &goal))
	assert.Equal(t, "Road bike", goal.Title)

	code, env = client.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var deleted struct {
		Released decimal.Decimal `json:"released"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &deleted))
	assert.True(t, deleted.Released.Equal(decimal.NewFromInt(400)))
	assert.True(t, client.wallet().AvailableBalance.Equal(decimal.NewFromInt(2000)))

	code, _ = client.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = client.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"amount":      "120",
		"category":    "Food",
		"description": "Groceries",
		"date":        "2026-03-14",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = client.do(http.MethodGet, "/api/v1/expenses/statistics", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var stats struct {
		Total      decimal.Decimal `json:"total"`
		ByCategory []struct {
			Category string `json:"category"`
		} `json:"by_category"`
		ByMonth []struct {
			Month string `json:"month"`
		} `json:"by_month"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &stats))
	assert.True(t, stats.Total.Equal(decimal.NewFromInt(120)))
	require.Len(t, stats.ByCategory, 1)
	assert.Equal(t, "Food", stats.ByCategory[0].Category)
	require.Len(t, stats.ByMonth, 1)
	assert.Equal(t, "2026-03", stats.ByMonth[0].Month)
}

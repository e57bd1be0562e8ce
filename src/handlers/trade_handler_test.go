package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradejournal/backend/src/database"
	"github.com/username/tradejournal/backend/src/model"
	"github.com/username/tradejournal/backend/src/stats"
	_ "modernc.org/sqlite"
)

const handlerTestSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    capital REAL NOT NULL DEFAULT 0,
    password_reset_token TEXT,
    password_reset_token_expires_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE trades (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    stock TEXT NOT NULL,
    entry_price REAL NOT NULL,
    exit_price REAL NOT NULL,
    quantity INTEGER NOT NULL,
    trade_type TEXT NOT NULL CHECK (trade_type IN ('BUY', 'SELL')),
    profit_loss REAL NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);`

func setupHandlerTestDB(t *testing.T) int64 {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(handlerTestSchema)
	require.NoError(t, err)

	previous := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = previous
		db.Close()
	})

	u := &model.User{Email: "trader@example.com", Password: "irrelevant-hash"}
	require.NoError(t, u.CreateUser(db))
	return u.ID
}

func authedRequest(t *testing.T, userID int64, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), userIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestHandleCreateTrade(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	body := []byte(`{"stock":"RELIANCE","entryPrice":100,"exitPrice":120,"quantity":10,"tradeType":"BUY","notes":"breakout"}`)
	rr := httptest.NewRecorder()
	h.HandleCreateTrade(rr, authedRequest(t, userID, http.MethodPost, "/api/trades", body))

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Message string      `json:"message"`
		Trade   model.Trade `json:"trade"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Trade added successfully", resp.Message)
	assert.Equal(t, "RELIANCE", resp.Trade.Stock)
	assert.InDelta(t, 200, resp.Trade.ProfitLoss, 1e-9)
	assert.NotZero(t, resp.Trade.ID)
}

func TestHandleCreateTradeSellProfitLoss(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	body := []byte(`{"stock":"INFY","entryPrice":101.25,"exitPrice":99,"quantity":50,"tradeType":"SELL"}`)
	rr := httptest.NewRecorder()
	h.HandleCreateTrade(rr, authedRequest(t, userID, http.MethodPost, "/api/trades", body))

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Trade model.Trade `json:"trade"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.InDelta(t, 112.5, resp.Trade.ProfitLoss, 1e-9)
}

func TestHandleCreateTradeValidation(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing numeric fields", body: `{"stock":"TCS","tradeType":"BUY"}`},
		{name: "empty stock", body: `{"stock":"  ","entryPrice":1,"exitPrice":2,"quantity":1,"tradeType":"BUY"}`},
		{name: "invalid trade type", body: `{"stock":"TCS","entryPrice":1,"exitPrice":2,"quantity":1,"tradeType":"HOLD"}`},
		{name: "lowercase trade type rejected", body: `{"stock":"TCS","entryPrice":1,"exitPrice":2,"quantity":1,"tradeType":"buy"}`},
		{name: "zero entry price", body: `{"stock":"TCS","entryPrice":0,"exitPrice":2,"quantity":1,"tradeType":"BUY"}`},
		{name: "negative quantity", body: `{"stock":"TCS","entryPrice":1,"exitPrice":2,"quantity":-5,"tradeType":"BUY"}`},
		{name: "bad date format", body: `{"stock":"TCS","entryPrice":1,"exitPrice":2,"quantity":1,"tradeType":"BUY","date":"15-03-2025"}`},
		{name: "malformed json", body: `{"stock":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleCreateTrade(rr, authedRequest(t, userID, http.MethodPost, "/api/trades", []byte(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleCreateTradeSanitizesInput(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	body := []byte(`{"stock":"<b>TCS</b>","entryPrice":1,"exitPrice":2,"quantity":1,"tradeType":"BUY","notes":"<script>x</script>clean"}`)
	rr := httptest.NewRecorder()
	h.HandleCreateTrade(rr, authedRequest(t, userID, http.MethodPost, "/api/trades", body))

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Trade model.Trade `json:"trade"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "TCS", resp.Trade.Stock)
	assert.Equal(t, "clean", resp.Trade.Notes)
}

func TestHandleCreateTradeUnauthenticated(t *testing.T) {
	setupHandlerTestDB(t)
	h := NewTradeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/trades", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	h.HandleCreateTrade(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleListTrades(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	rr := httptest.NewRecorder()
	h.HandleListTrades(rr, authedRequest(t, userID, http.MethodGet, "/api/trades", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	trade := &model.Trade{UserID: userID, Stock: "SBIN", EntryPrice: 600, ExitPrice: 610, Quantity: 5, TradeType: "BUY", ProfitLoss: 50}
	require.NoError(t, model.InsertTrade(database.DB, trade))

	rr = httptest.NewRecorder()
	h.HandleListTrades(rr, authedRequest(t, userID, http.MethodGet, "/api/trades", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var trades []model.Trade
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "SBIN", trades[0].Stock)
}

func TestHandleDeleteTrade(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	trade := &model.Trade{UserID: userID, Stock: "TCS", EntryPrice: 10, ExitPrice: 11, Quantity: 1, TradeType: "BUY", ProfitLoss: 1}
	require.NoError(t, model.InsertTrade(database.DB, trade))

	r := chi.NewRouter()
	r.Delete("/api/trades/{id}", h.HandleDeleteTrade)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, userID, http.MethodDelete, fmt.Sprintf("/api/trades/%d", trade.ID), nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, userID, http.MethodDelete, fmt.Sprintf("/api/trades/%d", trade.ID), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(t, userID, http.MethodDelete, "/api/trades/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCalendarStats(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	year := time.Now().Year()
	trade := &model.Trade{
		UserID: userID, Stock: "RELIANCE", EntryPrice: 100, ExitPrice: 120,
		Quantity: 10, TradeType: "BUY", ProfitLoss: 200,
		Date: time.Date(year, 3, 15, 10, 0, 0, 0, time.Local),
	}
	require.NoError(t, model.InsertTrade(database.DB, trade))

	rr := httptest.NewRecorder()
	h.HandleCalendarStats(rr, authedRequest(t, userID, http.MethodGet, "/api/trades/calendar-stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result stats.YearStatistics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, year, result.Year)
	assert.InDelta(t, 200, result.Summary.PnL, 1e-9)
	assert.Len(t, result.WeeklyStats, 5)
	assert.Len(t, result.YearlyStats, 12)
}

func TestHandleCalendarStatsYearParam(t *testing.T) {
	userID := setupHandlerTestDB(t)
	h := NewTradeHandler()

	trade := &model.Trade{
		UserID: userID, Stock: "RELIANCE", EntryPrice: 100, ExitPrice: 120,
		Quantity: 10, TradeType: "BUY", ProfitLoss: 200,
		Date: time.Date(2023, 6, 1, 10, 0, 0, 0, time.Local),
	}
	require.NoError(t, model.InsertTrade(database.DB, trade))

	rr := httptest.NewRecorder()
	h.HandleCalendarStats(rr, authedRequest(t, userID, http.MethodGet, "/api/trades/calendar-stats?year=2023", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result stats.YearStatistics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2023, result.Year)
	assert.Equal(t, 1, result.Summary.Count)

	rr = httptest.NewRecorder()
	h.HandleCalendarStats(rr, authedRequest(t, userID, http.MethodGet, "/api/trades/calendar-stats?year=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

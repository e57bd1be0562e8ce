package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/tradejournal/backend/src/database"
	"github.com/username/tradejournal/backend/src/logger"
	"github.com/username/tradejournal/backend/src/model"
	"github.com/username/tradejournal/backend/src/security/validation"
	"github.com/username/tradejournal/backend/src/stats"
	"github.com/username/tradejournal/backend/src/utils"
)

type TradeHandler struct{}

func NewTradeHandler() *TradeHandler {
	return &TradeHandler{}
}

type createTradeRequest struct {
	Stock      string   `json:"stock"`
	EntryPrice *float64 `json:"entryPrice"`
	ExitPrice  *float64 `json:"exitPrice"`
	Quantity   *int     `json:"quantity"`
	TradeType  string   `json:"tradeType"`
	Notes      string   `json:"notes"`
	Date       string   `json:"date"`
}

// HandleCreateTrade validates the submitted fields, computes the stored
// profit/loss once, and appends the trade to the user's collection.
func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Stock = validation.SanitizeText(req.Stock)
	req.Notes = validation.SanitizeText(req.Notes)

	if req.EntryPrice == nil || req.ExitPrice == nil || req.Quantity == nil {
		utils.SendJSONError(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.Stock, "stock"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Stock, validation.MaxStockSymbolLength, "stock"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTradeType(req.TradeType); err != nil {
		utils.SendJSONError(w, `tradeType must be "BUY" or "SELL"`, http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositiveFloat(*req.EntryPrice, "entryPrice"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositiveFloat(*req.ExitPrice, "exitPrice"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositiveInt(*req.Quantity, "quantity"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tradeDate := time.Time{}
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			utils.SendJSONError(w, "date must be RFC3339 formatted", http.StatusBadRequest)
			return
		}
		tradeDate = parsed
	}

	profitLoss, err := stats.ComputeProfitLoss(*req.EntryPrice, *req.ExitPrice, *req.Quantity, stats.Side(req.TradeType))
	if err != nil {
		logger.L.Error("Profit/loss computation failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute profit/loss for trade", http.StatusUnprocessableEntity)
		return
	}

	trade := &model.Trade{
		UserID:     userID,
		Stock:      req.Stock,
		EntryPrice: *req.EntryPrice,
		ExitPrice:  *req.ExitPrice,
		Quantity:   *req.Quantity,
		TradeType:  req.TradeType,
		ProfitLoss: profitLoss,
		Notes:      req.Notes,
		Date:       tradeDate,
	}

	if err := model.InsertTrade(database.DB, trade); err != nil {
		logger.L.Error("Failed to insert trade", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to save trade", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Trade recorded", "userID", userID, "tradeID", trade.ID, "stock", trade.Stock, "profitLoss", trade.ProfitLoss)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Trade added successfully",
		"trade":   trade,
	})
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trades, err := model.ListTradesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, trades)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	if err := model.DeleteTradeByID(database.DB, userID, tradeID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete trade", "userID", userID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Trade deleted", "userID", userID, "tradeID", tradeID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCalendarStats computes the full year statistics for the calendar
// heat-map and stats tabs. Buckets are recomputed on every request.
func (h *TradeHandler) HandleCalendarStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	year := now.Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.SendJSONError(w, "year must be an integer", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	trades, err := model.ListTradesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to load trades for calendar stats", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	result := stats.BuildYearStatistics(trades, year, now, time.Local)
	utils.WriteJSON(w, http.StatusOK, result)
}

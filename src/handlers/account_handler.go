package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/username/tradejournal/backend/src/database"
	"github.com/username/tradejournal/backend/src/logger"
	"github.com/username/tradejournal/backend/src/model"
)

// HandleGetProfile returns the user's account info along with the full
// trade collection, mirroring what the dashboard needs on load.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to load user profile", "userID", userID, "error", err)
		sendJSONError(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	trades, err := model.ListTradesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to load trades for profile", "userID", userID, "error", err)
		sendJSONError(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"capital": user.Capital,
		"trades":  trades,
	})
}

// HandleUpdateCapital sets the user's notional capital. Deposits and
// withdrawals are manual balance edits, independent of trade P/L.
func (h *UserHandler) HandleUpdateCapital(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Capital *float64 `json:"capital"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Capital == nil {
		sendJSONError(w, "capital is required", http.StatusBadRequest)
		return
	}
	if math.IsNaN(*req.Capital) || math.IsInf(*req.Capital, 0) {
		sendJSONError(w, "capital must be a finite number", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to load user for capital update", "userID", userID, "error", err)
		sendJSONError(w, "Failed to update capital", http.StatusInternalServerError)
		return
	}

	if err := user.UpdateCapital(database.DB, *req.Capital); err != nil {
		logger.L.Error("Failed to update capital", "userID", userID, "error", err)
		sendJSONError(w, "Failed to update capital", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Capital updated", "userID", userID, "capital", user.Capital)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile updated",
		"capital": user.Capital,
	})
}

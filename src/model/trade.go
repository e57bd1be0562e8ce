package model

import (
	"database/sql"
	"time"
)

// Trade is one closed intraday trade. ProfitLoss is computed once at
// creation from the other fields and stored verbatim; it is never
// recomputed on read.
type Trade struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Stock      string    `json:"stock"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	Quantity   int       `json:"quantity"`
	TradeType  string    `json:"tradeType"`
	ProfitLoss float64   `json:"profitLoss"`
	Notes      string    `json:"notes"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

func InsertTrade(db *sql.DB, trade *Trade) error {
	query := `
	INSERT INTO trades (user_id, stock, entry_price, exit_price, quantity, trade_type, profit_loss, notes, date, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	trade.CreatedAt = time.Now()
	if trade.Date.IsZero() {
		trade.Date = trade.CreatedAt
	}

	res, err := stmt.Exec(
		trade.UserID,
		trade.Stock,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Quantity,
		trade.TradeType,
		trade.ProfitLoss,
		trade.Notes,
		trade.Date,
		trade.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	trade.ID = id
	return nil
}

// ListTradesByUser returns the user's trades in submission order.
func ListTradesByUser(db *sql.DB, userID int64) ([]Trade, error) {
	rows, err := db.Query(`
	SELECT id, user_id, stock, entry_price, exit_price, quantity, trade_type, profit_loss, notes, date, created_at
	FROM trades
	WHERE user_id = ?
	ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Stock, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.TradeType, &t.ProfitLoss, &t.Notes, &t.Date, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []Trade{}
	}
	return trades, nil
}

// DeleteTradeByID permanently removes a trade owned by userID.
// Returns ErrNotFound when the trade does not exist or belongs to another user.
func DeleteTradeByID(db *sql.DB, userID, tradeID int64) error {
	res, err := db.Exec(`DELETE FROM trades WHERE id = ? AND user_id = ?`, tradeID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

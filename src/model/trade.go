package model

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// ReplaceTrades swaps a user's stored trades for a freshly parsed set inside
// one transaction. An upload is the source of truth for the whole history, so
// partial merges are never attempted.
func ReplaceTrades(db *sql.DB, userID int64, trades []models.Trade) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trades WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear existing trades: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO trades (user_id, trade_id, trade_date, side, instrument, isin, quantity, price, total_fees, fee_currency, amount, amount_currency, amount_nok, currency, exchange_rate)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(
			userID,
			t.TradeID,
			t.TradeDate.Format(utils.DefaultDateFormat),
			t.Side,
			t.Instrument,
			t.ISIN,
			t.Quantity,
			t.Price,
			t.TotalFees,
			t.FeeCurrency,
			t.Amount,
			t.AmountCurrency,
			t.AmountNOK,
			t.Currency,
			t.ExchangeRate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", t.TradeID, err)
		}
	}

	return tx.Commit()
}

// GetTradesByUserID returns a user's stored trades ordered by trade date.
func GetTradesByUserID(db *sql.DB, userID int64) ([]models.Trade, error) {
	rows, err := db.Query(`
	SELECT id, trade_id, trade_date, side, instrument, isin, quantity, price, total_fees, fee_currency, amount, amount_currency, amount_nok, currency, exchange_rate
	FROM trades WHERE user_id = ? ORDER BY trade_date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var dateStr string
		if err := rows.Scan(
			&t.ID,
			&t.TradeID,
			&dateStr,
			&t.Side,
			&t.Instrument,
			&t.ISIN,
			&t.Quantity,
			&t.Price,
			&t.TotalFees,
			&t.FeeCurrency,
			&t.Amount,
			&t.AmountCurrency,
			&t.AmountNOK,
			&t.Currency,
			&t.ExchangeRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		date, err := time.Parse(utils.DefaultDateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stored trade date %q: %w", dateStr, err)
		}
		t.TradeDate = date
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ReplaceTickerMappings stores a user's ticker mappings, overwriting any
// previous set.
func ReplaceTickerMappings(db *sql.DB, userID int64, mappings []models.TickerMapping) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ticker_mappings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear ticker mappings: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO ticker_mappings (user_id, isin, instrument, ticker, status, is_norwegian_fund)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range mappings {
		if _, err := stmt.Exec(userID, m.ISIN, m.Instrument, m.Ticker, m.Status, m.IsNorwegianFund); err != nil {
			return fmt.Errorf("failed to insert mapping for %s: %w", m.ISIN, err)
		}
	}

	return tx.Commit()
}

// GetTickerMappingsByUserID returns a user's stored ticker mappings.
func GetTickerMappingsByUserID(db *sql.DB, userID int64) ([]models.TickerMapping, error) {
	rows, err := db.Query(`
	SELECT isin, instrument, ticker, status, is_norwegian_fund
	FROM ticker_mappings WHERE user_id = ? ORDER BY instrument ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.TickerMapping
	for rows.Next() {
		var m models.TickerMapping
		var ticker sql.NullString
		if err := rows.Scan(&m.ISIN, &m.Instrument, &ticker, &m.Status, &m.IsNorwegianFund); err != nil {
			return nil, fmt.Errorf("failed to scan ticker mapping: %w", err)
		}
		m.Ticker = ticker.String
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpdateTickerMapping sets one mapping's ticker and status, used when the
// user confirms or edits a pending mapping.
func UpdateTickerMapping(db *sql.DB, userID int64, isin, ticker, status string) error {
	res, err := db.Exec(`
	UPDATE ticker_mappings SET ticker = ?, status = ? WHERE user_id = ? AND isin = ?`,
		ticker, status, userID, isin)
	if err != nil {
		return fmt.Errorf("failed to update ticker mapping: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no ticker mapping found for isin %s", isin)
	}
	return nil
}

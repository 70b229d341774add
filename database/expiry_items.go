package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stocktake/model"
)

func GetExpiryItem(conn *sqlx.DB, sessionID int64, code string, expiry int64) (*model.ExpiryItem, error) {
	var it model.ExpiryItem
	err := conn.Get(&it, `
		SELECT id, session_id, primary_code, quantity, expiry_date, lot, ts
		FROM expiry_items WHERE session_id = ? AND primary_code = ? AND expiry_date = ?`,
		sessionID, code, expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expiry item (%d, %s, %d): %w", sessionID, code, expiry, err)
	}
	return &it, nil
}

// UpsertExpiryItem writes the quantity at (session, code, date, lot),
// overwriting an existing line at that key. Lot is reserved and always
// stored empty.
func UpsertExpiryItem(conn *sqlx.DB, sessionID int64, code string, qty float64, expiry int64, ts int64) error {
	_, err := conn.Exec(`
		INSERT INTO expiry_items (session_id, primary_code, quantity, expiry_date, lot, ts) VALUES (?, ?, ?, ?, '', ?)
		ON CONFLICT(session_id, primary_code, expiry_date, lot) DO UPDATE SET quantity = excluded.quantity, ts = excluded.ts`,
		sessionID, code, qty, expiry, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert expiry item (%d, %s, %d): %w", sessionID, code, expiry, err)
	}
	return nil
}

func DeleteExpiryItemByID(conn *sqlx.DB, id int64) error {
	if _, err := conn.Exec(`DELETE FROM expiry_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expiry item %d: %w", id, err)
	}
	return nil
}

// GetExpiryItemsByCode returns every dated line a session holds for one
// article, across all dates, oldest date first.
func GetExpiryItemsByCode(conn *sqlx.DB, sessionID int64, code string) ([]model.ExpiryItem, error) {
	var items []model.ExpiryItem
	err := conn.Select(&items, `
		SELECT id, session_id, primary_code, quantity, expiry_date, lot, ts
		FROM expiry_items WHERE session_id = ? AND primary_code = ?
		ORDER BY expiry_date ASC`, sessionID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get expiry items for (%d, %s): %w", sessionID, code, err)
	}
	return items, nil
}

// ConsolidateExpiryByCode collapses every dated line for (session, code)
// into a single row at keepDate carrying qty. Delete and upsert run in
// one transaction; partial application would corrupt the count.
func ConsolidateExpiryByCode(conn *sqlx.DB, sessionID int64, code string, keepDate int64, qty float64, ts int64) error {
	tx, err := conn.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction for consolidation: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM expiry_items WHERE session_id = ? AND primary_code = ? AND expiry_date <> ?`,
		sessionID, code, keepDate); err != nil {
		return fmt.Errorf("failed to delete superseded expiry items (%d, %s): %w", sessionID, code, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO expiry_items (session_id, primary_code, quantity, expiry_date, lot, ts) VALUES (?, ?, ?, ?, '', ?)
		ON CONFLICT(session_id, primary_code, expiry_date, lot) DO UPDATE SET quantity = excluded.quantity, ts = excluded.ts`,
		sessionID, code, qty, keepDate, ts); err != nil {
		return fmt.Errorf("failed to upsert consolidated expiry item (%d, %s): %w", sessionID, code, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit consolidation: %w", err)
	}
	return nil
}

// ListExpiryItems returns a session's dated lines joined with current
// article attributes, ordered by date then description.
func ListExpiryItems(conn *sqlx.DB, sessionID int64) ([]model.ExpiryItem, error) {
	var items []model.ExpiryItem
	err := conn.Select(&items, `
		SELECT i.id, i.session_id, i.primary_code, i.quantity, i.expiry_date, i.lot, i.ts,
		       a.internal_code, a.description, a.units_per_case
		FROM expiry_items i
		JOIN articles a ON a.primary_code = i.primary_code
		WHERE i.session_id = ?
		ORDER BY i.expiry_date ASC, a.description COLLATE NOCASE ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiry items for session %d: %w", sessionID, err)
	}
	return items, nil
}

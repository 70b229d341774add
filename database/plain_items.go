package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stocktake/model"
)

func GetPlainItem(conn *sqlx.DB, sessionID int64, code string) (*model.PlainItem, error) {
	var it model.PlainItem
	err := conn.Get(&it, `
		SELECT id, session_id, primary_code, quantity, ts
		FROM plain_items WHERE session_id = ? AND primary_code = ?`, sessionID, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plain item (%d, %s): %w", sessionID, code, err)
	}
	return &it, nil
}

// UpsertPlainItem writes the quantity for (session, code), overwriting
// any existing line at that key.
func UpsertPlainItem(conn *sqlx.DB, sessionID int64, code string, qty float64, ts int64) error {
	_, err := conn.Exec(`
		INSERT INTO plain_items (session_id, primary_code, quantity, ts) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, primary_code) DO UPDATE SET quantity = excluded.quantity, ts = excluded.ts`,
		sessionID, code, qty, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert plain item (%d, %s): %w", sessionID, code, err)
	}
	return nil
}

func DeletePlainItem(conn *sqlx.DB, sessionID int64, code string) error {
	if _, err := conn.Exec(`DELETE FROM plain_items WHERE session_id = ? AND primary_code = ?`, sessionID, code); err != nil {
		return fmt.Errorf("failed to delete plain item (%d, %s): %w", sessionID, code, err)
	}
	return nil
}

// ListPlainItems returns a session's plain lines joined with current
// article attributes, ordered by description.
func ListPlainItems(conn *sqlx.DB, sessionID int64) ([]model.PlainItem, error) {
	var items []model.PlainItem
	err := conn.Select(&items, `
		SELECT i.id, i.session_id, i.primary_code, i.quantity, i.ts,
		       a.internal_code, a.description, a.units_per_case
		FROM plain_items i
		JOIN articles a ON a.primary_code = i.primary_code
		WHERE i.session_id = ?
		ORDER BY a.description COLLATE NOCASE ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plain items for session %d: %w", sessionID, err)
	}
	return items, nil
}

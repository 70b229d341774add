package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stocktake/model"
)

func CreateSession(conn *sqlx.DB, name, note, kind string, createdAt int64) (int64, error) {
	res, err := conn.Exec(`
		INSERT INTO sessions (name, note, kind, created_at) VALUES (?, ?, ?, ?)`,
		name, note, kind, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get new session id: %w", err)
	}
	return id, nil
}

func GetSessionByID(conn *sqlx.DB, id int64) (*model.Session, error) {
	var s model.Session
	err := conn.Get(&s, `SELECT id, name, note, kind, created_at FROM sessions WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return &s, nil
}

func UpdateSessionMeta(conn *sqlx.DB, id int64, name, note string) error {
	res, err := conn.Exec(`UPDATE sessions SET name = ?, note = ? WHERE id = ?`, name, note, id)
	if err != nil {
		return fmt.Errorf("failed to update session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

// ListSessionsWithStats returns every session with distinct-article
// counts per line kind and the most recent write across both line
// tables, falling back to the creation time. Ordered most recently
// written first.
func ListSessionsWithStats(conn *sqlx.DB) ([]model.SessionStats, error) {
	var rows []struct {
		model.Session
		PlainCount    int   `db:"plain_count"`
		ExpiryCount   int   `db:"expiry_count"`
		LastWriteAtMs int64 `db:"last_write_at"`
	}
	err := conn.Select(&rows, `
		SELECT s.id, s.name, s.note, s.kind, s.created_at,
		       (SELECT COUNT(DISTINCT p.primary_code) FROM plain_items p WHERE p.session_id = s.id) AS plain_count,
		       (SELECT COUNT(DISTINCT e.primary_code) FROM expiry_items e WHERE e.session_id = s.id) AS expiry_count,
		       COALESCE((
		           SELECT MAX(ts) FROM (
		               SELECT MAX(ts) AS ts FROM plain_items WHERE session_id = s.id
		               UNION ALL
		               SELECT MAX(ts) AS ts FROM expiry_items WHERE session_id = s.id
		           )
		       ), s.created_at) AS last_write_at
		FROM sessions s
		ORDER BY last_write_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions with stats: %w", err)
	}

	stats := make([]model.SessionStats, len(rows))
	for i, r := range rows {
		stats[i] = model.SessionStats{
			Session:       r.Session,
			PlainCount:    r.PlainCount,
			ExpiryCount:   r.ExpiryCount,
			ItemCount:     r.PlainCount + r.ExpiryCount,
			LastWriteAtMs: r.LastWriteAtMs,
		}
	}
	return stats, nil
}

// DeleteSession removes a session and every line item of both kinds in
// one transaction.
func DeleteSession(conn *sqlx.DB, id int64) error {
	tx, err := conn.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction for session delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM plain_items WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete plain items for session %d: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM expiry_items WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expiry items for session %d: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	return nil
}

// Package session exposes the CRUD and listing surface for inventory
// sessions and their line items.
package session

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/database"
	"stocktake/dates"
	"stocktake/model"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func sessionID(r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func CreateSessionHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
			Note string `json:"note"`
			Kind string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if req.Kind == "" {
			req.Kind = model.SessionKindPlain
		}
		if req.Kind != model.SessionKindPlain && req.Kind != model.SessionKindExpiry {
			http.Error(w, "kind must be plain or expiry", http.StatusBadRequest)
			return
		}

		id, err := database.CreateSession(conn, req.Name, strings.TrimSpace(req.Note), req.Kind, dates.NowMilli())
		if err != nil {
			zap.L().Error("failed to create session", zap.Error(err))
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		s, err := database.GetSessionByID(conn, id)
		if err != nil || s == nil {
			http.Error(w, "failed to load created session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, s)
	}
}

// ListSessionsHandler returns every session with derived statistics,
// most recently written first.
func ListSessionsHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.ListSessionsWithStats(conn)
		if err != nil {
			zap.L().Error("failed to list sessions", zap.Error(err))
			http.Error(w, "failed to list sessions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}
}

func GetSessionHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r, "/api/sessions/")
		if !ok {
			http.Error(w, "session id is required", http.StatusBadRequest)
			return
		}
		s, err := database.GetSessionByID(conn, id)
		if err != nil {
			http.Error(w, "failed to get session", http.StatusInternalServerError)
			return
		}
		if s == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, s)
	}
}

// UpdateSessionHandler renames or re-annotates a session.
func UpdateSessionHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.ID <= 0 || req.Name == "" {
			http.Error(w, "id and name are required", http.StatusBadRequest)
			return
		}
		if err := database.UpdateSessionMeta(conn, req.ID, req.Name, strings.TrimSpace(req.Note)); err != nil {
			zap.L().Error("failed to update session", zap.Int64("id", req.ID), zap.Error(err))
			http.Error(w, "failed to update session", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteSessionHandler removes a session and all its lines of both
// kinds.
func DeleteSessionHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r, "/api/sessions/delete/")
		if !ok {
			http.Error(w, "session id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteSession(conn, id); err != nil {
			zap.L().Error("failed to delete session", zap.Int64("id", id), zap.Error(err))
			http.Error(w, "failed to delete session", http.StatusInternalServerError)
			return
		}
		zap.L().Info("session deleted", zap.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListItemsHandler returns a session's line items of its own kind,
// joined with article attributes.
func ListItemsHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r, "/api/sessions/items/")
		if !ok {
			http.Error(w, "session id is required", http.StatusBadRequest)
			return
		}
		s, err := database.GetSessionByID(conn, id)
		if err != nil {
			http.Error(w, "failed to get session", http.StatusInternalServerError)
			return
		}
		if s == nil {
			http.NotFound(w, r)
			return
		}

		if s.Kind == model.SessionKindExpiry {
			items, err := database.ListExpiryItems(conn, id)
			if err != nil {
				http.Error(w, "failed to list expiry items", http.StatusInternalServerError)
				return
			}
			writeJSON(w, items)
			return
		}
		items, err := database.ListPlainItems(conn, id)
		if err != nil {
			http.Error(w, "failed to list items", http.StatusInternalServerError)
			return
		}
		writeJSON(w, items)
	}
}

// DeletePlainItemHandler removes one plain line by (session, code).
func DeletePlainItemHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID int64  `json:"sessionId"`
			Code      string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.SessionID <= 0 || strings.TrimSpace(req.Code) == "" {
			http.Error(w, "sessionId and code are required", http.StatusBadRequest)
			return
		}
		if err := database.DeletePlainItem(conn, req.SessionID, strings.TrimSpace(req.Code)); err != nil {
			http.Error(w, "failed to delete item", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteExpiryItemHandler removes one dated line by its row id.
func DeleteExpiryItemHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/api/sessions/expiry_items/delete/")
		id, err := strconv.ParseInt(strings.TrimSuffix(raw, "/"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "item id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteExpiryItemByID(conn, id); err != nil {
			http.Error(w, "failed to delete item", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Package count is the HTTP surface of the scan-resolve-reconcile
// pipeline: preview a code, add a quantity, and answer the engine's
// conflict decisions.
package count

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/reconcile"
	"stocktake/resolver"
	"stocktake/scanner"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Validation failures and catalog misses are expected outcomes, not
// server faults.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reconcile.ErrCodeNotFound),
		errors.Is(err, reconcile.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, reconcile.ErrMissingCode),
		errors.Is(err, reconcile.ErrInvalidQuantity),
		errors.Is(err, reconcile.ErrMissingDate),
		errors.Is(err, reconcile.ErrDateNotFuture),
		errors.Is(err, reconcile.ErrWrongSessionKind):
		status = http.StatusUnprocessableEntity
	default:
		zap.L().Error("reconcile operation failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// ResolveHandler previews a raw code without mutating anything, so the
// operator sees the article before committing a quantity.
func ResolveHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			http.Error(w, "code is a required parameter", http.StatusBadRequest)
			return
		}
		res, err := resolver.Resolve(conn, code)
		if err != nil {
			zap.L().Error("resolve failed", zap.String("code", code), zap.Error(err))
			http.Error(w, "failed to resolve code", http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	}
}

// ScanBurstHandler accepts one burst of frame-decode events from a
// scanning client, suppresses duplicates within the throttle window and
// resolves what remains.
func ScanBurstHandler(conn *sqlx.DB, throttleMs int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Codes []string `json:"codes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		ch := make(chan string, len(req.Codes))
		for _, c := range req.Codes {
			ch <- c
		}
		close(ch)

		resolutions := []*resolver.Resolution{}
		var feedErr error
		scanner.Feed(ch, time.Duration(throttleMs)*time.Millisecond, func(code string) {
			if feedErr != nil {
				return
			}
			res, err := resolver.Resolve(conn, code)
			if err != nil {
				feedErr = err
				return
			}
			resolutions = append(resolutions, res)
		})
		if feedErr != nil {
			zap.L().Error("scan burst resolve failed", zap.Error(feedErr))
			http.Error(w, "failed to resolve scan", http.StatusInternalServerError)
			return
		}
		writeJSON(w, resolutions)
	}
}

func AddPlainHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reconcile.PlainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		out, err := reconcile.AddPlain(conn, req)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

func ResolvePlainConflictHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			reconcile.PlainRequest
			Choice reconcile.Choice `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		out, err := reconcile.ResolvePlainConflict(conn, req.PlainRequest, req.Choice)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

func AddExpiryHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reconcile.ExpiryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		out, err := reconcile.AddExpiry(conn, req)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

func ResolveSameDateHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			reconcile.ExpiryRequest
			Choice reconcile.Choice `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		out, err := reconcile.ResolveSameDateConflict(conn, req.ExpiryRequest, req.Choice)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

func ResolveCrossDateHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			reconcile.ExpiryRequest
			Choice reconcile.Choice `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		out, err := reconcile.ResolveCrossDateConflict(conn, req.ExpiryRequest, req.Choice)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

package export

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ExportSessionHandler streams the session workbook as an attachment.
func ExportSessionHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/api/sessions/export/")
		id, err := strconv.ParseInt(strings.TrimSuffix(raw, "/"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "session id is required", http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		res, err := WriteSession(conn, id, &buf)
		if err != nil {
			if errors.Is(err, ErrNoItems) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			zap.L().Error("export failed", zap.Int64("session", id), zap.Error(err))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
		if _, err := buf.WriteTo(w); err != nil {
			zap.L().Error("failed to stream workbook", zap.Int64("session", id), zap.Error(err))
		}
	}
}

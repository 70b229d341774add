// Package catalog exposes the article catalog: destructive spreadsheet
// import and the lookups the counting screens need.
package catalog

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stocktake/database"
	"stocktake/importer"
	"stocktake/metrics"
	"stocktake/parsers"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// ImportCatalogHandler replaces the whole catalog from an uploaded
// workbook or CSV. The replace is atomic; a bad file leaves the
// current catalog untouched.
func ImportCatalogHandler(conn *sqlx.DB, batchSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		var rows []importer.Row
		if strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			rows, err = parsers.ParseCatalogCSV(file)
		} else {
			rows, err = parsers.ParseCatalogXLSX(file)
		}
		if err != nil {
			http.Error(w, "failed to parse file: "+err.Error(), http.StatusBadRequest)
			return
		}

		total, err := importer.Import(conn, rows, batchSize)
		if err != nil {
			zap.L().Error("catalog import failed", zap.String("file", header.Filename), zap.Error(err))
			http.Error(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		metrics.ImportsTotal.Inc()
		writeJSON(w, map[string]int{"total": total})
	}
}

func GetArticleByCodeHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/articles/by_code/")
		if code == "" {
			http.Error(w, "code is required", http.StatusBadRequest)
			return
		}
		art, err := database.GetArticleByPrimaryCode(conn, code)
		if err != nil {
			http.Error(w, "failed to get article", http.StatusInternalServerError)
			return
		}
		if art == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, art)
	}
}

// SearchByInternalCodeHandler lists every article sharing an internal
// product code, for manual disambiguation when a PLU fans out to
// several pack sizes.
func SearchByInternalCodeHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plu := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/articles/by_plu/"))
		if plu == "" {
			http.Error(w, "plu is required", http.StatusBadRequest)
			return
		}
		arts, err := database.GetArticlesByInternalCode(conn, plu)
		if err != nil {
			http.Error(w, "failed to search articles", http.StatusInternalServerError)
			return
		}
		writeJSON(w, arts)
	}
}

func CountArticlesHandler(conn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := database.CountArticles(conn)
		if err != nil {
			http.Error(w, "failed to count articles", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]int{"total": n})
	}
}

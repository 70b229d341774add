package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stocktake/catalog"
	"stocktake/config"
	"stocktake/count"
	"stocktake/export"
	"stocktake/session"
)

func SetupRoutes(mux *http.ServeMux, conn *sqlx.DB, cfg config.Config) {

	mux.HandleFunc("/api/catalog/import", catalog.ImportCatalogHandler(conn, cfg.Import.BatchSize))
	mux.HandleFunc("/api/catalog/count", catalog.CountArticlesHandler(conn))
	mux.HandleFunc("/api/articles/by_code/", catalog.GetArticleByCodeHandler(conn))
	mux.HandleFunc("/api/articles/by_plu/", catalog.SearchByInternalCodeHandler(conn))

	mux.HandleFunc("/api/resolve", count.ResolveHandler(conn))
	mux.HandleFunc("/api/scan", count.ScanBurstHandler(conn, cfg.Scanner.ThrottleMs))
	mux.HandleFunc("/api/count/plain", count.AddPlainHandler(conn))
	mux.HandleFunc("/api/count/plain/resolve", count.ResolvePlainConflictHandler(conn))
	mux.HandleFunc("/api/count/expiry", count.AddExpiryHandler(conn))
	mux.HandleFunc("/api/count/expiry/resolve_same_date", count.ResolveSameDateHandler(conn))
	mux.HandleFunc("/api/count/expiry/resolve_cross_date", count.ResolveCrossDateHandler(conn))

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			session.ListSessionsHandler(conn)(w, r)
		case http.MethodPost:
			session.CreateSessionHandler(conn)(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/sessions/update", session.UpdateSessionHandler(conn))
	mux.HandleFunc("/api/sessions/delete/", session.DeleteSessionHandler(conn))
	mux.HandleFunc("/api/sessions/items/", session.ListItemsHandler(conn))
	mux.HandleFunc("/api/sessions/plain_items/delete", session.DeletePlainItemHandler(conn))
	mux.HandleFunc("/api/sessions/expiry_items/delete/", session.DeleteExpiryItemHandler(conn))
	mux.HandleFunc("/api/sessions/export/", export.ExportSessionHandler(conn))
	mux.HandleFunc("/api/sessions/", session.GetSessionHandler(conn))

	mux.Handle("/metrics", promhttp.Handler())
}

package main

import (
	"net/http"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"stocktake/config"
	"stocktake/database"
)

func main() {
	cfg, err := config.Load("./stocktake.yaml")

	logger := newLogger(cfg.App.Env)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err != nil {
		logger.Warn("failed to load config file, using defaults", zap.Error(err))
	}

	conn, err := database.Open(cfg.DB.Path)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer conn.Close()

	if err := database.Migrate(conn); err != nil {
		logger.Fatal("database initialization failed", zap.Error(err))
	}
	logger.Info("database ready", zap.String("path", cfg.DB.Path))

	mux := http.NewServeMux()
	SetupRoutes(mux, conn, cfg)

	logger.Info("starting server", zap.String("addr", cfg.HTTP.Addr))
	if err := http.ListenAndServe(cfg.HTTP.Addr, mux); err != nil {
		logger.Fatal("server start error", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "dev" {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

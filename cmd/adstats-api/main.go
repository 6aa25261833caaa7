package main

import (
	"flag"

	"go.uber.org/zap"

	"go-ad-insights/internal/api"
	"go-ad-insights/internal/store"
	"go-ad-insights/pkg/router"
)

// @title Ad Insights API
// @version 1.0
// @description Descriptive statistics over social-media ad datasets
// @host localhost:8080
// @BasePath /api/v1
func main() {
	var (
		addr   = flag.String("addr", ":8080", "listen address")
		dbPath = flag.String("db", "adstats.db", "SQLite database path")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := store.InitDB(*dbPath); err != nil {
		log.Fatal("failed to init database", zap.Error(err))
	}

	r := router.New()
	api.RegisterRoutes(r, log)
	r.Start(*addr)
}

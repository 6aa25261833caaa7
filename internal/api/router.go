package api

import (
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "go-ad-insights/docs"
	"go-ad-insights/internal/api/handler"
	"go-ad-insights/pkg/router"
)

// RegisterRoutes wires the analysis API onto the router.
func RegisterRoutes(r *router.Router, log *zap.Logger) {
	h := handler.New(log)

	r.POST("/api/v1/analyses", h.CreateAnalysis)
	r.GET("/api/v1/analyses", h.ListAnalyses)
	// More specific routes first
	r.GET("/api/v1/analyses/*/report", h.GetAnalysisReport)
	r.GET("/api/v1/analyses/*/errors", h.GetAnalysisErrors)
	r.GET("/api/v1/analyses/*/logs", h.GetAnalysisLogs)
	// Generic analysis route last
	r.GET("/api/v1/analyses/*", h.GetAnalysis)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}

package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "aftermarket-report/docs"
	"aftermarket-report/internal/api/handler"
	"aftermarket-report/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.POST("/api/v1/reports", h.CreateReport)
	r.GET("/api/v1/reports/export", h.ExportReport)
	r.POST("/api/v1/reports/email", h.SendEmail)
	r.POST("/api/v1/selections", h.AppendSelection)
	r.GET("/api/v1/runs", h.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	// Generic run route last
	r.GET("/api/v1/runs/*", h.GetRun)

	r.Mount("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"payment-forecast/internal/adapter/http/middleware"
	"payment-forecast/internal/core/ports"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Forecast  ports.ForecastReader
	Merchants ports.MerchantDirectory
	Report    ports.IngestReport
	Logger    zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))

	r.GET("/health", HealthCheck)

	reportHandler := NewReportHandler(deps.Forecast, deps.Merchants, deps.Report)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/forecast", reportHandler.GetForecast)
	}

	r.GET("/report", reportHandler.GetReportPage)

	return r
}

// Package routes assembles the HTTP API served by fern serve.
package routes

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/recommendations"
	"github.com/Ramsey-B/fern/pkg/routes/reports"
	"github.com/Ramsey-B/fern/pkg/routes/seed"
	"github.com/Ramsey-B/fern/pkg/routes/similarity"
)

// Deps are the collaborators of the API. Reports is optional.
type Deps struct {
	AppName     string
	Service     *recommend.Service
	Projections []string
	Source      seed.Source
	Reports     reports.Repository
	Health      *health.Checker
	Logger      ectologger.Logger
}

// New builds the echo instance with middleware and every route group.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(d.Logger)

	e.Use(otelecho.Middleware(d.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(d.Logger))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if d.Health != nil {
		d.Health.RegisterRoutes(e)
	}

	api := e.Group("/api/v1")
	recommendations.NewHandler(d.Service).Register(api)
	similarity.NewHandler(d.Service, d.Projections).Register(api)
	seed.NewHandler(d.Service, d.Source).Register(api)
	if d.Reports != nil {
		reports.NewHandler(d.Reports).Register(api)
	}
	return e
}

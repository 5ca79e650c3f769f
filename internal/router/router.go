package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"transfers24/internal/handler"
	"transfers24/internal/handler/api"
	"transfers24/internal/middleware"
)

// Handlers bundles the HTTP handlers mounted by Setup.
type Handlers struct {
	Payment  *api.PaymentHandler
	Callback *handler.PaymentCallbackHandler
}

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	h Handlers,
	logger *zap.Logger,
	apiKey string,
	deduper middleware.CallbackDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORS())

	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))

	apiGroup.POST("/payments", h.Payment.Register)
	apiGroup.GET("/payments", h.Payment.List)
	apiGroup.GET("/payments/credentials", h.Payment.Credentials)
	apiGroup.GET("/payments/redirect/:token", h.Payment.Redirect)
	apiGroup.GET("/payments/:session", h.Payment.Session)

	// Gateway callback and customer return page, no auth.
	paymentGroup := e.Group("/payments")
	paymentGroup.POST("/status", h.Callback.Status, middleware.CallbackDedup(deduper))
	paymentGroup.GET("/return", h.Callback.Return)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

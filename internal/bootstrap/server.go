package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/oceanview/api"
	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/docs"
	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 10 * time.Second

// Handlers groups the REST handlers mounted under /api.
type Handlers struct {
	Catalog  *api.CatalogHandler
	Bookings *api.BookingHandler
	Payments *api.PaymentHandler
	Feedback *api.FeedbackHandler
	Users    *api.UserHandler
}

// HealthCheck probes one dependency for /health.
type HealthCheck func(ctx context.Context) error

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.LogProcess("SERVER", "listening on "+cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Warn("SHUTDOWN", "received shutdown signal, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter builds the gin engine with middleware, ops endpoints and the API,
// wrapped in the CORS handler.
func NewRouter(cfg *config.Config, h Handlers, issuer *auth.TokenIssuer, checks map[string]HealthCheck, log *logger.Logger) http.Handler {
	router := gin.New()
	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.SecurityHeaders(log))
	router.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst), log))

	router.GET("/health", healthHandler(checks))
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	if cfg.HTTP.SwaggerEnabled {
		router.GET("/swagger/*any", swaggerHandler())
	}

	requireAuth := auth.Required(issuer)
	optionalAuth := auth.Optional(issuer)

	apiGroup := router.Group("/api")
	h.Catalog.Register(apiGroup)
	h.Bookings.Register(apiGroup, requireAuth)
	h.Payments.Register(apiGroup, requireAuth)
	h.Feedback.Register(apiGroup, requireAuth, optionalAuth)
	h.Users.Register(apiGroup, requireAuth)

	return corsHandler(cfg.HTTP.CORSOrigins).Handler(router)
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
	})
}

// healthHandler reports 503 when any dependency check fails.
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"timestamp":    time.Now().UTC(),
			"service":      "oceanview",
			"dependencies": deps,
		})
	}
}

// swaggerHandler serves the embedded OpenAPI document as doc.json and the
// Swagger UI for everything else under /swagger.
func swaggerHandler() gin.HandlerFunc {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", docs.OpenAPI)
			return
		}
		ui.ServeHTTP(c.Writer, c.Request)
	}
}

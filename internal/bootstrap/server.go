package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/api"
	"evcharge/config"
	"evcharge/internal/auth"
)

// Handlers collects everything the HTTP surface mounts.
type Handlers struct {
	Auth         *api.AuthHandler
	Stations     *api.StationHandler
	Availability *api.AvailabilityHandler
	Bookings     *api.BookingHandler
	Reviews      *api.ReviewHandler
	Payments     *api.PaymentHandler
	RealStations *api.RealStationHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, tokens *auth.TokenService, handlers Handlers, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(tokens, handlers, logger),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(tokens *auth.TokenService, handlers Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	root := router.Group("/api")

	handlers.Auth.Register(root.Group("/auth"))
	handlers.Stations.Register(root.Group("/stations"))
	handlers.Availability.Register(root.Group("/availability"))
	handlers.RealStations.Register(root.Group("/real-stations"))

	authed := root.Group("")
	authed.Use(api.AuthMiddleware(tokens))
	handlers.Bookings.Register(authed.Group("/bookings"))
	handlers.Bookings.RegisterUserRoutes(authed.Group("/users"))
	handlers.Reviews.Register(authed.Group("/reviews"))
	handlers.Payments.Register(authed.Group("/payments"))

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

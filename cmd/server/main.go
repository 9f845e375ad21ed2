package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ferredex/quote-service/config"
	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/geocode"
	"github.com/ferredex/quote-service/internal/handlers"
	"github.com/ferredex/quote-service/internal/middleware"
	"github.com/ferredex/quote-service/internal/quote"
	"github.com/ferredex/quote-service/internal/session"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting quote service")

	store := catalog.NewStore(cfg.Catalog.Path)
	if _, err := store.Reload(); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
	}

	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:           cfg.Geocoder.BaseURL,
		UserAgent:         cfg.Geocoder.UserAgent,
		Timeout:           cfg.Geocoder.Timeout,
		MaxRetries:        cfg.Geocoder.MaxRetries,
		FallbackSuffixes:  cfg.Geocoder.FallbackSuffixes,
		RequestsPerSecond: cfg.Geocoder.RequestsPerSecond,
	})

	defaultLocation := quote.Location{
		Latitude:  cfg.Quote.DefaultLatitude,
		Longitude: cfg.Quote.DefaultLongitude,
	}
	sessionMgr := session.NewManager(session.Limits{
		DefaultRadiusKm: cfg.Quote.DefaultRadiusKm,
		MinRadiusKm:     cfg.Quote.MinRadiusKm,
		MaxRadiusKm:     cfg.Quote.MaxRadiusKm,
		DefaultLocation: defaultLocation,
	}, cfg.Session.IdleTTL)

	handlers.Init(store, quote.NewEngine(), geocoder, sessionMgr, handlers.QuoteSettings{
		DefaultRadiusKm: cfg.Quote.DefaultRadiusKm,
		MinRadiusKm:     cfg.Quote.MinRadiusKm,
		MaxRadiusKm:     cfg.Quote.MaxRadiusKm,
		TopN:            cfg.Quote.TopN,
		DefaultLocation: defaultLocation,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweepSessions(ctx, sessionMgr, cfg.Session.SweepInterval, logger)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	}))
	{
		cat := api.Group("/catalog")
		{
			cat.GET("/products", handlers.ListProducts)
			cat.GET("/categories", handlers.ListCategories)
			cat.GET("/brands", handlers.ListBrands)
			cat.GET("/stores", handlers.ListStores)
			cat.POST("/reload", handlers.ReloadCatalog)
		}

		api.POST("/quotes", handlers.CreateQuote)
		api.POST("/quotes/export/pdf", handlers.ExportPDF)
		api.POST("/quotes/export/csv", handlers.ExportCSV)

		geo := api.Group("/geocode")
		{
			geo.GET("/search", handlers.GeocodeSearch)
			geo.GET("/reverse", handlers.GeocodeReverse)
		}

		sessionsGroup := api.Group("/sessions")
		{
			sessionsGroup.POST("", handlers.CreateSession)
			sessionsGroup.GET("/:sessionId", handlers.GetSession)
			sessionsGroup.PUT("/:sessionId/cart", handlers.UpdateCartItem)
			sessionsGroup.DELETE("/:sessionId/cart", handlers.ClearCart)
			sessionsGroup.PUT("/:sessionId/location", handlers.SetLocation)
			sessionsGroup.PUT("/:sessionId/radius", handlers.SetRadius)
			sessionsGroup.POST("/:sessionId/advance", handlers.AdvanceSession)
			sessionsGroup.POST("/:sessionId/back", handlers.BackSession)
			sessionsGroup.GET("/:sessionId/quotes", handlers.SessionQuotes)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func sweepSessions(ctx context.Context, mgr *session.Manager, interval time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := mgr.Sweep(); removed > 0 {
				logger.Debug().Int("removed", removed).Int("active", mgr.Len()).Msg("Swept idle sessions")
			}
		}
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "quote-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"carparkfinder/internal/config"
	"carparkfinder/internal/feed"
	"carparkfinder/internal/handler"
	"carparkfinder/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Carpark Finder")

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	feedTimeout := time.Duration(cfg.Feeds.TimeoutSeconds) * time.Second

	// Upstream availability feeds
	ltaClient := feed.NewLTAClient(cfg.Feeds.LTAAPIURL, cfg.Feeds.LTAAPIKey, feedTimeout, logger)
	if cfg.Feeds.LTAAPIKey == "" {
		logger.Warn("LTA_API_KEY is not set - transport feed requests will be rejected upstream")
	}

	hdbClient, err := feed.NewHDBClient(cfg.Feeds.DataGovAPIURL, cfg.Feeds.DataGovAPIKey, feedTimeout, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize housing feed: %v", err)
	}

	// Static lookup tables
	aliases, err := service.NewAliasTable(logger)
	if err != nil {
		logger.Fatalf("Failed to load search aliases: %v", err)
	}
	pricing, err := service.NewPricingResolver(logger)
	if err != nil {
		logger.Fatalf("Failed to load carpark rates: %v", err)
	}

	// Cost oracle
	oracle := service.NewAnthropicClient(&cfg.Anthropic, logger)
	if cfg.Anthropic.Enabled {
		logger.WithFields(logrus.Fields{
			"api_base": cfg.Anthropic.APIBase,
			"model":    cfg.Anthropic.Model,
		}).Info("Anthropic client initialized")
	} else {
		logger.Warn("Anthropic is disabled - cost estimation will return null costs")
		logger.Warn("Set ANTHROPIC_API_KEY environment variable to enable cost estimation")
	}

	estimator := service.NewCostEstimator(oracle, cfg.Estimator.MaxCarparks, cfg.Estimator.Workers, logger)

	carparkService := service.NewCarparkService(
		ltaClient, hdbClient,
		service.NewRanker(aliases, logger), pricing, estimator,
		cfg.Fusion.InterleaveA, cfg.Fusion.InterleaveB, cfg.Search.MaxResults,
		logger,
	)

	logger.Info("Services initialized")

	// Initialize handlers
	carparkHandler := handler.NewCarparkHandler(carparkService)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "carpark-finder",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/carparks", carparkHandler.Search)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("addr", addr).Info("Starting server")

	go func() {
		if err := router.Run(addr); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

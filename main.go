package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"pnodewatch/analytics"
	"pnodewatch/config"
	"pnodewatch/handlers"
	"pnodewatch/middleware"
	"pnodewatch/services"
	"pnodewatch/utils"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("=== Configuration ===")
	log.Printf("Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("pRPC: %s", cfg.PRPC.Endpoint)
	log.Printf("Redis: %s", cfg.Redis.Address)
	log.Printf("MongoDB: %s", cfg.MongoDB.Database)

	// 2. Core Services - Initialize
	geo, err := utils.NewGeoResolver(cfg.GeoIP.DBPath)
	if err != nil {
		log.Printf("⚠️  GeoIP DB not found at %s: %v", cfg.GeoIP.DBPath, err)
	}
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg)
	if err != nil {
		log.Printf("⚠️  MongoDB connection failed: %v", err)
		log.Println("Trend persistence will be disabled")
		mongoService = nil
	}
	if mongoService != nil {
		defer mongoService.Close()
	}

	discordBot, err := services.NewDiscordBotService(cfg.Discord.BotToken, cfg.Discord.ChannelID)
	if err != nil {
		log.Printf("⚠️  Discord bot initialization failed: %v", err)
		log.Println("Discord notifications will be disabled")
		discordBot = nil
	} else if discordBot.Enabled() {
		defer discordBot.Close()
		log.Println("✓ Discord Bot connected")
	}

	prpc := services.NewPRPCClient(cfg)

	// 3. Analytics pipeline
	versions := &utils.VersionConfig{
		CurrentStable: cfg.Versions.CurrentStable,
		MinSupported:  cfg.Versions.MinSupported,
		Deprecated:    cfg.Versions.Deprecated,
	}

	var persist analytics.HistoryPersistence
	var redisHistory *services.RedisHistoryStore
	if cfg.Redis.Enabled {
		redisHistory = services.NewRedisHistoryStore(cfg)
		persist = redisHistory
		defer redisHistory.Close()
	}

	store := analytics.NewHistoryStore(persist)
	engine := analytics.NewEngine(store, analytics.NewHistoryDetector())
	threshold := analytics.NewThresholdDetector(versions)

	cache := services.NewCacheService(cfg)
	alertService := services.NewAlertService(mongoService, discordBot, cfg.Alerts.WebhookURL, cfg.AlertDedupWindow())
	historyService := services.NewHistoryService(cache, mongoService, cfg.SnapshotIntervalDuration())
	poller := services.NewPoller(cfg, prpc, geo, engine, threshold, cache, alertService)

	// 4. Start background services
	log.Println("=== Starting Services ===")

	cache.Start()
	log.Println("✓ Cache Service started")
	log.Printf("   Mode: %s", cache.GetCacheMode())

	poller.Start()
	log.Println("✓ Poller started")

	historyService.Start()
	log.Println("✓ History Service started")

	log.Println("=== All Services Running ===")

	// 5. Web Server Setup
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerMiddleware())
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic: %v", r)
					c.Error(fmt.Errorf("internal server error"))
				}
			}()
			return next(c)
		}
	})

	// 6. Handlers
	h := handlers.NewHandler(cfg, cache, prpc)
	analyticsHandlers := handlers.NewAnalyticsHandlers(cache)
	alertHandlers := handlers.NewAlertHandlers(alertService)
	historyHandlers := handlers.NewHistoryHandlers(historyService)
	cacheHandlers := handlers.NewCacheHandlers(cache)

	// 7. Routes
	e.GET("/health", h.GetHealth)
	e.GET("/cache/status", cacheHandlers.GetCacheStatus)
	e.POST("/cache/clear", cacheHandlers.ClearCache)

	api := e.Group("/api")

	api.GET("/status", h.GetStatus)
	api.GET("/nodes", h.GetNodes)
	api.GET("/nodes/:id", h.GetNode)
	api.GET("/stats", h.GetStats)
	api.POST("/rpc", h.ProxyRPC)

	api.GET("/health-scores", analyticsHandlers.GetHealthScores)
	api.GET("/health-scores/:id", analyticsHandlers.GetNodeHealth)
	api.GET("/anomalies", analyticsHandlers.GetAnomalies)
	api.GET("/anomalies/:id", analyticsHandlers.GetNodeAnomalies)
	api.GET("/risk-scores", analyticsHandlers.GetRiskScores)
	api.GET("/risk-scores/:id", analyticsHandlers.GetNodeRisk)

	alerts := api.Group("/alerts")
	alerts.GET("", alertHandlers.ListAlerts)
	alerts.GET("/history", alertHandlers.GetAlertHistory)
	alerts.GET("/:id", alertHandlers.GetAlert)
	alerts.POST("/:id/acknowledge", alertHandlers.AcknowledgeAlert)
	alerts.POST("/:id/resolve", alertHandlers.ResolveAlert)

	history := api.Group("/history")
	history.GET("/network", historyHandlers.GetNetworkHistory)
	history.GET("/nodes/:id", historyHandlers.GetNodeTrend)
	history.GET("/latency-distribution", historyHandlers.GetLatencyDistribution)

	// 8. Start HTTP Server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		log.Printf("🚀 Server running on http://%s", serverAddr)
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("shutting down the server: %v", err)
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Graceful shutdown initiated...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Stopping services...")
	historyService.Stop()
	poller.Stop()
	cache.Stop()
	log.Println("✓ All services stopped")

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	log.Println("✓ Server exited cleanly")
}

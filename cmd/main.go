package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"dooh/docs/swagger"
	"dooh/internal/api"
	"dooh/internal/config"
	"dooh/internal/db"
	"dooh/internal/events"
	"dooh/internal/repository"
	"dooh/internal/services"
	"dooh/internal/session"
	"dooh/internal/storage"
	"dooh/internal/tasks"
	"dooh/internal/tasks/rate"
	"dooh/internal/utils/logger"
)

// @title DOOH Marketplace API
// @version 1.0
// @description Screen marketplace: advertisers run campaigns and book time on screens listed by owners.
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	console := logger.New("dooh")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		console.Info("No .env file found, skipping environment variable loading")
	} else {
		console.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			console.Error("Failed to close database connection", err)
		}
	}()
	gormDB := db.GetDB()

	pool, err := db.NewPool(ctx, cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to open analytics pool: %v", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	var uploadsDir string
	if local, ok := store.(*storage.LocalStorage); ok {
		uploadsDir = local.Dir()
	}

	// Repositories
	users := repository.NewUserRepository(gormDB)
	audit := repository.NewAuthAuditRepository(gormDB)
	profiles := repository.NewProfileRepository(gormDB)
	screens := repository.NewScreenRepository(gormDB)
	campaigns := repository.NewCampaignRepository(gormDB)
	creatives := repository.NewCreativeRepository(gormDB)
	bookings := repository.NewBookingRepository(gormDB)
	notifications := repository.NewNotificationRepository(gormDB)
	stats := repository.NewStatsRepository(pool)

	bus := events.Default()
	limiter := rate.NewQueueRateLimiter(rdb, rate.QueueConfig{
		Name:      "bookings",
		RateLimit: rate.RateLimit{Window: cfg.Booking.RateWindow, MaxJobs: cfg.Booking.RateMax},
	})

	// Services
	resolver := services.NewProfileResolver(profiles, services.RoleSyncPolicy(cfg.Profile.RoleSync))
	authService := services.NewAuthService(users, audit, profiles, resolver, session.NewRedisStore(rdb), cfg.JWT.Secret, cfg.Session.TTL)
	analytics := services.NewAnalyticsService(stats, repository.NewRedisCache(rdb), cfg.Analytics.CacheTTL)

	// Background tasks
	taskClient := tasks.NewTaskClient(cfg.Redis)
	defer taskClient.Close()
	tasks.ListenBookingEvents(bus, taskClient)
	tasks.LogLifecycleEvents(bus)

	taskServer := tasks.NewServer(cfg.Redis, cfg.Worker, tasks.NewTaskHandler(notifications, analytics))
	if err := taskServer.Start(ctx); err != nil {
		log.Fatalf("Failed to start task server: %v", err)
	}

	taskScheduler := tasks.NewScheduler(cfg.Redis, cfg.Analytics)
	if err := taskScheduler.Start(); err != nil {
		log.Fatalf("Failed to start task scheduler: %v", err)
	}
	if err := taskClient.EnqueueAnalyticsRefresh(ctx); err != nil {
		console.Warn("Initial analytics refresh not queued: %v", err)
	}

	swagger.SwaggerInfo.Title = "DOOH Marketplace API"
	swagger.SwaggerInfo.Description = "Screen marketplace: advertisers run campaigns and book time on screens listed by owners."
	swagger.SwaggerInfo.Version = "1.0"
	swagger.SwaggerInfo.BasePath = "/api/v1"

	apiServer := api.NewServer(cfg, gormDB, api.Dependencies{
		Auth:       authService,
		Campaigns:  services.NewCampaignService(campaigns, creatives, store),
		Screens:    services.NewScreenService(screens),
		Discovery:  services.NewDiscoveryService(screens),
		Bookings:   services.NewBookingService(bookings, campaigns, screens, limiter, bus),
		Analytics:  analytics,
		UploadsDir: uploadsDir,
	})
	go func() {
		console.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			console.Warn("API server stopped: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		console.Error("Failed to shutdown API server", err)
	}

	// In-flight event handlers may still enqueue notifications.
	bus.Wait()
	taskScheduler.Stop()
	taskServer.Shutdown()
	stop()

	console.Info("Servers shutdown gracefully")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/randomizer-api/internal/config"
	"github.com/yourusername/randomizer-api/internal/handler"
	"github.com/yourusername/randomizer-api/internal/middleware"
	pgRepo "github.com/yourusername/randomizer-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/randomizer-api/internal/repository/redis"
	"github.com/yourusername/randomizer-api/internal/service"
	ws "github.com/yourusername/randomizer-api/internal/websocket"
	"github.com/yourusername/randomizer-api/pkg/database"
)

const sessionEvictionInterval = time.Minute

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.LogLevel)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db, cfg.Database.MigrationsDir); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	qualificationRepo := pgRepo.NewQualificationRepo(db)
	randomizationRepo := pgRepo.NewRandomizationRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- WebSocket ---
	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	if cfg.WebSocket.Cluster.Enabled {
		redisProvider, errProv := ws.NewRedisPubSub(redisClient)
		if errProv != nil {
			log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Кластеризация WS будет неактивна.", errProv)
		} else {
			pubSubProvider = redisProvider
		}
	}
	wsHub := ws.NewHub()
	clusterHub := ws.NewClusterHub(wsHub, cfg.WebSocket.Cluster, pubSubProvider)
	wsManager := ws.NewManager(wsHub, clusterHub)

	// Сервисы
	questionService := service.NewQuestionService(questionRepo, categoryRepo, qualificationRepo, cacheRepo, cfg.Randomization.CatalogCacheTTL)
	categoryService := service.NewCategoryService(categoryRepo, questionRepo, cacheRepo)
	qualificationService := service.NewQualificationService(qualificationRepo, questionRepo, cacheRepo)
	randomizationService := service.NewRandomizationService(randomizationRepo, questionService, wsManager, service.RandomizationConfig{
		GatewayTimeout:     cfg.Randomization.GatewayTimeout,
		SessionIdleTimeout: cfg.Randomization.SessionIdleTimeout,
	})

	// Изменения каталога согласуют списки рандомизации
	questionService.SetEvents(randomizationService)
	categoryService.SetEvents(randomizationService)

	// Остальные инстансы перечитывают сессию пользователя после изменения каталога
	randomizationService.SetCluster(clusterHub)
	clusterHub.Handle(service.CatalogChangedMessage, randomizationService.HandleCatalogChanged)
	if err := clusterHub.Start(); err != nil {
		log.Printf("Failed to start WebSocket cluster hub: %v", err)
		os.Exit(1)
	}

	go randomizationService.RunEviction(ctx, sessionEvictionInterval)

	// Роутер
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes := handler.Routes{
		Randomization: handler.NewRandomizationHandler(randomizationService),
		Catalog:       handler.NewCatalogHandler(questionService, categoryService, qualificationService),
		WS:            handler.NewWSHandler(wsManager, ws.ClientConfigFrom(cfg.WebSocket), cfg.Server.AllowedOrigins),
	}
	if cfg.RateLimit.Enabled {
		limitCfg := middleware.DefaultAPIRateLimitConfig()
		if cfg.RateLimit.MaxRequests > 0 {
			limitCfg.MaxRequests = cfg.RateLimit.MaxRequests
		}
		if cfg.RateLimit.WindowSec > 0 {
			limitCfg.Window = time.Duration(cfg.RateLimit.WindowSec) * time.Second
		}
		routes.RateLimit = middleware.NewRateLimiter(redisClient).LimitByUser(limitCfg)
	}
	routes.Register(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	clusterHub.Stop()
	wsHub.Close()
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server exited properly")
}

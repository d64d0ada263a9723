package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"

	"speecheval/config"
	"speecheval/controllers"
	"speecheval/db"
	"speecheval/internal/events"
	"speecheval/metrics"
	"speecheval/middlewares"
	"speecheval/routes"
	"speecheval/services"
	"speecheval/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultConfigPath = "./config/config.yml"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			configPath = ""
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLevel(cfg.Log.Level)
	if configPath == "" {
		utils.Warn("no config file found, using defaults and environment", "path", defaultConfigPath)
	}

	var store db.EvaluationStore
	if cfg.Database.URI != "" {
		client, database, err := db.ConnectMongoDB(context.Background(), cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())
		store = db.NewMongoEvaluationStore(database.Collection(cfg.Database.Collection))
		utils.Info("connected to MongoDB", "collection", cfg.Database.Collection)
	} else {
		store = db.NewMemoryEvaluationStore()
		utils.Warn("database.uri is empty, evaluations are kept in memory only")
	}

	registry := services.NewRegistry(cfg.Vendors)
	m := metrics.New()
	ac := controllers.NewAssessmentController(registry, store).WithMetrics(m)

	if cfg.Redis.Addr != "" {
		rdb, err := events.ConnectRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		ac.WithPublisher(events.NewRedisPublisher(rdb, events.WithStream(cfg.Redis.Stream)))
		utils.Info("publishing evaluation events", "stream", cfg.Redis.Stream)
	}

	router := setupRouter(cfg, ac, m)
	port := strconv.Itoa(cfg.Server.Port)
	utils.Info("server starting", "port", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, ac *controllers.AssessmentController, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger())
	router.MaxMultipartMemory = 32 << 20

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	routes.SetupAssessmentRoutes(router, ac)
	routes.SetupMetricsRoute(router, m)
	return router
}

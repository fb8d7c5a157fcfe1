package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/api/handlers"
	"github.com/cmap-scaffold/backend/internal/dialogue"
	"github.com/cmap-scaffold/backend/internal/llm"
	"github.com/cmap-scaffold/backend/internal/metrics"
	"github.com/cmap-scaffold/backend/internal/scaffold"
	"github.com/cmap-scaffold/backend/internal/session"
	"github.com/cmap-scaffold/backend/internal/storage/sqlite"
	"github.com/cmap-scaffold/backend/pkg/config"
	appLogger "github.com/cmap-scaffold/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting concept-map scaffolding API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var generator llm.Generator
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		generator = llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.PrimaryModel,
			cfg.LLM.FallbackModel,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
			cfg.LLM.MaxRetries,
			cfg.LLM.TimeoutSec,
		)
	} else {
		appLogger.Warn("LLM generation disabled, conclusions will use template text only")
		generator = llm.NewDisabled()
	}

	enabled := make([]scaffold.Category, 0, len(cfg.Scaffolding.EnabledCategories))
	for _, name := range cfg.Scaffolding.EnabledCategories {
		category, err := scaffold.ParseCategory(name)
		if err != nil {
			appLogger.Fatal("Invalid scaffolding category in config", zap.String("category", name))
		}
		enabled = append(enabled, category)
	}

	baseWeights := make(map[scaffold.Category]float64)
	for name, weight := range cfg.Scaffolding.BaseWeights {
		category, err := scaffold.ParseCategory(name)
		if err != nil {
			appLogger.Fatal("Invalid scaffolding category in base weights", zap.String("category", name))
		}
		baseWeights[category] = weight
	}

	factory := func() *dialogue.Engine {
		return dialogue.NewEngine(generator, dialogue.Options{
			EnabledCategories:     enabled,
			BaseWeights:           baseWeights,
			PromptsPerInteraction: cfg.Scaffolding.PromptsPerInteraction,
			MaxRounds:             cfg.Scaffolding.MaxRounds,
			RandomSeed:            cfg.Scaffolding.RandomSeed,
		})
	}

	manager := session.NewManager[*dialogue.Engine]()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	sessionHandler := handlers.NewSessionHandler(manager, sqliteClient, factory)
	wsHandler := handlers.NewWebSocketHandler(manager)

	api := app.Group("/api/v1")

	api.Post("/sessions", sessionHandler.CreateSession)
	api.Get("/sessions/:id", sessionHandler.GetSessionState)
	api.Get("/sessions/:id/history", sessionHandler.GetHistory)
	api.Post("/sessions/:id/interactions", sessionHandler.ConductInteraction)
	api.Post("/sessions/:id/responses", sessionHandler.ProcessResponse)
	api.Post("/sessions/:id/conclude", sessionHandler.ConcludeInteraction)
	api.Get("/sessions/:id/effectiveness", sessionHandler.EvaluateEffectiveness)
	api.Delete("/sessions/:id", sessionHandler.CloseSession)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

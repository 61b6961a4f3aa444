// Command main is the entry point for the Silence Booster backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"silenceboost/internal/config"
	"silenceboost/internal/observability"
	"silenceboost/internal/server"

	"github.com/gofiber/fiber/v2"
)

// @title Silence Booster API
// @version 1.0
// @description Social feed personalization and meme war tournament API

// @contact.name API Support
// @contact.email support@silenceboost.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var tracingShutdown func(context.Context) error
	if cfg.TracingEnabled {
		tracingShutdown, err = observability.InitTracing(observability.TracingConfig{
			ServiceName:  "silenceboost-api",
			Enabled:      cfg.TracingEnabled,
			Exporter:     cfg.TracingExport,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.TracingSampler,
			Environment:  cfg.Env,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "Silence Booster API",
		BodyLimit: 10 * 1024 * 1024, // 10MB limit
	})

	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Wire websocket hub to Redis pub/sub
	wiringCtx, stopWiring := context.WithCancel(context.Background())
	defer stopWiring()
	if err := srv.StartHubWiring(wiringCtx); err != nil {
		log.Printf("Hub wiring failed (realtime notifications disabled): %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		stopWiring()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}

		if tracingShutdown != nil {
			if err := tracingShutdown(ctx); err != nil {
				log.Printf("Tracing shutdown error: %v", err)
			}
		}
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

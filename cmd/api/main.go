package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapdish/backend/config"
	"github.com/snapdish/backend/internal/server"
	"github.com/snapdish/backend/internal/service"
	"github.com/snapdish/backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	vision, err := service.NewVisionClient()
	if err != nil {
		log.Fatalf("Failed to create vision client: %v", err)
	}

	var s3Config *config.S3Config
	if cfg.S3Enabled {
		s3Config, err = config.NewS3Config(context.Background())
		if err != nil {
			log.Fatalf("Failed to configure S3 photo archive: %v", err)
		}
	}

	srv, err := server.New(cfg, st, vision, s3Config)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		log.Printf("Starting server on %s:%s...", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// openStore selects the durable store backend from configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := store.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		dsn := cfg.SQLitePath
		if cfg.DBDriver == "postgres" {
			dsn = cfg.PostgresDSN()
		}
		db, err := store.OpenGorm(cfg.DBDriver, dsn)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)
	}
}

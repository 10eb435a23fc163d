package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"socios/internal/app"
	"socios/internal/config"
	"socios/internal/services"
	"socios/internal/storage"
	"socios/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		db, err := app.OpenDatabase(cfg.Database)
		if err != nil {
			return err
		}
		if err := app.Migrate(db); err != nil {
			return err
		}

		blobs, err := storage.New(cmd.Context(), cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() {
			if err := storage.Close(blobs); err != nil {
				log.Printf("Error closing storage client: %v", err)
			}
		}()
		if err := blobs.EnsureBucket(cmd.Context()); err != nil {
			return fmt.Errorf("failed to prepare storage: %w", err)
		}

		var events services.EventPublisher
		if cfg.RabbitMQURL != "" {
			mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
			if err != nil {
				return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
			}
			defer mqClient.Close()
			events = mqClient
		} else {
			log.Println("RABBITMQ_URL not set, member events are not published")
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		server := app.New(cfg, app.Deps{
			DB:        db,
			Blobs:     blobs,
			Events:    events,
			Registry:  registry,
			AccessLog: true,
		})

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		listenErr := make(chan error, 1)
		go func() {
			log.Printf("Starting server on port %s", cfg.AppPort)
			listenErr <- server.Listen(cfg.AppPort)
		}()

		select {
		case err := <-listenErr:
			return fmt.Errorf("server failed: %w", err)
		case <-quit:
		}

		log.Println("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during Fiber shutdown: %v", err)
		}
		log.Println("Server gracefully stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

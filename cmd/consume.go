package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"socios/internal/config"
	"socios/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Logs member events from the " + rabbitmq.MemberEventsQueue + " queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required to consume events")
		}

		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()

		done, err := mqClient.ConsumeEvents(rabbitmq.HandleEventMessage)
		if err != nil {
			return err
		}
		log.Printf("Consuming %s, press Ctrl+C to stop", rabbitmq.MemberEventsQueue)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-quit:
			log.Println("Stopping consumer...")
		case <-done:
			return errors.New("RabbitMQ delivery channel closed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/notify"
)

// NewWorkerCmd runs only the RabbitMQ notification consumer.  It needs no
// database.
func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume reservation notifications from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.LoadWorker()
			log := logging.New(cfg.Env, cfg.LogLevel)
			c := notify.NewConsumer(cfg.RabbitURL, cfg.NotifyQueue, cfg.NotifyLogPath, log)
			log.Info().Str("queue", cfg.NotifyQueue).Str("file", cfg.NotifyLogPath).Msg("worker started")
			return c.Run(ctx)
		},
	}
}

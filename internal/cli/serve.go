package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/askd/internal/config"
	"github.com/harun/askd/internal/logger"
	"github.com/harun/askd/internal/metrics"
	"github.com/harun/askd/pkg/api"
	"github.com/harun/askd/pkg/history"
	"github.com/harun/askd/pkg/prompt"
	"github.com/harun/askd/pkg/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the askd HTTP server",
	Long: `Start the askd HTTP server in the foreground.
The server answers questions through the configured completion provider
and keeps per-session conversation history in memory.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	zlog := appLogger.GetZerolog()
	zlog.Info().Str("version", version).Msg("Starting askd")

	system, err := prompt.NewSystem(cfg.Prompt.SystemPromptFile, zlog)
	if err != nil {
		return fmt.Errorf("failed to load system prompt: %w", err)
	}
	if cfg.Prompt.SystemPromptFile != "" {
		if err := system.Watch(); err != nil {
			zlog.Warn().Err(err).Msg("System prompt file watch disabled")
		}
		defer system.Stop()
	}

	completions, err := provider.New(cfg.Provider, system)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}
	zlog.Info().Str("provider", completions.Name()).Msg("Completion provider ready")

	store := history.NewStore()
	m := metrics.NewMetrics()

	server, err := api.NewServer(api.ServerOptions{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, store, completions, m, zlog)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	scheduler, err := startMaintenance(cfg.Maintenance, store, m, zlog)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zlog.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	return server.Stop()
}

// startMaintenance schedules the periodic session stats job. An empty
// interval disables it.
func startMaintenance(cfg config.MaintenanceConfig, store *history.Store, m *metrics.Metrics, zlog zerolog.Logger) (*cron.Cron, error) {
	if cfg.StatsInterval == "" {
		return nil, nil
	}

	interval, err := time.ParseDuration(cfg.StatsInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance stats_interval %q: %w", cfg.StatsInterval, err)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		count := store.Count()
		m.SetActiveSessions(count)
		zlog.Info().
			Int("sessions", count).
			Strs("sessionIds", store.ListSessions()).
			Msg("Session stats")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	scheduler.Start()
	zlog.Debug().Str("interval", cfg.StatsInterval).Msg("Maintenance job scheduled")

	return scheduler, nil
}

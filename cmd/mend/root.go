package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/ai"
	"github.com/mendhq/mend/internal/approval"
	"github.com/mendhq/mend/internal/classifier"
	"github.com/mendhq/mend/internal/config"
	"github.com/mendhq/mend/internal/events"
	"github.com/mendhq/mend/internal/notify"
)

// Shared state built once per invocation in PersistentPreRunE
var (
	configPath string

	cfg        *config.Config
	logger     *slog.Logger
	eventLog   *events.Log
	engine     *classifier.Classifier
	dispatcher *notify.Dispatcher
	workflow   *approval.Workflow
)

var rootCmd = &cobra.Command{
	Use:   "mend",
	Short: "Error classification and gated automated code repair",
	Long: `mend classifies runtime errors, analyzes code for repair candidates,
and gates every automated repair behind a human approval workflow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger = newLogger(cfg.LogLevel)
		slog.SetDefault(logger)

		eventLog, err = events.OpenLog(cfg.EventDBPath)
		if err != nil {
			return err
		}

		engine = classifier.New(&classifier.Config{Logger: logger})

		registry := notify.NewRegistry()
		for _, channel := range cfg.Approval.Channels {
			if err := registerChannel(registry, channel); err != nil {
				return err
			}
		}

		dispatcher, err = notify.NewDispatcher(&notify.DispatcherConfig{
			Registry:          registry,
			Logger:            logger,
			PerChannelTimeout: cfg.Notify.PerChannelTimeout,
		})
		if err != nil {
			return err
		}

		workflow = approval.NewWorkflow(&approval.Config{
			Notifier: dispatcher,
			Logger:   logger,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if eventLog != nil {
			_ = eventLog.Close()
		}
	},
}

// registerChannel wires one configured channel name to its sender. Channels
// without transport settings fall back to a recording sender so a partially
// configured setup still exercises the full dispatch path.
func registerChannel(registry *notify.Registry, channel string) error {
	switch channel {
	case "email":
		if cfg.Notify.Email.Host == "" {
			logger.Warn("email channel has no smtp host, requests will not be delivered")
			registry.Register(notify.NewRecordingSender("email"))
			return nil
		}
		sender, err := notify.NewEmailSender(cfg.Notify.Email)
		if err != nil {
			return err
		}
		registry.Register(sender)
	case "webhook":
		if cfg.Notify.WebhookURL == "" {
			logger.Warn("webhook channel has no url, requests will not be delivered")
			registry.Register(notify.NewRecordingSender("webhook"))
			return nil
		}
		sender, err := notify.NewWebhookSender(&notify.WebhookConfig{URL: cfg.Notify.WebhookURL})
		if err != nil {
			return err
		}
		registry.Register(sender)
	default:
		logger.Warn("unknown channel in config, registering recorder", "channel", channel)
		registry.Register(notify.NewRecordingSender(channel))
	}
	return nil
}

// newAnalyzer builds the AI analyzer on demand; commands that never touch the
// API should not require ANTHROPIC_API_KEY.
func newAnalyzer() (*ai.Analyzer, error) {
	return ai.NewAnalyzer(&ai.Config{
		Model:         cfg.AI.Model,
		MaxConcurrent: cfg.AI.MaxConcurrent,
		Logger:        logger,
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mend.yaml", "Path to the configuration file")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netauto/internal/bootstrap"
	"netauto/internal/config"
	"netauto/internal/logger"
)

var (
	configPath string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:           "netautoctl",
	Short:         "Network automation assistant from the command line",
	Long:          `Ingest documentation, ask questions against it and validate device configs without running the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.toml or $CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_FILE", configPath); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

// openApp builds the full application. The CLI never needs the broker, so
// messages are written synchronously.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	cfg.RabbitMQ.URL = ""
	log := logger.New(logger.Options{
		FilePath:   cfg.Log.File,
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return bootstrap.NewWithConfig(ctx, cfg, log)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"netauto/internal/ai"
	"netauto/internal/logger"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed in Ollama",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		Timeout: time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
	}, logger.NewNop())

	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd, models)
	}
	for _, m := range models {
		marker := " "
		if m.Name == client.Model() {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, m.Name)
	}
	return nil
}

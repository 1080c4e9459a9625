package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Ollama and the vector store",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	llm := a.Ollama.HealthCheck(ctx)
	vectors := a.VectorStore.HealthCheck(ctx)
	if outputJSON {
		if err := printJSON(cmd, map[string]interface{}{"ollama": llm, "vectorstore": vectors}); err != nil {
			return err
		}
	} else {
		cmd.Printf("ollama:      %s %s\n", llm.Status, llm.Error)
		cmd.Printf("vectorstore: %s (%d documents, %s)\n", vectors.Status, vectors.CollectionStats.DocumentCount, vectors.CollectionStats.Backend)
	}
	if llm.Status != "healthy" || vectors.Status != "healthy" {
		return errors.New("one or more dependencies are unhealthy")
	}
	return nil
}

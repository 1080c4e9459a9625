package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"netauto/internal/app"
)

var (
	askK     int
	askModel string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "results", "n", 0, "number of context documents (default from config)")
	askCmd.Flags().StringVar(&askModel, "model", "", "override the configured Ollama model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.RAG.Answer(ctx, app.AnswerInput{
		Query: strings.Join(args, " "),
		K:     askK,
		Model: askModel,
	})
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd, result)
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	cmd.Println(result.Response)
	if len(result.ContextUsed) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, doc := range result.ContextUsed {
			cmd.Printf("  %s (similarity %.2f)\n", doc.ID, doc.Similarity)
		}
	}
	return nil
}

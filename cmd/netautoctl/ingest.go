package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"netauto/internal/app"
)

var ingestURL bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|url]...",
	Short: "Add documents to the knowledge base",
	Long: `Extracts text from each file (txt, md, pdf, csv, xlsx), chunks it and
stores the chunks in the vector store. With --url each argument is scraped
as a web page instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestURL, "url", false, "treat arguments as web pages to scrape")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	failed := 0
	for _, arg := range args {
		if ingestURL {
			res, err := a.Services.Documents.Scrape(ctx, arg)
			if err != nil {
				cmd.PrintErrf("%s: %v\n", arg, err)
				failed++
				continue
			}
			cmd.Println(res.Message)
			continue
		}
		if err := ingestFile(ctx, cmd, a.Services.Documents, arg); err != nil {
			cmd.PrintErrf("%s: %v\n", arg, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, docs *app.DocumentService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	record, err := docs.Upload(ctx, app.UploadInput{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Reader:   f,
	})
	if err != nil {
		return err
	}
	cmd.Printf("%s: %s (%d chunks)\n", path, record.Status, record.ChunkCount)
	return nil
}

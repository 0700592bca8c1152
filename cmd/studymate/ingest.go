package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestPreview int

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Process a document into chunks and store it in the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestPreview, "preview", 0, "print the first N chunks")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log, os.Stderr)

	doc, err := newPipeline(cfg, log).Process(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", doc.FileName)
	fmt.Fprintf(out, "Chunks:     %d (size %d)\n", doc.ChunkCount, doc.ChunkSize)
	fmt.Fprintf(out, "Characters: %d\n", doc.TotalLength)
	fmt.Fprintf(out, "Processed:  %s\n", doc.ProcessedTime.Format("2006-01-02 15:04:05"))
	for i := 0; i < ingestPreview && i < len(doc.Chunks); i++ {
		fmt.Fprintf(out, "\n--- chunk %d ---\n%s\n", i+1, doc.Chunks[i])
	}
	return nil
}

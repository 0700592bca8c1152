package main

import (
	"github.com/spf13/cobra"

	"studymate/internal/config"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "Study a document by chatting with a tutor grounded in its text",
	Long: `StudyMate loads a PDF, text or markdown document, splits it into chunks and
answers questions using the chunks most relevant to each question. It tracks
which parts of the document you have covered and can summarise the document
or suggest what to review.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/studymate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

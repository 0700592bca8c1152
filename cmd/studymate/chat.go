package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"studymate/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Open the interactive study chat",
	Long: `Open the terminal chat. If a file is given it is loaded on start.

Controls:
  Enter        - Send message (/load <path> loads a document)
  Ctrl+S       - Summarise the document
  Ctrl+R       - Review what you have read
  Ctrl+P       - Show progress
  PgUp/PgDown  - Scroll
  Ctrl+C       - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// the terminal belongs to the UI, so logs go to a file
	f, err := openLogFile(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	log := newLogger(cfg.Log, f)

	sess, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	m := tui.New(sess)
	if len(args) == 1 {
		m = m.StartWith(args[0])
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

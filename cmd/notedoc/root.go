package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shodgson/notedoc/internal/config"
	"github.com/shodgson/notedoc/internal/log"
)

var (
	configPath string
	debug      bool
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "notedoc",
	Short: "Normalize, convert and watch rich-text notes",
	Long: `notedoc works on the HTML notes written by the note editor.
It applies the editor's content normalization to files, converts notes to
Markdown, JSON or Notion blocks and back, and stores attachments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Set(debug)
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Flush()
	},
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "notedoc.yaml", "Path of the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

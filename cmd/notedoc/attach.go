package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/shodgson/notedoc/attachment"
	"github.com/shodgson/notedoc/internal/config"
	"github.com/shodgson/notedoc/internal/log"
)

var (
	attachDir     string
	attachBaseURL string
	attachList    string
)

var attachCmd = &cobra.Command{
	Use:   "attach <file>...",
	Short: "Store files as note attachments",
	Long: `Attach copies files into the attachment directory and prints the attachment
list of the note (given with --list) extended with their URLs. Files over the
size limit, or past the count limit, are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uploader := attachment.Dir{Root: attachDir, BaseURL: attachBaseURL}
		return attach(cmd.Context(), cfg, log.Get(), uploader, attachList, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
	attachCmd.Flags().StringVar(&attachDir, "dir", "attachments", "Directory storing the files")
	attachCmd.Flags().StringVar(&attachBaseURL, "base-url", "", "URL prefix of the stored files (file:// URLs when empty)")
	attachCmd.Flags().StringVar(&attachList, "list", "", "Current attachment list of the note")
}

// attach prints the new list even when some files failed, then returns the
// combined error.
func attach(ctx context.Context, cfg *config.Config, logger *zap.Logger, uploader attachment.Uploader, list string, paths []string, out io.Writer) error {
	files := make([]attachment.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrap(err, "failed to read attachment")
		}
		files = append(files, attachment.File{Name: filepath.Base(p), Data: data})
	}

	var raw *string
	if list != "" {
		raw = &list
	}
	m := attachment.NewManager(uploader, raw,
		attachment.WithLimits(cfg.Attachments.MaxCount, cfg.Attachments.MaxSize),
		attachment.WithLogger(logger),
		attachment.WithOnAttachmentChange(func(raw *string) {
			logger.Debug("attachment list changed", zap.Int("count", len(attachment.Decode(raw))))
		}),
	)
	addErr := m.Add(ctx, files)

	encoded := "null"
	e, err := attachment.Encode(m.List())
	if err != nil {
		return multierr.Append(addErr, err)
	}
	if e != nil {
		encoded = *e
	}
	if _, err := fmt.Fprintln(out, encoded); err != nil {
		return errors.WithStack(err)
	}
	return addErr
}

package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shodgson/notedoc/editor"
	"github.com/shodgson/notedoc/internal/log"
)

var watchDelay time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Normalize an HTML note every time it is saved",
	Long: `Watch normalizes the note once, then again each time it is written, after
the writes have been quiet for --delay (the auto-save delay by default).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delay := watchDelay
		if delay <= 0 {
			delay = cfg.AutoSaveDelay()
		}
		return watch(cmd.Context(), newNotes(cfg, log.Get()), args[0], delay)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDelay, "delay", 0, "Quiet time before normalizing")
}

// watch runs until ctx is done.
func watch(ctx context.Context, n *notes, path string, delay time.Duration) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()
	// Editors often save by replacing the file, which drops a watch on the
	// file itself.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filepath.Dir(target))
	}

	run := func() {
		changed, err := n.normalizeFile(target, true)
		if err != nil {
			n.logger.Warn("failed to normalize note", zap.String("path", target), zap.Error(err))
			return
		}
		if changed {
			n.logger.Info("normalized note", zap.String("path", target))
		}
	}
	debouncer := editor.NewDebouncer(delay, run)
	defer debouncer.Stop()

	n.logger.Info("watching note", zap.String("path", target), zap.Duration("delay", delay))
	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			n.logger.Debug("note changed", zap.Stringer("op", event.Op))
			debouncer.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			n.logger.Warn("watch error", zap.Error(err))
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shodgson/notedoc/internal/log"
)

var normalizeWrite bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize <glob>...",
	Short: "Normalize HTML notes",
	Long: `Normalize applies the editor's normalization to the HTML notes matching
the given patterns (** matches any number of directories). Without --write it
only lists the notes that would change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return normalizeFiles(cmd.Context(), newNotes(cfg, log.Get()), args, normalizeWrite, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().BoolVarP(&normalizeWrite, "write", "w", false, "Rewrite the notes that change")
}

// expand returns the sorted, unique files matching patterns. A pattern
// matching nothing is an error.
func expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no note matches %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func normalizeFiles(ctx context.Context, n *notes, patterns []string, write bool, out io.Writer) error {
	files, err := expand(patterns)
	if err != nil {
		return err
	}

	changed := make([]bool, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := n.normalizeFile(file, write)
			changed[i] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	verb := "would normalize"
	if write {
		verb = "normalized"
	}
	for i, file := range files {
		if changed[i] {
			fmt.Fprintf(out, "%s %s\n", verb, file)
		}
	}
	return nil
}

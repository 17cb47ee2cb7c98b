package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shodgson/notedoc/internal/log"
)

var importOutput string

var importCmd = &cobra.Command{
	Use:   "import <file.md|file.json>",
	Short: "Convert Markdown or document JSON to an HTML note",
	Long: `Import reads a Markdown file (task markers become checkboxes) or a document
JSON export, normalizes it and writes the HTML note to stdout or --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := importNote(newNotes(cfg, log.Get()), args[0])
		if err != nil {
			return err
		}
		if importOutput != "" {
			return errors.Wrap(os.WriteFile(importOutput, []byte(html+"\n"), 0o644), "failed to write note")
		}
		_, err = io.WriteString(cmd.OutOrStdout(), html+"\n")
		return errors.WithStack(err)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Write the note to this file")
}

func importNote(n *notes, path string) (string, error) {
	doc, err := n.load(path)
	if err != nil {
		return "", err
	}
	return n.render(doc)
}

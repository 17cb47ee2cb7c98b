package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shodgson/notedoc/internal/log"
	"github.com/shodgson/notedoc/markdown"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/notion"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert a note to Markdown, JSON, Notion blocks or HTML",
	Long: `Export reads a note (HTML, or Markdown and JSON by extension), normalizes it
and writes it to stdout in the requested format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := newNotes(cfg, log.Get())
		doc, err := n.load(args[0])
		if err != nil {
			return err
		}
		return export(n, doc, exportFormat, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: markdown, json, notion or html")
}

func export(n *notes, doc *model.Node, format string, out io.Writer) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(out, markdown.DefaultSerializer.Serialize(doc)+"\n")
		return errors.WithStack(err)
	case "json":
		return encodeJSON(out, doc.ToJSON())
	case "notion":
		return encodeJSON(out, notion.Export(doc))
	case "html":
		html, err := n.render(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html+"\n")
		return errors.WithStack(err)
	}
	return errors.Errorf("unknown format %q", format)
}

func encodeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "failed to encode JSON")
}

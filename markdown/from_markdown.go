package markdown

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/shodgson/notedoc/model"
)

// Raw HTML is let through: the document parser only keeps what the schema
// knows, the same way it does for pasted HTML.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// ToHTML converts Markdown source to HTML. Code blocks lose the newline
// ending their last line.
func ToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(src, &buf); err != nil {
		return "", errors.Wrap(err, "failed to convert markdown")
	}
	return strings.ReplaceAll(buf.String(), "\n</code></pre>", "</code></pre>"), nil
}

// Parse reads Markdown source into a document of schema. Task markers are
// left as text; the checkbox normalizer turns them into checkboxes.
func Parse(schema *model.Schema, src []byte) (*model.Node, error) {
	out, err := ToHTML(src)
	if err != nil {
		return nil, err
	}
	doc, err := model.DOMParserFromSchema(schema).Parse(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse converted markdown")
	}
	return doc, nil
}

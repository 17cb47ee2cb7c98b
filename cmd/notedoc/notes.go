package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shodgson/notedoc/internal/config"
	"github.com/shodgson/notedoc/markdown"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/normalize"
	"github.com/shodgson/notedoc/schema/note"
)

// notes reads note files, normalizes them and renders them as HTML.
type notes struct {
	schema     *model.Schema
	parser     *model.DOMParser
	serializer *model.DOMSerializer
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

func newNotes(cfg *config.Config, logger *zap.Logger) *notes {
	return &notes{
		schema:     note.Schema,
		parser:     model.DOMParserFromSchema(note.Schema),
		serializer: model.DOMSerializerFromSchema(note.Schema),
		normalizer: normalize.New(cfg.Normalize(), normalize.WithLogger(logger), normalize.WithSchema(note.Schema)),
		logger:     logger,
	}
}

// load reads the note at path and normalizes it. The format follows the
// extension: .md and .markdown are Markdown, .json is the document JSON,
// anything else is HTML.
func (n *notes) load(path string) (*model.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read note")
	}

	var doc *model.Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		doc, err = markdown.Parse(n.schema, data)
	case ".json":
		var raw interface{}
		if err = json.Unmarshal(data, &raw); err == nil {
			doc, err = model.NodeFromJSON(n.schema, raw)
		}
	default:
		doc, err = n.parser.Parse(string(data))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return n.normalize(path, doc)
}

func (n *notes) normalize(path string, doc *model.Node) (*model.Node, error) {
	doc, err := n.normalizer.Normalize(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to normalize %s", path)
	}
	return doc, nil
}

func (n *notes) render(doc *model.Node) (string, error) {
	return n.serializer.RenderHTML(doc)
}

// normalizeFile normalizes the HTML note at path and tells whether that
// changed it. The file is rewritten only when write is set.
func (n *notes) normalizeFile(path string, write bool) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, "failed to read note")
	}
	doc, err := n.parser.Parse(string(src))
	if err != nil {
		return false, errors.Wrapf(err, "failed to parse %s", path)
	}
	if doc, err = n.normalize(path, doc); err != nil {
		return false, err
	}
	out, err := n.render(doc)
	if err != nil {
		return false, errors.Wrapf(err, "failed to render %s", path)
	}
	if out == strings.TrimRight(string(src), "\r\n") {
		n.logger.Debug("note is normalized", zap.String("path", path))
		return false, nil
	}
	if write {
		if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
			return false, errors.Wrapf(err, "failed to write %s", path)
		}
		n.logger.Debug("normalized note", zap.String("path", path))
	}
	return true, nil
}

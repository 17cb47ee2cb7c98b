// Package command maps the named editing commands of the toolbar and the
// keyboard shortcuts to the formatters. A command runs against a document and
// an explicit selection, and produces a single transform.
package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/format"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/normalize"
	"github.com/shodgson/notedoc/transform"
	"go.uber.org/zap"
)

// ErrUnknownCommand is returned by Execute for a name without handler.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs a command. value is the argument of the command, empty when
// it takes none.
type Handler func(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error)

// Dispatcher holds the command handlers by name.
type Dispatcher struct {
	schema     *model.Schema
	normalizer *normalize.Normalizer
	logger     *zap.Logger
	handlers   map[string]Handler
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher returns a dispatcher with the handlers of every built-in
// command. The normalizer sanitizes pasted HTML.
func NewDispatcher(schema *model.Schema, normalizer *normalize.Normalizer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		schema:     schema,
		normalizer: normalizer,
		handlers:   make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	d.Register("bold", toggle("strong"))
	d.Register("italic", toggle("em"))
	d.Register("underline", toggle("underline"))
	d.Register("strikeThrough", toggle("strike"))
	d.Register("code", toggle("code"))
	d.Register("formatBlock", formatBlock)
	d.Register("insertUnorderedList", list(false))
	d.Register("insertOrderedList", list(true))
	d.Register("justifyLeft", align("left"))
	d.Register("justifyCenter", align("center"))
	d.Register("justifyRight", align("right"))
	d.Register("justifyFull", align("justify"))
	d.Register("hiliteColor", highlight)
	d.Register("highlight", highlight)
	d.Register("insertHorizontalRule", d.insertRule)
	d.Register("insertImage", d.insertImage)
	d.Register("insertTable", d.insertTable)
	d.Register("insertText", insertText)
	d.Register("insertHTML", d.insertHTML)
	d.Register("delete", deleteBackward)
	d.Register("createLink", createLink)
	d.Register("unlink", unlink)
	d.Register("removeFormat", removeFormat)
	return d
}

// Register sets the handler of a command, replacing any previous one.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Has tells whether a handler is registered for the command.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Names returns the registered command names, sorted.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command on doc for the given selection. The
// selection is passed along as is: nothing between the caller and the
// formatter can lose it. The returned transform holds every step of the
// command, and may hold none. On error, no transform is returned and the
// document is left as it was.
func (d *Dispatcher) Execute(doc *model.Node, sel format.Selection, name, value string) (*transform.Transform, format.Selection, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, sel, errors.Wrap(ErrUnknownCommand, name)
	}
	tr := transform.New(doc)
	out, err := h(tr, sel.Clamp(doc), value)
	if err != nil {
		d.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		return nil, sel, errors.Wrapf(err, "command %s", name)
	}
	d.logger.Debug("command executed",
		zap.String("command", name),
		zap.Int("steps", len(tr.Steps)),
		zap.Stringer("selection", out),
	)
	return tr, out, nil
}

func toggle(mark string) Handler {
	return func(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
		return format.ToggleMark(tr, sel, mark)
	}
}

func list(ordered bool) Handler {
	return func(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
		return format.List(tr, sel, ordered)
	}
}

func align(direction string) Handler {
	return func(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
		return format.Align(tr, sel, direction)
	}
}

func highlight(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
	return format.Highlight(tr, sel)
}

// BlockLevel returns the heading level of a formatBlock value: 0 for "p",
// 1 to 6 for "h1" to "h6". Values may be wrapped in angle brackets.
func BlockLevel(value string) (int, error) {
	tag := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(value), "<"), ">"))
	if tag == "p" {
		return 0, nil
	}
	var level int
	if n, err := fmt.Sscanf(tag, "h%d", &level); err != nil || n != 1 || tag != fmt.Sprintf("h%d", level) || level < 1 || level > 6 {
		return 0, errors.Errorf("invalid block format %q", value)
	}
	return level, nil
}

func formatBlock(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	level, err := BlockLevel(value)
	if err != nil {
		return sel, err
	}
	return format.Heading(tr, sel, level)
}

func (d *Dispatcher) insertRule(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
	hr, err := d.schema.Node("horizontal_rule", nil, nil, nil)
	if err != nil {
		return sel, err
	}
	return format.InsertBlocks(tr, sel, model.FragmentFromArray([]*model.Node{hr}))
}

func (d *Dispatcher) insertImage(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	if value == "" {
		return sel, errors.New("missing image url")
	}
	img, err := d.schema.Node("image", model.Attrs{"src": value}, nil, nil)
	if err != nil {
		return sel, err
	}
	return format.InsertInline(tr, sel, img)
}

// TableSize parses a table size of the form "3x4", rows first. An empty
// value is a 3 by 3 table.
func TableSize(value string) (rows, cols int, err error) {
	if value == "" {
		return 3, 3, nil
	}
	n, err := fmt.Sscanf(strings.ToLower(value), "%dx%d", &rows, &cols)
	if err != nil || n != 2 || rows < 1 || cols < 1 {
		return 0, 0, errors.Errorf("invalid table size %q", value)
	}
	return rows, cols, nil
}

func (d *Dispatcher) insertTable(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	rows, cols, err := TableSize(value)
	if err != nil {
		return sel, err
	}
	table, err := format.NewTable(d.schema, rows, cols)
	if err != nil {
		return sel, err
	}
	return format.InsertBlocks(tr, sel, model.FragmentFromArray([]*model.Node{table}))
}

func insertText(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	return format.InsertText(tr, sel, value)
}

// insertHTML inserts pasted HTML. Structured HTML, and HTML of several
// blocks, is inserted as blocks; a single paragraph as inline content.
func (d *Dispatcher) insertHTML(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	frag, hasStructure, err := d.normalizer.Sanitize(value)
	if err != nil {
		return sel, err
	}
	if !hasStructure && frag.ChildCount() == 1 && frag.FirstChild().Type.Name == "paragraph" {
		return format.InsertInlineContent(tr, sel, frag.FirstChild().Content)
	}
	return format.InsertBlocks(tr, sel, frag)
}

func deleteBackward(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
	return format.DeleteBackward(tr, sel)
}

func createLink(tr *transform.Transform, sel format.Selection, value string) (format.Selection, error) {
	return format.SetLink(tr, sel, value)
}

func unlink(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
	return format.Unlink(tr, sel)
}

func removeFormat(tr *transform.Transform, sel format.Selection, _ string) (format.Selection, error) {
	return format.ClearMarks(tr, sel, "label")
}

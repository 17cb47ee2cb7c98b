// Package editor holds the editable surface of a note: it owns the document
// and the selection, applies the user's edits and commands, normalizes the
// result and notifies the host.
package editor

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shodgson/notedoc/command"
	"github.com/shodgson/notedoc/format"
	"github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/normalize"
	"github.com/shodgson/notedoc/schema/note"
	"github.com/shodgson/notedoc/transform"
	"go.uber.org/zap"
)

// DefaultAutoSaveDelay is the delay between the last change and the
// auto-save callback.
const DefaultAutoSaveDelay = 3 * time.Second

// Surface is an editable note. Its methods are safe for concurrent use. The
// callbacks run on the caller's goroutine, after the change is applied; they
// must not call back into the surface's edit methods.
type Surface struct {
	// action serializes the edits together with their notifications. mu
	// guards the state below.
	action sync.Mutex
	mu     sync.Mutex

	schema     *model.Schema
	parser     *model.DOMParser
	serializer *model.DOMSerializer
	normalizer *normalize.Normalizer
	dispatcher *command.Dispatcher
	keymap     *command.Keymap
	logger     *zap.Logger

	onChange        func(string)
	onContentUpdate func(string)
	onAutoSave      func()
	delay           time.Duration
	autosave        *Debouncer

	doc      *model.Node
	sel      format.Selection
	mounted  bool
	focused  bool
	editable bool
}

type Option func(*Surface)

// WithOnChange sets the callback receiving the HTML of the note after every
// change.
func WithOnChange(fn func(html string)) Option {
	return func(s *Surface) {
		s.onChange = fn
	}
}

// WithOnContentUpdate sets a second change callback, called right after the
// one of WithOnChange with the same HTML.
func WithOnContentUpdate(fn func(html string)) Option {
	return func(s *Surface) {
		s.onContentUpdate = fn
	}
}

// WithOnAutoSave enables auto-save: fn is called once the note went
// unchanged for the auto-save delay.
func WithOnAutoSave(fn func()) Option {
	return func(s *Surface) {
		s.onAutoSave = fn
	}
}

func WithAutoSaveDelay(delay time.Duration) Option {
	return func(s *Surface) {
		s.delay = delay
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Surface) {
		s.logger = logger
	}
}

func WithNormalizer(normalizer *normalize.Normalizer) Option {
	return func(s *Surface) {
		s.normalizer = normalizer
	}
}

// WithSchema sets the document schema. It defaults to the note schema.
func WithSchema(schema *model.Schema) Option {
	return func(s *Surface) {
		s.schema = schema
	}
}

// WithKeymap replaces the default keyboard shortcuts.
func WithKeymap(keymap *command.Keymap) Option {
	return func(s *Surface) {
		s.keymap = keymap
	}
}

// New returns a surface without document. Every edit is ignored until
// Initialize is called.
func New(opts ...Option) *Surface {
	s := &Surface{delay: DefaultAutoSaveDelay}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.schema == nil {
		s.schema = note.Schema
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New(normalize.DefaultConfig(),
			normalize.WithSchema(s.schema),
			normalize.WithLogger(s.logger))
	}
	if s.keymap == nil {
		s.keymap = command.DefaultKeymap()
	}
	s.parser = model.DOMParserFromSchema(s.schema)
	s.serializer = model.DOMSerializerFromSchema(s.schema)
	s.dispatcher = command.NewDispatcher(s.schema, s.normalizer, command.WithLogger(s.logger))
	if s.onAutoSave != nil {
		s.autosave = NewDebouncer(s.delay, s.onAutoSave)
	}
	return s
}

// Initialize installs the note given as HTML, replacing the current one. The
// cursor is put at the end of the note and the surface is focused. A pending
// auto-save of the previous note is dropped. Nothing is normalized and no
// callback is called.
func (s *Surface) Initialize(src string) error {
	s.action.Lock()
	defer s.action.Unlock()

	doc, err := s.parser.Parse(src)
	if err != nil {
		return errors.Wrap(err, "initialize note")
	}
	if s.autosave != nil {
		s.autosave.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.sel = format.Cursor(endOfContent(doc))
	s.mounted, s.focused, s.editable = true, true, true
	s.logger.Debug("note initialized", zap.Int("size", doc.Content.Size))
	return nil
}

// endOfContent returns the end of the last textblock of doc, or the end of
// doc when it has none.
func endOfContent(doc *model.Node) int {
	end := doc.Content.Size
	doc.Descendants(func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		if node.IsTextblock() {
			end = pos + 1 + node.Content.Size
			return false
		}
		return !node.IsInline()
	})
	return end
}

// SetSelection reports a selection change of the host. It focuses the
// surface. Positions are clamped to the document and moved out of grapheme
// clusters.
func (s *Surface) SetSelection(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return
	}
	s.sel = format.Selection{From: from, To: to}.Clamp(s.doc).Snap(s.doc)
	s.focused = true
}

// editFunc computes the transform of an edit from the current document and
// selection.
type editFunc func(doc *model.Node, sel format.Selection) (*transform.Transform, format.Selection, error)

func formatter(fn func(*transform.Transform, format.Selection) (format.Selection, error)) editFunc {
	return func(doc *model.Node, sel format.Selection) (*transform.Transform, format.Selection, error) {
		tr := transform.New(doc)
		out, err := fn(tr, sel)
		return tr, out, err
	}
}

// OnInput applies a user edit, normalizes the note, calls the change
// callbacks once each and restarts the auto-save delay. On error the note is
// left as it was.
func (s *Surface) OnInput(ev Input) error {
	var edit editFunc
	switch ev := ev.(type) {
	case InsertText:
		edit = formatter(func(tr *transform.Transform, sel format.Selection) (format.Selection, error) {
			return format.InsertText(tr, sel, ev.Text)
		})
	case DeleteBackward:
		edit = formatter(format.DeleteBackward)
	case Paste:
		if ev.HTML != "" {
			edit = func(doc *model.Node, sel format.Selection) (*transform.Transform, format.Selection, error) {
				return s.dispatcher.Execute(doc, sel, "insertHTML", ev.HTML)
			}
		} else {
			edit = formatter(func(tr *transform.Transform, sel format.Selection) (format.Selection, error) {
				return s.pasteText(tr, sel, ev.Text)
			})
		}
	case ToggleCheckbox:
		edit = formatter(func(tr *transform.Transform, sel format.Selection) (format.Selection, error) {
			return sel, format.ToggleCheckbox(tr, ev.Pos)
		})
	default:
		return errors.Errorf("unknown input %T", ev)
	}
	return s.run("input", true, edit)
}

// pasteText inserts plain text. Text of several lines is inserted as one
// paragraph per line.
func (s *Surface) pasteText(tr *transform.Transform, sel format.Selection, text string) (format.Selection, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 1 {
		return format.InsertText(tr, sel, text)
	}
	nodes := make([]*model.Node, 0, len(lines))
	for _, line := range lines {
		var content []*model.Node
		if line != "" {
			content = append(content, s.schema.Text(line))
		}
		p, err := s.schema.Node("paragraph", nil, content, nil)
		if err != nil {
			return sel, err
		}
		nodes = append(nodes, p)
	}
	return format.InsertBlocks(tr, sel, model.FragmentFromArray(nodes))
}

// OnBlur normalizes the note and calls the change callbacks, without
// restarting the auto-save delay.
func (s *Surface) OnBlur() error {
	if err := s.run("blur", false, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.focused = false
	s.mu.Unlock()
	return nil
}

// Execute runs a named command on the current selection, then normalizes
// and notifies like OnInput.
func (s *Surface) Execute(name, value string) error {
	return s.run(name, true, func(doc *model.Node, sel format.Selection) (*transform.Transform, format.Selection, error) {
		return s.dispatcher.Execute(doc, sel, name, value)
	})
}

// HandleKey runs the command bound to a key press. It reports whether the
// key press had a binding.
func (s *Surface) HandleKey(ev command.KeyEvent) (bool, error) {
	b, ok := s.keymap.Lookup(ev)
	if !ok {
		return false, nil
	}
	return true, s.Execute(b.Command, b.Value)
}

func (s *Surface) run(action string, autosave bool, edit editFunc) error {
	s.action.Lock()
	defer s.action.Unlock()

	html, ok, err := s.apply(action, edit)
	if err != nil || !ok {
		return err
	}
	if s.onChange != nil {
		s.onChange(html)
	}
	if s.onContentUpdate != nil {
		s.onContentUpdate(html)
	}
	if autosave && s.autosave != nil {
		s.autosave.Trigger()
	}
	return nil
}

// apply runs the edit and the normalization, and installs the result. ok is
// false when there is no note.
func (s *Surface) apply(action string, edit editFunc) (html string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("edit panicked", zap.String("action", action), zap.Any("panic", r))
			html, ok, err = "", false, errors.Errorf("%s: %v", action, r)
		}
	}()

	if !s.mounted {
		return "", false, nil
	}
	doc, sel := s.doc, s.sel
	if edit != nil {
		tr, out, err := edit(doc, sel)
		if err != nil {
			s.logger.Debug("edit failed", zap.String("action", action), zap.Error(err))
			return "", false, err
		}
		doc, sel = tr.Doc, out
	}
	s.editable = true

	normalized, err := s.normalizer.Normalize(doc)
	if err != nil {
		s.logger.Debug("normalization failed", zap.String("action", action), zap.Error(err))
		return "", false, err
	}
	sel = format.Selection{
		From: remapNormalized(doc, normalized, sel.From),
		To:   remapNormalized(doc, normalized, sel.To),
	}.Clamp(normalized).Snap(normalized)

	html, err = s.serializer.RenderHTML(normalized)
	if err != nil {
		return "", false, errors.Wrap(err, "render note")
	}
	s.doc, s.sel = normalized, sel
	s.logger.Debug("note changed", zap.String("action", action), zap.Stringer("selection", sel))
	return html, true, nil
}

// remapNormalized maps a position of before to after, its normalized
// version, through the range where they differ. Positions before the range
// hold, positions after it move with its end.
func remapNormalized(before, after *model.Node, pos int) int {
	start := before.Content.FindDiffStart(after.Content)
	if start == nil {
		return pos
	}
	end := before.Content.FindDiffEnd(after.Content)
	if end == nil {
		return pos
	}
	endA, endB := end.A, end.B
	if overlap := *start - minInt(endA, endB); overlap > 0 {
		endA += overlap
		endB += overlap
	}
	switch {
	case pos <= *start:
		return pos
	case pos >= endA:
		return pos + endB - endA
	case pos > endB:
		return endB
	}
	return pos
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// HTML returns the note as HTML, or an empty string before Initialize.
func (s *Surface) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return "", nil
	}
	return s.serializer.RenderHTML(s.doc)
}

// Doc returns the current document, nil before Initialize.
func (s *Surface) Doc() *model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Surface) Selection() format.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

func (s *Surface) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Editable tells whether the surface accepts edits. It is set by Initialize
// and asserted again by every edit.
func (s *Surface) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editable
}

// Close drops the pending auto-save. The note stays readable.
func (s *Surface) Close() {
	if s.autosave != nil {
		s.autosave.Stop()
	}
}

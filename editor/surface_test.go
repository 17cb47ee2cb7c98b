package editor_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shodgson/notedoc/command"
	"github.com/shodgson/notedoc/editor"
	"github.com/shodgson/notedoc/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder collects the callbacks of a surface.
type recorder struct {
	mu        sync.Mutex
	changes   []string
	updates   []string
	calls     []string
	autosaves []time.Time
}

func (r *recorder) options() []editor.Option {
	return []editor.Option{
		editor.WithOnChange(func(html string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.changes = append(r.changes, html)
			r.calls = append(r.calls, "change")
		}),
		editor.WithOnContentUpdate(func(html string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.updates = append(r.updates, html)
			r.calls = append(r.calls, "update")
		}),
	}
}

func (r *recorder) autoSave() editor.Option {
	return editor.WithOnAutoSave(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.autosaves = append(r.autosaves, time.Now())
	})
}

func (r *recorder) Changes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.changes...)
}

func (r *recorder) AutoSaves() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time{}, r.autosaves...)
}

func newSurface(t *testing.T, r *recorder, opts ...editor.Option) *editor.Surface {
	opts = append(append(r.options(), editor.WithLogger(zaptest.NewLogger(t))), opts...)
	s := editor.New(opts...)
	t.Cleanup(s.Close)
	return s
}

const (
	unchecked = `<input type="checkbox" contenteditable="false"/>`
	checked   = `<input type="checkbox" contenteditable="false" checked=""/>`
)

func TestEndToEnd(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)

	require.NoError(t, s.Initialize("<p>[ ] task one</p>"))
	assert.Empty(t, r.Changes())
	assert.True(t, s.Focused())
	assert.True(t, s.Editable())
	assert.Equal(t, format.Cursor(13), s.Selection())

	require.NoError(t, s.OnInput(editor.InsertText{Text: "!"}))

	expected := `<p>` + unchecked + `<span class="checkbox-label">task one!</span></p>`
	assert.Equal(t, []string{expected}, r.Changes())
	assert.Equal(t, []string{expected}, r.updates)
	assert.Equal(t, []string{"change", "update"}, r.calls)

	html, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, expected, html)

	p := s.Doc().FirstChild()
	require.Equal(t, 2, p.ChildCount())
	assert.Equal(t, "checkbox", p.FirstChild().Type.Name)
	assert.False(t, p.FirstChild().AttrBool("checked"))
	assert.Equal(t, "task one!", p.LastChild().TextContent())
	assert.Equal(t, format.Cursor(11), s.Selection())

	// typing goes on inside the label
	require.NoError(t, s.OnInput(editor.InsertText{Text: "?"}))
	assert.Equal(t, `<p>`+unchecked+`<span class="checkbox-label">task one!?</span></p>`, r.Changes()[1])
}

func TestCheckboxRoundTrip(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)

	require.NoError(t, s.Initialize("<p>[x] Buy milk</p>"))
	require.NoError(t, s.OnBlur())
	assert.False(t, s.Focused())
	assert.Equal(t, `<p>`+checked+`<span class="checkbox-label">Buy milk</span></p>`, r.Changes()[0])

	require.NoError(t, s.OnInput(editor.ToggleCheckbox{Pos: 1}))
	assert.Equal(t, `<p>`+unchecked+`<span class="checkbox-label">Buy milk</span></p>`, r.Changes()[1])

	require.NoError(t, s.OnInput(editor.ToggleCheckbox{Pos: 1}))
	assert.Equal(t, r.Changes()[0], r.Changes()[2])

	assert.Error(t, s.OnInput(editor.ToggleCheckbox{Pos: 3}))
	assert.Len(t, r.Changes(), 3)
}

func TestExecute(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)
	require.NoError(t, s.Initialize("<p>hello</p><p>world</p>"))

	s.SetSelection(1, 6)
	require.NoError(t, s.Execute("bold", ""))
	assert.Equal(t, []string{"<p><strong>hello</strong></p><p>world</p>"}, r.Changes())
	assert.Equal(t, format.Selection{From: 1, To: 6}, s.Selection())

	require.NoError(t, s.Execute("justifyCenter", ""))
	assert.Equal(t, `<p class="text-center" style="text-align: center"><strong>hello</strong></p><p>world</p>`, r.Changes()[1])

	require.NoError(t, s.Execute("insertOrderedList", ""))
	html, err := s.HTML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<ol style="list-style-type: decimal; counter-reset: item; padding-left: 1.5em; margin: 0.5em 0">`), html)
	assert.Contains(t, html, `<li style="margin: 0.25em 0; display: list-item" data-index="1">`)
	assert.Len(t, r.Changes(), 3)
}

func TestHandleKey(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)
	require.NoError(t, s.Initialize("<p>Conclusion</p>"))

	ok, err := s.HandleKey(command.KeyEvent{Key: "!", Code: "Digit1", Alt: true, Shift: true})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{
		`<h1 class="section-callout conclusion-heading" style="font-size: 2em; font-weight: bold; margin: 0.67em 0">Conclusion</h1>`,
	}, r.Changes())

	ok, err = s.HandleKey(command.KeyEvent{Key: "1", Ctrl: true, Alt: true})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, r.Changes(), 1)
}

func TestFailures(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)

	// nothing happens before a note is installed
	require.NoError(t, s.OnInput(editor.InsertText{Text: "x"}))
	require.NoError(t, s.Execute("bold", ""))
	require.NoError(t, s.OnBlur())
	s.SetSelection(1, 2)
	html, err := s.HTML()
	require.NoError(t, err)
	assert.Empty(t, html)
	assert.Nil(t, s.Doc())

	require.NoError(t, s.Initialize("<p>x</p>"))
	before := s.Doc()

	err = s.Execute("blink", "")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Same(t, before, s.Doc())

	require.NoError(t, s.Initialize("<hr>"))
	assert.Error(t, s.OnInput(editor.InsertText{Text: "x"}))
	assert.Empty(t, r.Changes())
}

func TestPaste(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)
	require.NoError(t, s.Initialize("<p>ab</p>"))
	s.SetSelection(2, 2)

	require.NoError(t, s.OnInput(editor.Paste{HTML: `<b onclick="x()">bold</b><script>alert(1)</script>`, Text: "bold"}))
	assert.Equal(t, "<p>a<strong>bold</strong>b</p>", r.Changes()[0])
	assert.Equal(t, format.Cursor(6), s.Selection())

	require.NoError(t, s.OnInput(editor.Paste{HTML: "<table><tr><td>c</td></tr></table>"}))
	html := r.Changes()[1]
	assert.Contains(t, html, `<table style="border-collapse: collapse; width: 100%">`)
	assert.Contains(t, html, `<td style="border: 1px solid #d1d5db; padding: 6px 8px">c</td>`)

	require.NoError(t, s.Initialize("<p>ab</p>"))
	s.SetSelection(2, 2)
	require.NoError(t, s.OnInput(editor.Paste{Text: "one"}))
	assert.Equal(t, "<p>aoneb</p>", r.Changes()[2])

	require.NoError(t, s.OnInput(editor.Paste{Text: "x\r\ny"}))
	assert.Equal(t, "<p>aone</p><p>x</p><p>y</p><p>b</p>", r.Changes()[3])
}

func TestSetSelection(t *testing.T) {
	s := newSurface(t, &recorder{})
	require.NoError(t, s.Initialize("<p>a👍🏽b</p>"))
	require.NoError(t, s.OnBlur())
	assert.False(t, s.Focused())

	s.SetSelection(3, 3)
	assert.Equal(t, format.Cursor(2), s.Selection())
	assert.True(t, s.Focused())

	s.SetSelection(99, -4)
	assert.Equal(t, format.Selection{From: 0, To: 6}, s.Selection())

	require.NoError(t, s.OnInput(editor.DeleteBackward{}))
	html, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", html)
}

func TestSelectionBetweenBlocks(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)

	require.NoError(t, s.Initialize("<h2>Conclusion</h2><p>a</p><blockquote><p>q</p></blockquote><hr><p>z</p>"))
	s.SetSelection(16, 22)
	require.NoError(t, s.OnInput(editor.DeleteBackward{}))
	html, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<h2>Conclusion</h2><p>a</p><p>z</p>", html)
	assert.Equal(t, format.Cursor(16), s.Selection())

	require.NoError(t, s.Initialize("<table><tr><td>a</td><td>b</td></tr></table>"))
	s.SetSelection(2, 2)
	assert.Equal(t, format.Cursor(3), s.Selection())
	require.NoError(t, s.OnInput(editor.InsertText{Text: "x"}))
	assert.Equal(t, "xab", s.Doc().TextContent())
	assert.Equal(t, format.Cursor(4), s.Selection())

	require.NoError(t, s.Initialize("<p>one</p><p>two</p>"))
	s.SetSelection(5, 5)
	assert.Equal(t, format.Cursor(6), s.Selection())
	require.NoError(t, s.Execute("justifyCenter", ""))
	changes := r.Changes()
	assert.Equal(t, `<p>one</p><p class="text-center" style="text-align: center">two</p>`, changes[len(changes)-1])
}

func TestInitializeReplacesNote(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r, r.autoSave(), editor.WithAutoSaveDelay(30*time.Millisecond))

	require.NoError(t, s.Initialize("<p>one</p>"))
	require.NoError(t, s.OnInput(editor.InsertText{Text: "!"}))
	require.NoError(t, s.Initialize("<h2>two</h2>"))
	assert.Equal(t, format.Cursor(4), s.Selection())

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, r.AutoSaves())
	html, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<h2>two</h2>", html)
}

func TestAutoSaveDebounce(t *testing.T) {
	const delay = 50 * time.Millisecond
	r := &recorder{}
	s := newSurface(t, r, r.autoSave(), editor.WithAutoSaveDelay(delay))
	require.NoError(t, s.Initialize("<p></p>"))

	var last time.Time
	for i := 0; i < 5; i++ {
		require.NoError(t, s.OnInput(editor.InsertText{Text: "a"}))
		last = time.Now()
		time.Sleep(delay / 5)
	}

	require.Eventually(t, func() bool { return len(r.AutoSaves()) > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * delay)
	saves := r.AutoSaves()
	require.Len(t, saves, 1)
	assert.GreaterOrEqual(t, saves[0].Sub(last), delay)
	assert.Len(t, r.Changes(), 5)
}

func TestBlurDoesNotAutoSave(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r, r.autoSave(), editor.WithAutoSaveDelay(20*time.Millisecond))
	require.NoError(t, s.Initialize("<p>x</p>"))

	require.NoError(t, s.OnBlur())
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, r.AutoSaves())
	assert.Len(t, r.Changes(), 1)
}

func TestConcurrentInput(t *testing.T) {
	r := &recorder{}
	s := newSurface(t, r)
	require.NoError(t, s.Initialize("<p></p>"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, s.OnInput(editor.InsertText{Text: "a"}))
				_ = s.Selection()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, strings.Repeat("a", 80), s.Doc().TextContent())
	assert.Len(t, r.Changes(), 80)
}

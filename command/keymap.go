package command

import (
	"strings"
)

// KeyEvent is a key press as reported by the host.
type KeyEvent struct {
	// Key is the character produced by the key, layout dependent: "b", "B",
	// "1" or "!".
	Key string
	// Code names the physical key: "KeyB", "Digit1".
	Code  string
	Alt   bool
	Shift bool
	Ctrl  bool
	Meta  bool
}

// Binding maps an Alt+key combination to a command.
type Binding struct {
	// Key is the unshifted character of the key, a lowercase letter or a
	// digit.
	Key         string
	Command     string
	Value       string
	Description string
}

// Matches tells whether the event triggers the binding. The event must hold
// Alt without Ctrl or Meta. Its key may be the unshifted character, the
// shifted symbol of the same key, or be given by its physical code only:
// keyboard layouts do not agree on the character Alt+key produces.
func (b Binding) Matches(ev KeyEvent) bool {
	if !ev.Alt || ev.Ctrl || ev.Meta {
		return false
	}
	key := strings.ToLower(ev.Key)
	if key == b.Key {
		return true
	}
	if shifted, ok := shiftedSymbols[b.Key]; ok && ev.Key == shifted {
		return true
	}
	return ev.Code != "" && ev.Code == b.Code()
}

// Code returns the physical key code of the binding.
func (b Binding) Code() string {
	if len(b.Key) != 1 {
		return ""
	}
	switch c := b.Key[0]; {
	case c >= '0' && c <= '9':
		return "Digit" + b.Key
	case c >= 'a' && c <= 'z':
		return "Key" + strings.ToUpper(b.Key)
	}
	return ""
}

// shiftedSymbols are the symbols of the digit keys with Shift held.
var shiftedSymbols = map[string]string{
	"1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")",
}

// Keymap is an ordered list of bindings. The first match wins.
type Keymap struct {
	bindings []Binding
}

// NewKeymap returns a keymap holding the given bindings.
func NewKeymap(bindings ...Binding) *Keymap {
	return &Keymap{bindings: append([]Binding{}, bindings...)}
}

// DefaultKeymap returns the shortcuts of the editor.
func DefaultKeymap() *Keymap {
	return NewKeymap(
		Binding{Key: "b", Command: "bold", Description: "Bold"},
		Binding{Key: "i", Command: "italic", Description: "Italic"},
		Binding{Key: "u", Command: "underline", Description: "Underline"},
		Binding{Key: "1", Command: "formatBlock", Value: "h1", Description: "Heading 1"},
		Binding{Key: "2", Command: "formatBlock", Value: "h2", Description: "Heading 2"},
		Binding{Key: "3", Command: "formatBlock", Value: "h3", Description: "Heading 3"},
		Binding{Key: "0", Command: "formatBlock", Value: "p", Description: "Normal text"},
		Binding{Key: "l", Command: "justifyLeft", Description: "Align left"},
		Binding{Key: "e", Command: "justifyCenter", Description: "Align center"},
		Binding{Key: "r", Command: "justifyRight", Description: "Align right"},
		Binding{Key: "j", Command: "justifyFull", Description: "Justify"},
		Binding{Key: "h", Command: "highlight", Description: "Highlight"},
		Binding{Key: "8", Command: "insertUnorderedList", Description: "Bullet list"},
		Binding{Key: "7", Command: "insertOrderedList", Description: "Numbered list"},
	)
}

// Add appends a binding. Earlier bindings of the same key keep precedence.
func (k *Keymap) Add(b Binding) {
	k.bindings = append(k.bindings, b)
}

// Bindings returns a copy of the bindings.
func (k *Keymap) Bindings() []Binding {
	return append([]Binding{}, k.bindings...)
}

// Lookup returns the binding triggered by the event.
func (k *Keymap) Lookup(ev KeyEvent) (Binding, bool) {
	for _, b := range k.bindings {
		if b.Matches(ev) {
			return b, true
		}
	}
	return Binding{}, false
}

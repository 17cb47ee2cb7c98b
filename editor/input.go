package editor

// Input is a user edit reported by the host: InsertText, DeleteBackward,
// Paste or ToggleCheckbox.
type Input interface {
	input()
}

// InsertText replaces the selection with typed text.
type InsertText struct {
	Text string
}

// DeleteBackward deletes the selection, or the character before the cursor.
type DeleteBackward struct{}

// Paste replaces the selection with clipboard content. HTML is used when
// present, Text otherwise.
type Paste struct {
	HTML string
	Text string
}

// ToggleCheckbox flips the checkbox at Pos.
type ToggleCheckbox struct {
	Pos int
}

func (InsertText) input()     {}
func (DeleteBackward) input() {}
func (Paste) input()          {}
func (ToggleCheckbox) input() {}

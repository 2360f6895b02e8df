package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Input is a small text-entry widget for the add-series panel. Unlike a
// naive []rune buffer, it edits by grapheme cluster so that multi-codepoint
// characters (combining marks, emoji, CJK) move and delete as one unit, and
// tracks the cursor's on-screen column separately from its cluster index
// since wide characters occupy two display cells.
type Input struct {
	clusters []string
	cursor   int // index into clusters, 0..len(clusters)
}

// NewInput returns an empty Input.
func NewInput() *Input {
	return &Input{}
}

// Value returns the current contents as a plain string.
func (in *Input) Value() string {
	return strings.Join(in.clusters, "")
}

// SetValue replaces the contents and moves the cursor to the end.
func (in *Input) SetValue(s string) {
	in.clusters = splitGraphemes(s)
	in.cursor = len(in.clusters)
}

// Len returns the number of grapheme clusters currently held.
func (in *Input) Len() int { return len(in.clusters) }

// Push inserts s at the cursor position, splitting it into grapheme
// clusters first, and advances the cursor past the inserted text.
func (in *Input) Push(s string) {
	inserted := splitGraphemes(s)
	if len(inserted) == 0 {
		return
	}

	merged := make([]string, 0, len(in.clusters)+len(inserted))
	merged = append(merged, in.clusters[:in.cursor]...)
	merged = append(merged, inserted...)
	merged = append(merged, in.clusters[in.cursor:]...)

	in.clusters = merged
	in.cursor += len(inserted)
}

// Pop deletes the grapheme cluster immediately before the cursor
// (backspace). It is a no-op at the start of the input.
func (in *Input) Pop() {
	if in.cursor == 0 {
		return
	}
	in.clusters = append(in.clusters[:in.cursor-1], in.clusters[in.cursor:]...)
	in.cursor--
}

// MoveLeft moves the cursor back one grapheme cluster.
func (in *Input) MoveLeft() {
	if in.cursor > 0 {
		in.cursor--
	}
}

// MoveRight moves the cursor forward one grapheme cluster.
func (in *Input) MoveRight() {
	if in.cursor < len(in.clusters) {
		in.cursor++
	}
}

// DisplayCursorOffset returns the cursor's horizontal position in terminal
// display cells (accounting for double-width clusters), for rendering the
// caret at the right column.
func (in *Input) DisplayCursorOffset() int {
	width := 0
	for _, g := range in.clusters[:in.cursor] {
		width += runewidth.StringWidth(g)
	}
	return width
}

func splitGraphemes(s string) []string {
	var clusters []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return clusters
}

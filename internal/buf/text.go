package buf

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/mattn/go-runewidth"
)

// Pos is a buffer position: a line index and a char index inside the line.
type Pos struct {
	Line int
	Char int
}

// DefaultColumnCacheCapacity is the column-index cache size used before a
// viewport height is known.
const DefaultColumnCacheCapacity = 2*24 + 3

// Text wraps a rope with the per-line display-width index cache and the
// buffer option block. Each buffer exclusively owns one Text.
type Text struct {
	rope *Rope
	opts Options

	// cache holds *ColumnIndex entries keyed by line number. Sized to
	// roughly twice the viewport height so a one-screen scroll refills
	// from scratch at most once. cachedLines mirrors the cache's key set
	// because the LRU cannot enumerate its entries.
	cache       *lru.Cache
	cachedLines map[int]struct{}
}

// NewText creates a Text over initial content. Non-empty content gets the
// file-format EOL appended when missing, keeping the tail invariant from
// the start.
func NewText(content string, opts Options) *Text {
	t := &Text{
		rope: NewRope(content),
		opts: opts,
	}
	t.initCache(DefaultColumnCacheCapacity)
	t.ensureTrailingEOL()
	return t
}

func (t *Text) initCache(capacity int) {
	t.cachedLines = make(map[int]struct{})
	t.cache = &lru.Cache{
		MaxEntries: capacity,
		OnEvicted: func(key lru.Key, value interface{}) {
			delete(t.cachedLines, key.(int))
		},
	}
}

// SetViewportHeight resizes the column-index cache to 2*height + 3.
func (t *Text) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	t.initCache(2*height + 3)
}

// Options returns the buffer option block.
func (t *Text) Options() Options {
	return t.opts
}

// SetOptions replaces the option block. Width-affecting options invalidate
// every cached column index.
func (t *Text) SetOptions(opts Options) {
	if opts.TabStop != t.opts.TabStop || opts.FileFormat != t.opts.FileFormat {
		t.dropCachedFrom(0)
	}
	t.opts = opts
}

// Rope exposes the underlying rope for read-only traversal.
func (t *Text) Rope() *Rope {
	return t.rope
}

// LineCount returns the rope's line count.
func (t *Text) LineCount() int {
	return t.rope.LineCount()
}

// CharCount returns the rope's total char count.
func (t *Text) CharCount() int {
	return t.rope.CharCount()
}

// IsEmpty reports whether the text holds no characters.
func (t *Text) IsEmpty() bool {
	return t.rope.IsEmpty()
}

// Line returns the runes of one line including its EOL. Read-only.
func (t *Text) Line(line int) []rune {
	return t.rope.Line(line)
}

// String returns the whole text.
func (t *Text) String() string {
	return t.rope.String()
}

// CharWidth returns the display width of one char under the current
// options.
func (t *Text) CharWidth(c rune) int {
	_, w := t.CharSymbolAndWidth(c)
	return w
}

// CharSymbolAndWidth returns the glyph a char renders as and its display
// width. Tabs expand to the tab stop; LF is invisible; CR is invisible
// except on unix-format buffers where it shows as ^M; other C0 controls
// show as caret pairs.
func (t *Text) CharSymbolAndWidth(c rune) (string, int) {
	switch {
	case c == '\t':
		n := t.opts.TabStop
		if n < 1 {
			n = 1
		}
		return fmt.Sprintf("%*s", n, ""), n
	case c == '\n':
		return "", 0
	case c == '\r':
		if t.opts.FileFormat == FileFormatUnix {
			return "^M", 2
		}
		return "", 0
	case c < 0x20:
		return "^" + string('@'+c), 2
	case c == 0x7f:
		return "^?", 2
	default:
		return string(c), runewidth.RuneWidth(c)
	}
}

// colIndex fetches or creates the cached column index for one line.
func (t *Text) colIndex(line int) *ColumnIndex {
	if v, ok := t.cache.Get(line); ok {
		return v.(*ColumnIndex)
	}
	ci := NewColumnIndex()
	t.cache.Add(line, ci)
	t.cachedLines[line] = struct{}{}
	return ci
}

// WidthBefore returns the total display width of chars [0, char) of line.
func (t *Text) WidthBefore(line, char int) int {
	ci := t.colIndex(line)
	ci.extend(t.rope.Line(line), char, t.CharWidth)
	return ci.widthBefore(char)
}

// WidthUntil returns the total display width of chars [0, char] of line.
func (t *Text) WidthUntil(line, char int) int {
	ci := t.colIndex(line)
	ci.extend(t.rope.Line(line), char+1, t.CharWidth)
	return ci.widthUntil(char)
}

// LineWidth returns the total display width of line.
func (t *Text) LineWidth(line int) int {
	return t.WidthBefore(line, len(t.rope.Line(line)))
}

// CharAt returns the char whose display extent covers column w of line.
// Zero-width chars have an empty extent and are never "at" a column.
func (t *Text) CharAt(line, w int) (int, bool) {
	content := t.rope.Line(line)
	ci := t.colIndex(line)
	ci.extend(content, len(content), t.CharWidth)
	for i := 0; i < len(content); i++ {
		if ci.widthBefore(i) <= w && w < ci.widthUntil(i) {
			return i, true
		}
	}
	return 0, false
}

// CharBefore returns the rightmost char of line whose extent ends at or
// before width w.
func (t *Text) CharBefore(line, w int) (int, bool) {
	content := t.rope.Line(line)
	ci := t.colIndex(line)
	ci.extend(content, len(content), t.CharWidth)
	found := -1
	for i := 0; i < len(content); i++ {
		if ci.widthUntil(i) <= w {
			found = i
		} else {
			break
		}
	}
	if found < 0 {
		return 0, false
	}
	return found, true
}

// CharAfter returns the first char of line whose extent starts at or after
// width w.
func (t *Text) CharAfter(line, w int) (int, bool) {
	content := t.rope.Line(line)
	ci := t.colIndex(line)
	ci.extend(content, len(content), t.CharWidth)
	for i := 0; i < len(content); i++ {
		if ci.widthBefore(i) >= w {
			return i, true
		}
	}
	return 0, false
}

// LastCharUntil returns the char visible at width w of line: the covering
// char when one exists, otherwise the rightmost char ending before w.
func (t *Text) LastCharUntil(line, w int) (int, bool) {
	if i, ok := t.CharAt(line, w); ok {
		return i, true
	}
	return t.CharBefore(line, w)
}

// eolLen returns how many trailing runes of the line content form its EOL.
func (t *Text) eolLen(content []rune) int {
	n := len(content)
	if n == 0 {
		return 0
	}
	switch content[n-1] {
	case '\n':
		if n >= 2 && content[n-2] == '\r' {
			return 2
		}
		return 1
	case '\r':
		return 1
	default:
		return 0
	}
}

// LastCharOnLine returns the index of the last char of line, EOL included.
func (t *Text) LastCharOnLine(line int) (int, bool) {
	content := t.rope.Line(line)
	if len(content) == 0 {
		return 0, false
	}
	return len(content) - 1, true
}

// LastCharOnLineNoEOL returns the index of the last char of line before
// its EOL sequence.
func (t *Text) LastCharOnLineNoEOL(line int) (int, bool) {
	content := t.rope.Line(line)
	n := len(content) - t.eolLen(content)
	if n <= 0 {
		return 0, false
	}
	return n - 1, true
}

// IsEOL reports whether the char index of line falls inside the line's EOL
// sequence.
func (t *Text) IsEOL(line, char int) bool {
	content := t.rope.Line(line)
	eol := t.eolLen(content)
	return eol > 0 && char >= len(content)-eol && char < len(content)
}

// ensureTrailingEOL restores the tail invariant: non-empty text ends with
// the file-format EOL.
func (t *Text) ensureTrailingEOL() bool {
	if t.rope.IsEmpty() || t.rope.EndsWithEOL() {
		return false
	}
	t.rope.Insert(t.rope.CharCount(), t.opts.FileFormat.EOL())
	return true
}

// dropCachedFrom removes every cached column index for lines >= line.
func (t *Text) dropCachedFrom(line int) {
	for l := range t.cachedLines {
		if l >= line {
			t.cache.Remove(l)
		}
	}
}

// clampLineChar clamps a position into the rope.
func (t *Text) clampLineChar(line, char int) (int, int) {
	if line < 0 {
		line = 0
	}
	if line >= t.rope.LineCount() {
		line = t.rope.LineCount() - 1
	}
	if char < 0 {
		char = 0
	}
	if n := len(t.rope.Line(line)); char > n {
		char = n
	}
	return line, char
}

// InsertResult describes one InsertAt edit.
type InsertResult struct {
	// Pos is the position just after the inserted payload.
	Pos Pos
	// StartAbs is the absolute char offset the payload landed at.
	StartAbs int
	// AppendedEOL reports that the tail invariant appended the
	// file-format EOL after the payload. Undo recording must include it
	// to revert exactly.
	AppendedEOL bool
}

// InsertAt inserts payload at (line, char) and returns the position just
// after the payload. The cache entry of an intra-line edit is truncated
// from one char before the edit; an edit that adds or removes lines drops
// every cached index at or after the edited line.
func (t *Text) InsertAt(line, char int, payload []rune) InsertResult {
	line, char = t.clampLineChar(line, char)
	abs := t.rope.LineToChar(line) + char
	t.rope.Insert(abs, payload)
	appended := t.ensureTrailingEOL()

	newAbs := abs + len(payload)
	newLine := t.rope.CharToLine(newAbs)
	newChar := newAbs - t.rope.LineToChar(newLine)

	if newLine == line && !appended {
		ci := t.colIndex(line)
		from := char - 1
		if from < 0 {
			from = 0
		}
		ci.Truncate(from)
	} else {
		t.dropCachedFrom(line)
	}
	return InsertResult{
		Pos:         Pos{Line: newLine, Char: newChar},
		StartAbs:    abs,
		AppendedEOL: appended,
	}
}

// DeleteResult describes one DeleteAt edit.
type DeleteResult struct {
	// Pos is where the removed range began, after the edit.
	Pos Pos
	// StartAbs is the absolute char offset of the removed range.
	StartAbs int
	// Removed is the payload taken out of the rope.
	Removed []rune
	// AppendedEOL reports that the tail invariant re-appended the
	// file-format EOL after the deletion. Undo recording must include it
	// to revert exactly.
	AppendedEOL bool
}

// DeleteAt deletes n chars at (line, char): rightward for n > 0, leftward
// for n < 0. The effective range is clamped into the rope; an empty range
// returns nil.
func (t *Text) DeleteAt(line, char, n int) *DeleteResult {
	line, char = t.clampLineChar(line, char)
	abs := t.rope.LineToChar(line) + char
	start, end := abs, abs+n
	if n < 0 {
		start, end = abs+n, abs
	}
	if start < 0 {
		start = 0
	}
	if total := t.rope.CharCount(); end > total {
		end = total
	}
	if start >= end {
		return nil
	}

	removed := t.SliceAbs(start, end)
	startLine := t.rope.CharToLine(start)
	startChar := start - t.rope.LineToChar(startLine)
	sameLine := t.rope.CharToLine(end-1) == startLine && !t.IsEOLAbs(end-1)

	t.rope.Remove(start, end)
	appended := t.ensureTrailingEOL()

	if sameLine && !appended {
		ci := t.colIndex(startLine)
		from := startChar - 1
		if from < 0 {
			from = 0
		}
		ci.Truncate(from)
	} else {
		t.dropCachedFrom(startLine)
	}

	newLine := t.rope.CharToLine(start)
	newChar := start - t.rope.LineToChar(newLine)
	return &DeleteResult{
		Pos:         Pos{Line: newLine, Char: newChar},
		StartAbs:    start,
		Removed:     removed,
		AppendedEOL: appended,
	}
}

// SliceAbs copies the absolute char range [start, end) out of the rope.
func (t *Text) SliceAbs(start, end int) []rune {
	if start < 0 {
		start = 0
	}
	if total := t.rope.CharCount(); end > total {
		end = total
	}
	if start >= end {
		return nil
	}
	out := make([]rune, 0, end-start)
	line := t.rope.CharToLine(start)
	offset := t.rope.LineToChar(line)
	for line < t.rope.LineCount() && offset < end {
		content := t.rope.Line(line)
		for i, c := range content {
			if offset+i >= start && offset+i < end {
				out = append(out, c)
			}
		}
		offset += len(content)
		line++
	}
	return out
}

// IsEOLAbs reports whether the absolute char offset falls inside some
// line's EOL sequence.
func (t *Text) IsEOLAbs(charIdx int) bool {
	line := t.rope.CharToLine(charIdx)
	return t.IsEOL(line, charIdx-t.rope.LineToChar(line))
}

// Clear empties the text and every cached column index.
func (t *Text) Clear() {
	t.rope.Clear()
	t.dropCachedFrom(0)
}

// InsertAbs inserts payload at an absolute char offset. Used by undo
// replay.
func (t *Text) InsertAbs(charIdx int, payload []rune) {
	line := t.rope.CharToLine(charIdx)
	char := charIdx - t.rope.LineToChar(line)
	t.InsertAt(line, char, payload)
}

// DeleteAbs removes the absolute char range [start, end). Used by undo
// replay.
func (t *Text) DeleteAbs(start, end int) {
	line := t.rope.CharToLine(start)
	char := start - t.rope.LineToChar(line)
	t.DeleteAt(line, char, end-start)
}

// LineToChar exposes the rope's line-to-offset conversion.
func (t *Text) LineToChar(line int) int {
	return t.rope.LineToChar(line)
}

// CharToLine exposes the rope's offset-to-line conversion.
func (t *Text) CharToLine(charIdx int) int {
	return t.rope.CharToLine(charIdx)
}

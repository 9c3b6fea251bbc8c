package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newUnixText(content string) *Text {
	return NewText(content, DefaultOptions())
}

func TestNewTextAppendsTrailingEOL(t *testing.T) {
	txt := newUnixText("hello")
	assert.Equal(t, "hello\n", txt.String())

	empty := newUnixText("")
	assert.Equal(t, "", empty.String())
}

func TestCharSymbolAndWidth(t *testing.T) {
	txt := newUnixText("")
	tests := []struct {
		name   string
		c      rune
		symbol string
		width  int
	}{
		{"ascii", 'a', "a", 1},
		{"wide", '你', "你", 2},
		{"tab", '\t', "        ", 8},
		{"lf", '\n', "", 0},
		{"cr on unix", '\r', "^M", 2},
		{"control", rune(0x01), "^A", 2},
		{"del", rune(0x7f), "^?", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, w := txt.CharSymbolAndWidth(tt.c)
			assert.Equal(t, tt.symbol, sym)
			assert.Equal(t, tt.width, w)
		})
	}

	dos := NewText("", Options{TabStop: 4, FileFormat: FileFormatDos})
	sym, w := dos.CharSymbolAndWidth('\r')
	assert.Equal(t, "", sym)
	assert.Equal(t, 0, w)
	sym, w = dos.CharSymbolAndWidth('\t')
	assert.Equal(t, "    ", sym)
	assert.Equal(t, 4, w)
}

func TestWidthQueries(t *testing.T) {
	// "a\tb你c\n" -> widths 1, 8, 1, 2, 1, 0.
	txt := newUnixText("a\tb你c\n")
	assert.Equal(t, 0, txt.WidthBefore(0, 0))
	assert.Equal(t, 1, txt.WidthBefore(0, 1))
	assert.Equal(t, 9, txt.WidthBefore(0, 2))
	assert.Equal(t, 10, txt.WidthBefore(0, 3))
	assert.Equal(t, 12, txt.WidthBefore(0, 4))
	assert.Equal(t, 13, txt.WidthBefore(0, 5))
	assert.Equal(t, 13, txt.WidthBefore(0, 6))
	assert.Equal(t, 13, txt.LineWidth(0))

	assert.Equal(t, 1, txt.WidthUntil(0, 0))
	assert.Equal(t, 9, txt.WidthUntil(0, 1))

	idx, ok := txt.CharAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = txt.CharAt(0, 5) // inside the tab's extent
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	idx, ok = txt.CharAt(0, 10) // first cell of the wide char
	require.True(t, ok)
	assert.Equal(t, 3, idx)
	_, ok = txt.CharAt(0, 13) // past the visible width
	assert.False(t, ok)

	idx, ok = txt.CharBefore(0, 9)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	idx, ok = txt.CharAfter(0, 9)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	idx, ok = txt.LastCharUntil(0, 11)
	require.True(t, ok)
	assert.Equal(t, 3, idx)
}

func TestWidthBeforeMatchesTotalWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringMatching(`[a-z你好\t ]{0,20}`).Draw(t, "line")
		txt := newUnixText(line + "\n")
		content := txt.Line(0)
		total := 0
		for _, c := range content {
			total += txt.CharWidth(c)
		}
		if got := txt.WidthBefore(0, len(content)); got != total {
			t.Fatalf("WidthBefore(line end) = %d, want %d", got, total)
		}
	})
}

func TestEOLHelpers(t *testing.T) {
	txt := newUnixText("ab\n")
	last, ok := txt.LastCharOnLine(0)
	require.True(t, ok)
	assert.Equal(t, 2, last) // the '\n'
	last, ok = txt.LastCharOnLineNoEOL(0)
	require.True(t, ok)
	assert.Equal(t, 1, last)
	assert.True(t, txt.IsEOL(0, 2))
	assert.False(t, txt.IsEOL(0, 1))

	dos := NewText("ab\r\n", Options{TabStop: 8, FileFormat: FileFormatDos})
	last, ok = dos.LastCharOnLineNoEOL(0)
	require.True(t, ok)
	assert.Equal(t, 1, last)
	assert.True(t, dos.IsEOL(0, 2))
	assert.True(t, dos.IsEOL(0, 3))
}

func TestInsertAtSameLine(t *testing.T) {
	txt := newUnixText("hello\n")
	res := txt.InsertAt(0, 2, []rune("XY"))
	assert.Equal(t, Pos{Line: 0, Char: 4}, res.Pos)
	assert.Equal(t, 2, res.StartAbs)
	assert.False(t, res.AppendedEOL)
	assert.Equal(t, "heXYllo\n", txt.String())
}

func TestInsertAtWithNewline(t *testing.T) {
	txt := newUnixText("hello\n")
	res := txt.InsertAt(0, 5, []rune("\nworld"))
	assert.Equal(t, Pos{Line: 1, Char: 5}, res.Pos)
	// The old trailing EOL moved behind the payload, so the tail
	// invariant already holds.
	assert.False(t, res.AppendedEOL)
	assert.Equal(t, "hello\nworld\n", txt.String())
}

func TestInsertIntoEmptyAppendsEOL(t *testing.T) {
	txt := newUnixText("")
	res := txt.InsertAt(0, 0, []rune("hi"))
	assert.Equal(t, Pos{Line: 0, Char: 2}, res.Pos)
	assert.True(t, res.AppendedEOL)
	assert.Equal(t, "hi\n", txt.String())
}

func TestInsertAtLineLengthExtendsEOL(t *testing.T) {
	txt := newUnixText("ab\n")
	// Inserting at the very end of the text (after the final EOL's line).
	res := txt.InsertAt(1, 0, []rune("cd"))
	assert.Equal(t, Pos{Line: 1, Char: 2}, res.Pos)
	assert.Equal(t, "ab\ncd\n", txt.String())
}

func TestDeleteAtRightAndLeft(t *testing.T) {
	txt := newUnixText("hello\n")
	res := txt.DeleteAt(0, 1, 2)
	require.NotNil(t, res)
	assert.Equal(t, Pos{Line: 0, Char: 1}, res.Pos)
	assert.Equal(t, "el", string(res.Removed))
	assert.Equal(t, "hlo\n", txt.String())

	res = txt.DeleteAt(0, 2, -1)
	require.NotNil(t, res)
	assert.Equal(t, Pos{Line: 0, Char: 1}, res.Pos)
	assert.Equal(t, "l", string(res.Removed))
	assert.Equal(t, "ho\n", txt.String())
}

func TestDeleteAtEmptyRange(t *testing.T) {
	txt := newUnixText("ab\n")
	assert.Nil(t, txt.DeleteAt(0, 0, 0))
	assert.Nil(t, txt.DeleteAt(0, 0, -5))
}

func TestDeleteRestoresTrailingEOL(t *testing.T) {
	txt := newUnixText("ab\n")
	// Deleting the trailing newline leaves "ab"; the invariant appends
	// it right back.
	res := txt.DeleteAt(0, 2, 1)
	require.NotNil(t, res)
	assert.True(t, res.AppendedEOL)
	assert.Equal(t, "ab\n", txt.String())
}

func TestDeleteAcrossLines(t *testing.T) {
	txt := newUnixText("hello\nworld\n")
	res := txt.DeleteAt(0, 3, 5)
	require.NotNil(t, res)
	assert.Equal(t, Pos{Line: 0, Char: 3}, res.Pos)
	assert.Equal(t, "lo\nwo", string(res.Removed))
	assert.Equal(t, "helrld\n", txt.String())
}

func TestClear(t *testing.T) {
	txt := newUnixText("hello\n")
	txt.Clear()
	assert.True(t, txt.IsEmpty())
	assert.Equal(t, 1, txt.LineCount())
}

// Property: any sequence of inserts and deletes leaves non-empty text
// ending with the file-format EOL.
func TestTrailingEOLInvariantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		txt := newUnixText(rapid.StringMatching(`[ab\n]{0,10}`).Draw(t, "init"))
		ops := rapid.IntRange(0, 12).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			line := rapid.IntRange(0, txt.LineCount()-1).Draw(t, "line")
			char := rapid.IntRange(0, 6).Draw(t, "char")
			if rapid.Bool().Draw(t, "ins") {
				payload := rapid.StringMatching(`[xy\n]{1,4}`).Draw(t, "payload")
				txt.InsertAt(line, char, []rune(payload))
			} else {
				n := rapid.IntRange(-4, 4).Draw(t, "n")
				txt.DeleteAt(line, char, n)
			}
			if !txt.IsEmpty() {
				s := txt.String()
				if s[len(s)-1] != '\n' {
					t.Fatalf("text does not end with EOL: %q", s)
				}
			}
		}
	})
}

func TestCacheTruncationAfterEdit(t *testing.T) {
	txt := newUnixText("abcdef\n")
	// Build the index, then edit and re-query: widths must reflect the
	// edited content.
	assert.Equal(t, 6, txt.WidthBefore(0, 6))
	txt.InsertAt(0, 3, []rune("\t"))
	assert.Equal(t, 3+8+3, txt.WidthBefore(0, 7))
}

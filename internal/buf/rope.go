package buf

// Rope is the line-structured store of Unicode scalars backing a Text.
// Lines keep their terminating EOL runes; text that ends with an EOL has an
// empty final line, so the line count matches what an editor shows. An
// empty rope holds exactly one empty line.
type Rope struct {
	lines [][]rune
}

// NewRope creates a rope from initial content.
func NewRope(content string) *Rope {
	return &Rope{lines: splitLines([]rune(content))}
}

// splitLines splits after every LF, and after every CR not followed by LF.
// The result always has at least one element; content ending with an EOL
// yields a trailing empty element.
func splitLines(content []rune) [][]rune {
	var out [][]rune
	start := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\n' || (c == '\r' && (i+1 >= len(content) || content[i+1] != '\n')) {
			out = append(out, content[start:i+1])
			start = i + 1
		}
	}
	out = append(out, content[start:])
	return out
}

// LineCount returns the number of lines, at least 1.
func (r *Rope) LineCount() int {
	return len(r.lines)
}

// CharCount returns the total number of Unicode scalars.
func (r *Rope) CharCount() int {
	n := 0
	for _, l := range r.lines {
		n += len(l)
	}
	return n
}

// IsEmpty reports whether the rope holds no characters.
func (r *Rope) IsEmpty() bool {
	return r.CharCount() == 0
}

// Line returns the runes of one line including its EOL. The slice aliases
// internal storage and must not be modified.
func (r *Rope) Line(line int) []rune {
	if line < 0 || line >= len(r.lines) {
		return nil
	}
	return r.lines[line]
}

// LineToChar returns the absolute char offset of the first char of line.
func (r *Rope) LineToChar(line int) int {
	if line < 0 {
		return 0
	}
	n := 0
	for i := 0; i < line && i < len(r.lines); i++ {
		n += len(r.lines[i])
	}
	return n
}

// CharToLine returns the line containing the absolute char offset. Offsets
// at or past the end map to the last line.
func (r *Rope) CharToLine(charIdx int) int {
	if charIdx <= 0 {
		return 0
	}
	n := 0
	for i, l := range r.lines {
		if charIdx < n+len(l) {
			return i
		}
		n += len(l)
	}
	return len(r.lines) - 1
}

// EndsWithEOL reports whether the final character is an EOL rune.
func (r *Rope) EndsWithEOL() bool {
	return len(r.lines[len(r.lines)-1]) == 0 && r.CharCount() > 0
}

// Insert splices payload at the absolute char offset, re-splitting the
// affected region into lines. The offset is clamped into the rope.
func (r *Rope) Insert(charIdx int, payload []rune) {
	if len(payload) == 0 {
		return
	}
	total := r.CharCount()
	if charIdx < 0 {
		charIdx = 0
	}
	if charIdx > total {
		charIdx = total
	}
	line := r.CharToLine(charIdx)
	col := charIdx - r.LineToChar(line)

	old := r.lines[line]
	merged := make([]rune, 0, len(old)+len(payload))
	merged = append(merged, old[:col]...)
	merged = append(merged, payload...)
	merged = append(merged, old[col:]...)

	r.replaceLines(line, line, merged)
}

// Remove deletes the absolute char range [start, end), clamped into the
// rope.
func (r *Rope) Remove(start, end int) {
	total := r.CharCount()
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start >= end {
		return
	}
	startLine := r.CharToLine(start)
	endLine := r.CharToLine(end - 1)
	startCol := start - r.LineToChar(startLine)
	endCol := end - r.LineToChar(endLine)

	prefix := r.lines[startLine][:startCol]
	suffix := r.lines[endLine][endCol:]
	merged := make([]rune, 0, len(prefix)+len(suffix))
	merged = append(merged, prefix...)
	merged = append(merged, suffix...)

	r.replaceLines(startLine, endLine, merged)
}

// replaceLines substitutes lines [from, to] with the re-split content.
// When the replaced region is not at the rope's tail, a trailing empty
// split element is dropped: the following line already starts fresh.
func (r *Rope) replaceLines(from, to int, content []rune) {
	parts := splitLines(content)
	tail := to == len(r.lines)-1
	if !tail && len(parts) > 1 && len(parts[len(parts)-1]) == 0 {
		parts = parts[:len(parts)-1]
	}
	out := make([][]rune, 0, len(r.lines)-(to-from+1)+len(parts))
	out = append(out, r.lines[:from]...)
	out = append(out, parts...)
	out = append(out, r.lines[to+1:]...)
	r.lines = out
}

// Clear empties the rope.
func (r *Rope) Clear() {
	r.lines = [][]rune{{}}
}

// String concatenates the whole rope.
func (r *Rope) String() string {
	n := r.CharCount()
	out := make([]rune, 0, n)
	for _, l := range r.lines {
		out = append(out, l...)
	}
	return string(out)
}

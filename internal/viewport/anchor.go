package viewport

import "github.com/rsvim/rsvim-sub002/internal/buf"

// Direction is the motion that pushed the cursor out of view.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// SearchAnchor returns the minimally adjusted anchor (startLine,
// startColumn) that brings the target position back into a width x height
// window. Vertical motions leave the column alone and vice versa; wrap
// layouts always pin the column to 0.
func SearchAnchor(text *buf.Text, opts Options, width, height int, startLine, startColumn int, dir Direction, targetLine, targetChar int) (int, int) {
	if width <= 0 || height <= 0 {
		return startLine, startColumn
	}
	if opts.Wrap {
		startColumn = 0
	}

	switch dir {
	case DirectionUp:
		if targetLine < startLine {
			startLine = targetLine
		}
	case DirectionDown:
		startLine = anchorForBottom(text, opts, width, height, startLine, targetLine)
	case DirectionLeft:
		if !opts.Wrap {
			left := text.WidthBefore(targetLine, targetChar)
			if left < startColumn {
				startColumn = left
			}
		}
		if targetLine < startLine {
			startLine = targetLine
		}
	case DirectionRight:
		if !opts.Wrap {
			right := text.WidthUntil(targetLine, targetChar)
			if right > startColumn+width {
				startColumn = right - width
			}
		}
		startLine = anchorForBottom(text, opts, width, height, startLine, targetLine)
	}
	if startLine < 0 {
		startLine = 0
	}
	if startColumn < 0 {
		startColumn = 0
	}
	return startLine, startColumn
}

// anchorForBottom finds the highest start line that still shows targetLine
// as the last visible line, without scrolling when the target is already
// above the current anchor window's bottom.
func anchorForBottom(text *buf.Text, opts Options, width, height, startLine, targetLine int) int {
	if targetLine < startLine {
		return targetLine
	}
	// Accumulate row counts upward from the target until the window fills.
	rows := 0
	line := targetLine
	for line >= 0 {
		rows += lineRowCount(text, opts, width, line)
		if rows > height {
			line++
			break
		}
		if line == 0 {
			break
		}
		line--
	}
	if line < 0 {
		line = 0
	}
	if line > targetLine {
		// The target alone overflows the window; show it from its top.
		line = targetLine
	}
	if line <= startLine {
		// Already visible without moving.
		return startLine
	}
	return line
}

// lineRowCount counts how many rows the line occupies at full height.
func lineRowCount(text *buf.Text, opts Options, width, line int) int {
	if !opts.Wrap {
		return 1
	}
	lv := layoutWrapped(text, opts, line, width, 0)
	if len(lv.Rows) == 0 {
		return 1
	}
	return len(lv.Rows)
}

// Clamp normalizes an anchor so it points inside the text.
func Clamp(text *buf.Text, startLine, startColumn int) (int, int) {
	if startLine < 0 {
		startLine = 0
	}
	if n := text.LineCount(); startLine >= n {
		startLine = n - 1
	}
	if startColumn < 0 {
		startColumn = 0
	}
	if w := text.LineWidth(startLine); startColumn > w {
		startColumn = w
	}
	return startLine, startColumn
}

// Package undo records buffer edits as changes grouped into commits, with
// adjacent-edit merging and a bounded history ring. A commit is the atomic
// boundary of undo/redo.
package undo

import "fmt"

// Pos is a cursor position recorded alongside a change.
type Pos struct {
	Line int
	Char int
}

// Kind tags the change variants.
type Kind int

const (
	// KindInsert records payload inserted at CharIdx.
	KindInsert Kind = iota
	// KindDelete records payload removed from CharIdx.
	KindDelete
)

// Change is one edit against the rope, addressed by absolute char offset.
type Change struct {
	Kind         Kind
	CharIdx      int
	Payload      []rune
	CursorBefore Pos
	CursorAfter  Pos
}

// isLeftward reports whether a delete ate toward the left (backspace-like):
// the cursor ends up before where it started.
func (c Change) isLeftward() bool {
	if c.CursorAfter.Line != c.CursorBefore.Line {
		return c.CursorAfter.Line < c.CursorBefore.Line
	}
	return c.CursorAfter.Char < c.CursorBefore.Char
}

// Commit is an ordered group of changes applied between two undo
// boundaries.
type Commit struct {
	Changes []Change
}

// IsEmpty reports whether the commit holds no changes.
func (c *Commit) IsEmpty() bool {
	return len(c.Changes) == 0
}

// Target is the text surface undo replays against.
type Target interface {
	InsertAbs(charIdx int, payload []rune)
	DeleteAbs(start, end int)
}

// DefaultHistoryCapacity bounds the commit ring.
const DefaultHistoryCapacity = 100

// Manager owns the bounded commit history and the open commit being
// mutated by ongoing edits.
type Manager struct {
	history  []Commit
	capacity int
	open     Commit
	// undone counts commits already reverted, from the newest backward.
	undone int
}

// NewManager creates a manager with the default history capacity.
func NewManager() *Manager {
	return NewManagerWithCapacity(DefaultHistoryCapacity)
}

// NewManagerWithCapacity creates a manager bounded to capacity commits.
func NewManagerWithCapacity(capacity int) *Manager {
	if capacity < 1 {
		capacity = 1
	}
	return &Manager{capacity: capacity}
}

// Open returns the open commit. Read-only.
func (m *Manager) Open() *Commit {
	return &m.open
}

// HistoryLen returns the number of committed entries.
func (m *Manager) HistoryLen() int {
	return len(m.history)
}

// Insert records an insertion into the open commit, merging with the
// previous change when the merge rules apply.
func (m *Manager) Insert(charIdx int, payload []rune, before, after Pos) {
	if len(payload) == 0 {
		return
	}
	if n := len(m.open.Changes); n > 0 {
		prev := &m.open.Changes[n-1]
		if prev.Kind == KindInsert {
			// Adjacent insert at the tip: append.
			if prev.CharIdx+len(prev.Payload) == charIdx {
				prev.Payload = append(prev.Payload, payload...)
				prev.CursorAfter = after
				return
			}
			// Insert inside the previous payload: splice.
			if charIdx >= prev.CharIdx && charIdx < prev.CharIdx+len(prev.Payload) {
				off := charIdx - prev.CharIdx
				spliced := make([]rune, 0, len(prev.Payload)+len(payload))
				spliced = append(spliced, prev.Payload[:off]...)
				spliced = append(spliced, payload...)
				spliced = append(spliced, prev.Payload[off:]...)
				prev.Payload = spliced
				prev.CursorAfter = after
				return
			}
		}
		// Annihilation: a delete immediately undone by an equal insert.
		if prev.Kind == KindDelete && prev.CharIdx == charIdx && runesEqual(prev.Payload, payload) {
			m.open.Changes = m.open.Changes[:n-1]
			return
		}
	}
	m.open.Changes = append(m.open.Changes, Change{
		Kind:         KindInsert,
		CharIdx:      charIdx,
		Payload:      append([]rune(nil), payload...),
		CursorBefore: before,
		CursorAfter:  after,
	})
}

// Delete records a deletion into the open commit, merging with the
// previous change when the merge rules apply.
func (m *Manager) Delete(charIdx int, payload []rune, before, after Pos) {
	if len(payload) == 0 {
		return
	}
	change := Change{
		Kind:         KindDelete,
		CharIdx:      charIdx,
		Payload:      append([]rune(nil), payload...),
		CursorBefore: before,
		CursorAfter:  after,
	}
	if n := len(m.open.Changes); n > 0 {
		prev := &m.open.Changes[n-1]
		// Annihilation: an insert immediately undone by an equal delete.
		if prev.Kind == KindInsert && prev.CharIdx == charIdx && runesEqual(prev.Payload, payload) {
			m.open.Changes = m.open.Changes[:n-1]
			return
		}
		if prev.Kind == KindDelete && prev.isLeftward() == change.isLeftward() {
			if !change.isLeftward() && prev.CharIdx == charIdx {
				// Rightward deletes eat at a fixed offset.
				prev.Payload = append(prev.Payload, change.Payload...)
				prev.CursorAfter = after
				return
			}
			if change.isLeftward() && charIdx+len(payload) == prev.CharIdx {
				// Leftward deletes walk backward.
				merged := make([]rune, 0, len(payload)+len(prev.Payload))
				merged = append(merged, change.Payload...)
				merged = append(merged, prev.Payload...)
				prev.Payload = merged
				prev.CharIdx = charIdx
				prev.CursorAfter = after
				return
			}
		}
	}
	m.open.Changes = append(m.open.Changes, change)
}

// Commit drains the open commit into the history, dropping the oldest
// entry when the ring is full. An empty open commit is a no-op.
func (m *Manager) Commit() {
	if m.open.IsEmpty() {
		return
	}
	if len(m.history) == m.capacity {
		m.history = append(m.history[:0], m.history[1:]...)
		m.history = m.history[:len(m.history)-1]
	}
	m.history = append(m.history, m.open)
	m.open = Commit{}
	m.undone = 0
}

// ErrCommitNotExist is returned when a revert targets a commit index past
// the history.
type ErrCommitNotExist struct {
	Index int
}

// Error implements error.
func (e *ErrCommitNotExist) Error() string {
	return fmt.Sprintf("undo commit %d does not exist", e.Index)
}

// Revert applies the inverse of commit index (0 is oldest) against the
// target and returns the cursor position of the earliest change, restoring
// where the edit began.
func (m *Manager) Revert(index int, target Target) (Pos, error) {
	if index < 0 || index >= len(m.history) {
		return Pos{}, &ErrCommitNotExist{Index: index}
	}
	commit := m.history[index]
	for i := len(commit.Changes) - 1; i >= 0; i-- {
		ch := commit.Changes[i]
		switch ch.Kind {
		case KindInsert:
			target.DeleteAbs(ch.CharIdx, ch.CharIdx+len(ch.Payload))
		case KindDelete:
			target.InsertAbs(ch.CharIdx, ch.Payload)
		}
	}
	return commit.Changes[0].CursorBefore, nil
}

// Undo reverts the most recent not-yet-undone commit. It reports the
// restored cursor position, or false when nothing is left to undo.
func (m *Manager) Undo(target Target) (Pos, bool) {
	idx := len(m.history) - 1 - m.undone
	if idx < 0 {
		return Pos{}, false
	}
	pos, err := m.Revert(idx, target)
	if err != nil {
		return Pos{}, false
	}
	m.undone++
	return pos, true
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

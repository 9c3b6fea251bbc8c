package buf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rsvim/rsvim-sub002/internal/buf/undo"
)

// BufferId identifies a buffer. Ids are monotonic over the process
// lifetime and never reused.
type BufferId uint64

// Buffer owns one Text plus its filesystem identity and undo history.
type Buffer struct {
	Id       BufferId
	Text     *Text
	Path     string
	AbsPath  string
	Metadata os.FileInfo
	LastSync time.Time
	Undo     *undo.Manager
}

// Named reports whether the buffer is bound to a file path.
func (b *Buffer) Named() bool {
	return b.Path != ""
}

// WriteToFile saves the buffer content to its path and refreshes the sync
// bookkeeping.
func (b *Buffer) WriteToFile() error {
	if !b.Named() {
		return fmt.Errorf("buffer %d has no file name", b.Id)
	}
	if err := os.WriteFile(b.AbsPath, []byte(b.Text.String()), 0o644); err != nil {
		return fmt.Errorf("failed to save buffer to %s: %w", b.Path, err)
	}
	if info, err := os.Stat(b.AbsPath); err == nil {
		b.Metadata = info
	}
	b.LastSync = time.Now()
	return nil
}

// BuffersManager owns every buffer, keyed by id with a secondary index by
// absolute path. At most one unnamed buffer may exist. The mutex covers
// reads from test harnesses and detached tasks; in production all writes
// happen inside the event loop.
type BuffersManager struct {
	mu      sync.Mutex
	nextId  BufferId
	buffers map[BufferId]*Buffer
	byPath  map[string]BufferId
	unnamed BufferId
}

// NewBuffersManager creates an empty manager.
func NewBuffersManager() *BuffersManager {
	return &BuffersManager{
		nextId:  1,
		buffers: make(map[BufferId]*Buffer),
		byPath:  make(map[string]BufferId),
	}
}

// CreateUnnamed creates the unnamed buffer. A second unnamed buffer is an
// error.
func (m *BuffersManager) CreateUnnamed(opts Options) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unnamed != 0 {
		return nil, fmt.Errorf("an unnamed buffer already exists (id %d)", m.unnamed)
	}
	b := m.insert("", "", NewText("", opts))
	m.unnamed = b.Id
	return b, nil
}

// OpenFile creates a buffer over a file's content, or returns the existing
// buffer when the absolute path is already open. A missing file yields an
// empty buffer bound to the path.
func (m *BuffersManager) OpenFile(path string, opts Options) (*Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPath[abs]; ok {
		return m.buffers[id], nil
	}

	content := ""
	var info os.FileInfo
	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		content = string(data)
		info, _ = os.Stat(abs)
	case os.IsNotExist(err):
		// New file: start empty, bind the path.
	default:
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	b := m.insert(path, abs, NewText(content, opts))
	b.Metadata = info
	b.LastSync = time.Now()
	return b, nil
}

// insert allocates the next id and registers the buffer. Caller holds mu.
func (m *BuffersManager) insert(path, abs string, text *Text) *Buffer {
	b := &Buffer{
		Id:      m.nextId,
		Text:    text,
		Path:    path,
		AbsPath: abs,
		Undo:    undo.NewManager(),
	}
	m.nextId++
	m.buffers[b.Id] = b
	if abs != "" {
		m.byPath[abs] = b.Id
	}
	return b
}

// Get returns the buffer with the given id.
func (m *BuffersManager) Get(id BufferId) (*Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buffers[id]
	return b, ok
}

// GetByPath returns the buffer bound to an absolute path.
func (m *BuffersManager) GetByPath(abs string) (*Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byPath[abs]
	if !ok {
		return nil, false
	}
	return m.buffers[id], true
}

// Remove drops a buffer and its path index entry.
func (m *BuffersManager) Remove(id BufferId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buffers[id]
	if !ok {
		return
	}
	delete(m.buffers, id)
	if b.AbsPath != "" {
		delete(m.byPath, b.AbsPath)
	}
	if m.unnamed == id {
		m.unnamed = 0
	}
}

// Ids returns every buffer id in ascending order of creation.
func (m *BuffersManager) Ids() []BufferId {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BufferId, 0, len(m.buffers))
	for id := BufferId(1); id < m.nextId; id++ {
		if _, ok := m.buffers[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of buffers.
func (m *BuffersManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

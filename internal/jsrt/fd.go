package jsrt

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FdTable maps script-visible descriptors to open files. It is touched
// only from the loop goroutine: synchronously by the *Sync bindings, and
// by the loop when it services async fs requests.
type FdTable struct {
	next  int32
	files map[int32]*os.File
}

func NewFdTable() *FdTable {
	return &FdTable{files: make(map[int32]*os.File)}
}

func (t *FdTable) Open(path string, flags int, perm os.FileMode) (int32, error) {
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	t.next++
	t.files[t.next] = f
	return t.next, nil
}

func (t *FdTable) Read(fd int32, n int) ([]byte, error) {
	f, ok := t.files[fd]
	if !ok {
		return nil, os.ErrClosed
	}
	if n < 0 {
		n = 0
	}
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read > 0 {
		return buf[:read], nil
	}
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return nil, err
}

func (t *FdTable) Write(fd int32, data []byte) (int, error) {
	f, ok := t.files[fd]
	if !ok {
		return 0, os.ErrClosed
	}
	return f.Write(data)
}

func (t *FdTable) Close(fd int32) error {
	f, ok := t.files[fd]
	if !ok {
		return os.ErrClosed
	}
	delete(t.files, fd)
	return f.Close()
}

// CloseAll releases every open descriptor, for shutdown.
func (t *FdTable) CloseAll() {
	for fd, f := range t.files {
		_ = f.Close()
		delete(t.files, fd)
	}
}

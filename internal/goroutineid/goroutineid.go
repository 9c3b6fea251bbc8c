// Package goroutineid identifies the calling goroutine so that
// single-owner structures can assert they are only ever touched from
// the goroutine that created them.
package goroutineid

import (
	"bytes"
	"runtime"
	"sync"
)

// header starts the first line of a runtime.Stack dump,
// "goroutine N [state]:".
var header = []byte("goroutine ")

var bufPool = sync.Pool{
	New: func() any {
		return make([]byte, 4096)
	},
}

// Get returns the current goroutine's ID, or 0 when the stack header
// cannot be parsed. Callers are expected to capture it once and compare
// on later entries, not to call it per operation.
func Get() int64 {
	buf := bufPool.Get().([]byte)
	defer func() {
		//lint:ignore SA6002 the slice header is pointer-sized
		bufPool.Put(buf)
	}()
	n := runtime.Stack(buf, false)
	return parseHeader(buf[:n])
}

// parseHeader pulls the decimal ID out of the stack header in place.
// No sub-slicing into strings and no splitting keeps this
// allocation-free.
func parseHeader(stack []byte) int64 {
	i := bytes.Index(stack, header)
	if i < 0 {
		return 0
	}
	var id int64
	for _, b := range stack[i+len(header):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + int64(b-'0')
	}
	return id
}

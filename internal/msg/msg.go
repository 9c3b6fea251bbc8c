// Package msg defines the message types flowing over the editor's channel
// fabric: terminal or mock events into the main loop, script requests out
// of the isolate, responses back in, and worker progress notifications.
package msg

import (
	"os"
	"time"
)

// FutureId correlates a script-initiated request with its response. Each
// outstanding operation gets a fresh id; its resolution happens exactly
// once, on a later loop iteration.
type FutureId uint64

// Request is a message posted by the script isolate to the main loop.
type Request interface{ isRequest() }

// TimeoutReq asks the loop to post a TimeoutResp after the duration.
type TimeoutReq struct {
	FutureId FutureId
	Duration time.Duration
}

// FsOpenReq asks the loop to open a file and allocate a descriptor.
type FsOpenReq struct {
	FutureId FutureId
	Path     string
	Flags    int
	Perm     os.FileMode
}

// FsReadReq asks for up to N bytes from an open descriptor.
type FsReadReq struct {
	FutureId FutureId
	Fd       int32
	N        int
}

// FsWriteReq asks to write bytes to an open descriptor.
type FsWriteReq struct {
	FutureId FutureId
	Fd       int32
	Bytes    []byte
}

// FsCloseReq releases an open descriptor.
type FsCloseReq struct {
	FutureId FutureId
	Fd       int32
}

// ImportLoadReq asks the loop to load module source from disk for a
// dynamic import.
type ImportLoadReq struct {
	FutureId  FutureId
	Specifier string
}

func (TimeoutReq) isRequest()    {}
func (FsOpenReq) isRequest()     {}
func (FsReadReq) isRequest()     {}
func (FsWriteReq) isRequest()    {}
func (FsCloseReq) isRequest()    {}
func (ImportLoadReq) isRequest() {}

// Response is a message the loop posts back to the isolate. Future
// returns the id of the request it answers.
type Response interface {
	isResponse()
	Future() FutureId
}

type TimeoutResp struct {
	FutureId FutureId
	Duration time.Duration
}

type FsOpenResp struct {
	FutureId FutureId
	Fd       int32
	Err      error
}

type FsReadResp struct {
	FutureId FutureId
	Bytes    []byte
	Err      error
}

type FsWriteResp struct {
	FutureId FutureId
	N        int
	Err      error
}

type FsCloseResp struct {
	FutureId FutureId
	Err      error
}

type ImportLoadResp struct {
	FutureId  FutureId
	Specifier string
	Source    string
	Err       error
}

func (TimeoutResp) isResponse()    {}
func (FsOpenResp) isResponse()     {}
func (FsReadResp) isResponse()     {}
func (FsWriteResp) isResponse()    {}
func (FsCloseResp) isResponse()    {}
func (ImportLoadResp) isResponse() {}

func (r TimeoutResp) Future() FutureId    { return r.FutureId }
func (r FsOpenResp) Future() FutureId     { return r.FutureId }
func (r FsReadResp) Future() FutureId     { return r.FutureId }
func (r FsWriteResp) Future() FutureId    { return r.FutureId }
func (r FsCloseResp) Future() FutureId    { return r.FutureId }
func (r ImportLoadResp) Future() FutureId { return r.FutureId }

// WorkerNotify is a completion or progress note from a worker task.
// Workers never touch shared editor state; posting one of these is their
// only side effect besides the eventual response.
type WorkerNotify struct {
	Path  string
	Bytes int
	Err   error
}

// Package ui holds the widget payloads mounted into the tree: the root
// container, windows with their text viewports, the command line, and the
// cursor. Widgets draw themselves into the canvas at their actual shape.
package ui

import "sync"

// Contents is the command-line message history. It sits behind a mutex
// because test harnesses read it while the loop is still running; in
// production all writes happen inside the loop.
type Contents struct {
	mu       sync.Mutex
	messages []string
}

func NewContents() *Contents {
	return &Contents{}
}

// Push appends one message line.
func (c *Contents) Push(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, line)
}

// Messages returns a copy of the history.
func (c *Contents) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Last returns the newest message, if any.
func (c *Contents) Last() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return "", false
	}
	return c.messages[len(c.messages)-1], true
}

func (c *Contents) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

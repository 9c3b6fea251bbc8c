// Package tree implements the widget tree: a generational arena of nodes
// with parent/child edges, logical and actual shapes, z-order and draw
// routing. Nodes own a Widget payload that renders onto the canvas.
package tree

import (
	"fmt"
	"sort"

	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
)

// NodeId identifies a node in the arena. The generation makes ids of
// removed nodes detectable: a slot reused for a new node gets a higher
// generation, so stale ids never resolve.
type NodeId struct {
	Index      uint32
	Generation uint32
}

// NilNodeId is the zero NodeId; it never resolves to a node.
var NilNodeId = NodeId{}

// IsNil reports whether the id is the zero id.
func (id NodeId) IsNil() bool {
	return id == NilNodeId
}

// Widget is the capability set every node payload implements.
type Widget interface {
	// Draw renders the widget onto the canvas within shape.
	Draw(c *canvas.Canvas, shape coord.U16Rect)
}

// Kind tags the node payload variants.
type Kind int

const (
	KindRootContainer Kind = iota
	KindWindow
	KindCommandLine
	KindWindowContent
	KindCursor
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindRootContainer:
		return "root-container"
	case KindWindow:
		return "window"
	case KindCommandLine:
		return "command-line"
	case KindWindowContent:
		return "window-content"
	case KindCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

type node struct {
	generation uint32
	occupied   bool

	kind     Kind
	name     string
	payload  Widget
	parent   NodeId
	children []NodeId

	shape   coord.IRect
	actual  coord.U16Rect
	zindex  int
	visible bool
	enabled bool
	policy  coord.TruncatePolicy
}

// Tree owns all widget nodes. It has exactly one root whose actual shape
// equals the canvas size; every other node has exactly one parent and an
// actual shape inside its parent's.
type Tree struct {
	nodes []node
	free  []uint32
	root  NodeId
	size  coord.Size
}

// New creates an empty tree for a canvas of the given size.
func New(size coord.Size) *Tree {
	return &Tree{size: size}
}

// RootId returns the root node id, or NilNodeId before AddRoot.
func (t *Tree) RootId() NodeId {
	return t.root
}

// Size returns the canvas size the tree lays out against.
func (t *Tree) Size() coord.Size {
	return t.size
}

func (t *Tree) alloc() NodeId {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		slot := &t.nodes[idx]
		slot.generation++
		slot.occupied = true
		return NodeId{Index: idx, Generation: slot.generation}
	}
	t.nodes = append(t.nodes, node{generation: 1, occupied: true})
	return NodeId{Index: uint32(len(t.nodes) - 1), Generation: 1}
}

func (t *Tree) get(id NodeId) *node {
	if int(id.Index) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[id.Index]
	if !n.occupied || n.generation != id.Generation {
		return nil
	}
	return n
}

// Contains reports whether the id resolves to a live node.
func (t *Tree) Contains(id NodeId) bool {
	return t.get(id) != nil
}

// AddRoot inserts the root container. It may be called exactly once; the
// root's actual shape is the whole canvas.
func (t *Tree) AddRoot(payload Widget, name string) NodeId {
	if !t.root.IsNil() {
		panic("tree: root already exists")
	}
	id := t.alloc()
	n := t.get(id)
	n.kind = KindRootContainer
	n.name = name
	n.payload = payload
	n.parent = NilNodeId
	n.shape = coord.NewIRect(0, 0, int(t.size.Width), int(t.size.Height))
	n.actual = coord.NewU16Rect(0, 0, t.size.Width, t.size.Height)
	n.visible = true
	n.enabled = true
	t.root = id
	return id
}

// AddChild inserts a node under parent. The child's actual shape is
// computed immediately by clamping its logical shape to the parent, then
// every descendant is recomputed.
func (t *Tree) AddChild(parentId NodeId, kind Kind, payload Widget, shape coord.IRect, zindex int, policy coord.TruncatePolicy, name string) (NodeId, error) {
	parent := t.get(parentId)
	if parent == nil {
		return NilNodeId, fmt.Errorf("tree: parent node %+v does not exist", parentId)
	}
	id := t.alloc()
	n := t.get(id)
	n.kind = kind
	n.name = name
	n.payload = payload
	n.parent = parentId
	n.shape = shape
	n.zindex = zindex
	n.policy = policy
	n.visible = true
	n.enabled = true
	// alloc may have grown the slice; re-resolve the parent.
	parent = t.get(parentId)
	parent.children = append(parent.children, id)
	t.reshape(id)
	return id, nil
}

// Remove severs the node from its parent and drops the whole subtree.
// Removing the root is not allowed.
func (t *Tree) Remove(id NodeId) error {
	n := t.get(id)
	if n == nil {
		return fmt.Errorf("tree: node %+v does not exist", id)
	}
	if id == t.root {
		return fmt.Errorf("tree: cannot remove the root node")
	}
	parent := t.get(n.parent)
	for i, c := range parent.children {
		if c == id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	t.dropSubtree(id)
	return nil
}

func (t *Tree) dropSubtree(id NodeId) {
	n := t.get(id)
	if n == nil {
		return
	}
	for _, c := range n.children {
		t.dropSubtree(c)
	}
	*n = node{generation: n.generation}
	t.free = append(t.free, id.Index)
}

// reshape recomputes the actual shape of id and all of its descendants.
func (t *Tree) reshape(id NodeId) {
	n := t.get(id)
	if n == nil {
		return
	}
	if id == t.root {
		n.actual = coord.NewU16Rect(0, 0, t.size.Width, t.size.Height)
	} else {
		parent := t.get(n.parent)
		n.actual = coord.ClampToParent(n.shape, parent.actual, n.policy)
	}
	for _, c := range n.children {
		t.reshape(c)
	}
}

// Resize updates the canvas size and recomputes every actual shape.
func (t *Tree) Resize(size coord.Size) {
	t.size = size
	if !t.root.IsNil() {
		root := t.get(t.root)
		root.shape = coord.NewIRect(0, 0, int(size.Width), int(size.Height))
		t.reshape(t.root)
	}
}

// Shape returns the node's logical shape.
func (t *Tree) Shape(id NodeId) (coord.IRect, bool) {
	n := t.get(id)
	if n == nil {
		return coord.IRect{}, false
	}
	return n.shape, true
}

// ActualShape returns the node's clamped, absolute shape.
func (t *Tree) ActualShape(id NodeId) (coord.U16Rect, bool) {
	n := t.get(id)
	if n == nil {
		return coord.U16Rect{}, false
	}
	return n.actual, true
}

// SetShape replaces the node's logical shape and reclamps the subtree.
func (t *Tree) SetShape(id NodeId, shape coord.IRect) error {
	n := t.get(id)
	if n == nil {
		return fmt.Errorf("tree: node %+v does not exist", id)
	}
	n.shape = shape
	t.reshape(id)
	return nil
}

// BoundedMoveBy shifts the node's logical shape by (dx, dy); the result is
// reclamped under the node's truncate policy.
func (t *Tree) BoundedMoveBy(id NodeId, dx, dy int) error {
	n := t.get(id)
	if n == nil {
		return fmt.Errorf("tree: node %+v does not exist", id)
	}
	n.shape = n.shape.Translate(dx, dy)
	t.reshape(id)
	return nil
}

// BoundedMoveTo moves the node's logical shape to (x, y); the result is
// reclamped under the node's truncate policy.
func (t *Tree) BoundedMoveTo(id NodeId, x, y int) error {
	n := t.get(id)
	if n == nil {
		return fmt.Errorf("tree: node %+v does not exist", id)
	}
	n.shape = n.shape.MoveTo(x, y)
	t.reshape(id)
	return nil
}

// Parent returns the node's parent id.
func (t *Tree) Parent(id NodeId) (NodeId, bool) {
	n := t.get(id)
	if n == nil {
		return NilNodeId, false
	}
	return n.parent, true
}

// Children returns a copy of the node's child ids.
func (t *Tree) Children(id NodeId) []NodeId {
	n := t.get(id)
	if n == nil {
		return nil
	}
	out := make([]NodeId, len(n.children))
	copy(out, n.children)
	return out
}

// KindOf returns the node's kind tag.
func (t *Tree) KindOf(id NodeId) (Kind, bool) {
	n := t.get(id)
	if n == nil {
		return 0, false
	}
	return n.kind, true
}

// Payload returns the node's widget payload.
func (t *Tree) Payload(id NodeId) (Widget, bool) {
	n := t.get(id)
	if n == nil {
		return nil, false
	}
	return n.payload, true
}

// Visible reports the node's visibility flag.
func (t *Tree) Visible(id NodeId) bool {
	n := t.get(id)
	return n != nil && n.visible
}

// SetVisible sets the node's visibility flag.
func (t *Tree) SetVisible(id NodeId, visible bool) {
	if n := t.get(id); n != nil {
		n.visible = visible
	}
}

// Enabled reports the node's enabled flag.
func (t *Tree) Enabled(id NodeId) bool {
	n := t.get(id)
	return n != nil && n.enabled
}

// SetEnabled sets the node's enabled flag.
func (t *Tree) SetEnabled(id NodeId, enabled bool) {
	if n := t.get(id); n != nil {
		n.enabled = enabled
	}
}

// ZIndex returns the node's z-index among its siblings.
func (t *Tree) ZIndex(id NodeId) int {
	n := t.get(id)
	if n == nil {
		return 0
	}
	return n.zindex
}

// FirstChildOfKind finds the first direct child with the given kind.
func (t *Tree) FirstChildOfKind(parentId NodeId, kind Kind) (NodeId, bool) {
	n := t.get(parentId)
	if n == nil {
		return NilNodeId, false
	}
	for _, c := range n.children {
		if cn := t.get(c); cn != nil && cn.kind == kind {
			return c, true
		}
	}
	return NilNodeId, false
}

// Draw walks the tree breadth-first from the root and renders every
// visible node onto the canvas. A parent always draws before its children;
// among siblings, a higher z-index draws later. An invisible node hides
// its whole subtree.
func (t *Tree) Draw(c *canvas.Canvas) {
	if t.root.IsNil() {
		return
	}
	queue := []NodeId{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := t.get(id)
		if n == nil || !n.visible {
			continue
		}
		if n.payload != nil && !n.actual.IsEmpty() {
			n.payload.Draw(c, n.actual)
		}
		children := make([]NodeId, len(n.children))
		copy(children, n.children)
		sort.SliceStable(children, func(i, j int) bool {
			return t.ZIndex(children[i]) < t.ZIndex(children[j])
		})
		queue = append(queue, children...)
	}
}

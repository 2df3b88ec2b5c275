package types

import "fmt"

// NodeID addresses a node inside a Tree. IDs are stable for the lifetime of
// the tree; a node that is detached by an edit keeps its slot.
type NodeID int32

// NoNode marks an absent child, a missing parent or a deleted root.
const NoNode NodeID = -1

// Path locates a node inside its parent's fields.
type Path struct {
	Field Field
	Index int // slot index for sequence fields, -1 for scalar fields
}

// String renders the path as "field" or "field[i]".
func (p Path) String() string {
	if p.Index < 0 {
		return p.Field.String()
	}
	return fmt.Sprintf("%s[%d]", p.Field, p.Index)
}

var rootPath = Path{Field: FieldNone, Index: -1}

// Node is a single tree node.
//
// Parent, Depth and Path are structural metadata owned by the Tree. They are
// rewritten by Retrace and must not be assigned by callers.
type Node struct {
	Kind Kind
	ID   NodeID

	// Structural metadata
	Parent NodeID
	Depth  int
	Path   Path

	// Payload
	Name     string // Identifier name
	Operator string // unary, update, binary, logical and assignment operator
	Prefix   bool   // UpdateExpression written before its operand
	Computed bool   // MemberExpression a[b], Property [k]: v
	DeclKind string // VariableDeclaration keyword: var, let or const
	Label    string // Break/Continue target, LabeledStatement label
	Value    Value  // Literal value
	Raw      string // Literal source text, Directive text or Raw content

	slots [][]NodeID
}

// arenaChunkSize is the number of Node values pre-allocated per arena chunk.
const arenaChunkSize = 256

// Tree is an arena of nodes addressed by NodeID.
//
// Nodes live in fixed-size chunks so that *Node pointers stay valid while the
// tree grows. Nodes are never freed: deleting a node detaches it and the
// arena is released together with the Tree.
//
// Tree is NOT thread-safe; an optimizer run owns its tree exclusively.
type Tree struct {
	chunks [][]Node
	size   int

	// Root is the program node, or NoNode for an empty tree.
	Root NodeID
}

// NewTree allocates an empty tree pre-warmed with one chunk.
func NewTree() *Tree {
	return &Tree{
		chunks: [][]Node{make([]Node, arenaChunkSize)},
		Root:   NoNode,
	}
}

// Len returns the number of allocated nodes, attached or not.
func (t *Tree) Len() int {
	return t.size
}

// New allocates a node of the given kind with empty child slots.
func (t *Tree) New(kind Kind) NodeID {
	chunk, pos := t.size/arenaChunkSize, t.size%arenaChunkSize
	if chunk == len(t.chunks) {
		t.chunks = append(t.chunks, make([]Node, arenaChunkSize))
	}
	id := NodeID(t.size)
	t.size++

	n := &t.chunks[chunk][pos]
	n.Kind = kind
	n.ID = id
	n.Parent = NoNode
	n.Depth = -1
	n.Path = rootPath
	specs := Schema(kind)
	if len(specs) > 0 {
		n.slots = make([][]NodeID, len(specs))
		for i, spec := range specs {
			if !spec.List {
				n.slots[i] = []NodeID{NoNode}
			}
		}
	}
	return id
}

// Node returns the node for id, or nil for NoNode and out-of-range ids.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= t.size {
		return nil
	}
	return &t.chunks[int(id)/arenaChunkSize][int(id)%arenaChunkSize]
}

// Kind returns the kind of id. NoNode reports an invalid kind.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return kindCount
}

// Is reports whether id is a node of kind k.
func (t *Tree) Is(id NodeID, k Kind) bool {
	n := t.Node(id)
	return n != nil && n.Kind == k
}

// Child returns the child in scalar field f of id, or NoNode.
func (t *Tree) Child(id NodeID, f Field) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	i := slotIndex(n.Kind, f)
	if i < 0 || len(n.slots[i]) == 0 {
		return NoNode
	}
	return n.slots[i][0]
}

// Children returns the sequence in field f of id. The slice is owned by the
// tree and is only valid until the next edit.
func (t *Tree) Children(id NodeID, f Field) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	i := slotIndex(n.Kind, f)
	if i < 0 {
		return nil
	}
	return n.slots[i]
}

// SetChild stores c in field f of id without touching metadata. Callers
// attaching nodes to a live tree must Retrace(id) before the next read.
func (t *Tree) SetChild(id NodeID, f Field, c NodeID) {
	n := t.Node(id)
	i := slotIndex(n.Kind, f)
	if i < 0 {
		panic(fmt.Sprintf("types: %s has no field %s", n.Kind, f))
	}
	if Schema(n.Kind)[i].List {
		panic(fmt.Sprintf("types: %s.%s is a sequence", n.Kind, f))
	}
	n.slots[i][0] = c
}

// SetChildren replaces sequence field f of id without touching metadata.
// Callers attaching nodes to a live tree must Retrace(id) before the next read.
func (t *Tree) SetChildren(id NodeID, f Field, list []NodeID) {
	n := t.Node(id)
	i := slotIndex(n.Kind, f)
	if i < 0 {
		panic(fmt.Sprintf("types: %s has no field %s", n.Kind, f))
	}
	if !Schema(n.Kind)[i].List {
		panic(fmt.Sprintf("types: %s.%s is not a sequence", n.Kind, f))
	}
	n.slots[i] = list
}

// Each calls fn for every present child of id in schema order.
func (t *Tree) Each(id NodeID, fn func(child NodeID, p Path)) {
	n := t.Node(id)
	if n == nil {
		return
	}
	for i, spec := range Schema(n.Kind) {
		for j, c := range n.slots[i] {
			if c == NoNode {
				continue
			}
			idx := j
			if !spec.List {
				idx = -1
			}
			fn(c, Path{Field: spec.Field, Index: idx})
		}
	}
}

// SetRoot makes id the root of the tree and retraces it.
func (t *Tree) SetRoot(id NodeID) {
	t.Root = id
	if n := t.Node(id); n != nil {
		n.Parent = NoNode
		n.Depth = 0
		n.Path = rootPath
		t.Retrace(id)
	}
}

// Retrace assigns parent, depth and path to every descendant of id whose
// ancestry changed. Subtrees whose root already carries the expected metadata
// are skipped. It returns the number of nodes rewritten.
func (t *Tree) Retrace(id NodeID) int {
	n := t.Node(id)
	if n == nil {
		return 0
	}
	touched := 0
	if n.Parent == NoNode && (n.Depth != 0 || n.Path != rootPath) {
		n.Depth = 0
		n.Path = rootPath
		touched++
	}
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := t.Node(cur).Depth + 1
		t.Each(cur, func(c NodeID, p Path) {
			cn := t.Node(c)
			if cn.Parent == cur && cn.Depth == depth && cn.Path == p {
				return
			}
			cn.Parent = cur
			cn.Depth = depth
			cn.Path = p
			touched++
			queue = append(queue, c)
		})
	}
	return touched
}

// Replace puts repl where id sits (its parent's slot, or the root) and
// retraces the affected nodes. id is left detached.
func (t *Tree) Replace(id, repl NodeID) {
	n := t.Node(id)
	parent := n.Parent
	if parent == NoNode {
		t.detach(id)
		t.SetRoot(repl)
		return
	}
	pn := t.Node(parent)
	slot := pn.slots[slotIndex(pn.Kind, n.Path.Field)]
	if n.Path.Index < 0 {
		slot[0] = repl
	} else {
		slot[n.Path.Index] = repl
	}
	t.detach(id)
	if rn := t.Node(repl); rn != nil {
		// Force the replacement's subtree to be retraced even if it was
		// previously attached at an identical position.
		rn.Depth = -1
	}
	t.Retrace(parent)
}

// Remove deletes id from its parent. A sequence slot shrinks and the
// following siblings shift left; a scalar slot becomes NoNode. Removing the
// root empties the tree.
func (t *Tree) Remove(id NodeID) {
	n := t.Node(id)
	parent := n.Parent
	if parent == NoNode {
		t.detach(id)
		t.Root = NoNode
		return
	}
	pn := t.Node(parent)
	i := slotIndex(pn.Kind, n.Path.Field)
	if n.Path.Index < 0 {
		pn.slots[i][0] = NoNode
	} else {
		slot := pn.slots[i]
		pn.slots[i] = append(slot[:n.Path.Index:n.Path.Index], slot[n.Path.Index+1:]...)
	}
	t.detach(id)
	t.Retrace(parent)
}

// ReplaceChildren installs list as sequence field f of an attached node.
// Former children absent from list are detached; nodes in list may come
// from anywhere in the subtree of id or be freshly built. The sequence is
// retraced before returning.
func (t *Tree) ReplaceChildren(id NodeID, f Field, list []NodeID) {
	keep := make(map[NodeID]bool, len(list))
	for _, c := range list {
		keep[c] = true
	}
	for _, c := range t.Children(id, f) {
		if c != NoNode && !keep[c] {
			t.detach(c)
		}
	}
	t.SetChildren(id, f, list)
	for _, c := range list {
		if n := t.Node(c); n != nil && n.Parent != id {
			// Moved from deeper in the subtree: force a retrace.
			n.Depth = -1
		}
	}
	t.Retrace(id)
}

func (t *Tree) detach(id NodeID) {
	if n := t.Node(id); n != nil {
		n.Parent = NoNode
		n.Depth = -1
		n.Path = rootPath
	}
}

// Clone deep-copies the subtree rooted at id. The copy is detached.
func (t *Tree) Clone(id NodeID) NodeID {
	src := t.Node(id)
	if src == nil {
		return NoNode
	}
	c := t.New(src.Kind)
	// Re-read src: New may have grown the arena, but chunks never move.
	src = t.Node(id)
	dst := t.Node(c)
	dst.Name = src.Name
	dst.Operator = src.Operator
	dst.Prefix = src.Prefix
	dst.Computed = src.Computed
	dst.DeclKind = src.DeclKind
	dst.Label = src.Label
	dst.Value = src.Value
	dst.Raw = src.Raw
	for i := range src.slots {
		list := make([]NodeID, len(src.slots[i]))
		for j, child := range src.slots[i] {
			list[j] = t.Clone(child)
		}
		if Schema(src.Kind)[i].List {
			dst.slots[i] = list
		} else {
			dst.slots[i][0] = list[0]
		}
	}
	return c
}

// Verify recomputes parent, depth and path for every node reachable from the
// root and compares them with the recorded metadata. Aliasing (a node reached
// twice) is reported as well.
func (t *Tree) Verify() error {
	if t.Root == NoNode {
		return nil
	}
	root := t.Node(t.Root)
	if root.Parent != NoNode || root.Depth != 0 || root.Path != rootPath {
		return NewError(ErrStructuralInvariant, "root carries parent metadata", t.Root)
	}
	seen := make(map[NodeID]bool, t.size)
	var check func(id NodeID) error
	check = func(id NodeID) error {
		if seen[id] {
			return NewError(ErrStructuralInvariant, "node reachable twice", id)
		}
		seen[id] = true
		n := t.Node(id)
		var err error
		t.Each(id, func(c NodeID, p Path) {
			if err != nil {
				return
			}
			cn := t.Node(c)
			if cn == nil {
				err = NewError(ErrStructuralInvariant, fmt.Sprintf("dangling child at %s", p), id)
				return
			}
			if cn.Parent != id || cn.Depth != n.Depth+1 || cn.Path != p {
				err = NewError(ErrStructuralInvariant,
					fmt.Sprintf("stale metadata: parent=%d depth=%d path=%s, want parent=%d depth=%d path=%s",
						cn.Parent, cn.Depth, cn.Path, id, n.Depth+1, p), c)
				return
			}
			err = check(c)
		})
		return err
	}
	return check(t.Root)
}

// Ancestor returns the nearest ancestor of id (id excluded) whose kind
// satisfies match, or NoNode.
func (t *Tree) Ancestor(id NodeID, match func(Kind) bool) NodeID {
	for n := t.Node(id); n != nil && n.Parent != NoNode; n = t.Node(n.Parent) {
		if match(t.Kind(n.Parent)) {
			return n.Parent
		}
	}
	return NoNode
}

// String returns the kind name of the node.
func (n *Node) String() string {
	return n.Kind.String()
}

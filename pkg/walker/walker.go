// Package walker implements depth-first traversal of a types.Tree with
// callbacks that may edit the tree while it is being walked.
//
// A visitor returns an Action describing what to do with the visited node:
//   - Keep: leave it alone
//   - Delete: remove it (shrinking a sequence, or nulling a scalar field)
//   - Replace: swap in another node, which is re-parented and retraced
//   - Splice: swap in pre-rendered source text wrapped in a Raw node
//
// Metadata is retraced right after every edit, so later callbacks never
// observe stale parent, depth or path values.
//
// # Example
//
//	root, changed := walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
//	    if t.Is(id, types.KindEmptyStatement) {
//	        return walker.Delete()
//	    }
//	    return walker.Keep()
//	})
package walker

import "github.com/sandrolain/esopt/pkg/types"

type actionKind uint8

const (
	actKeep actionKind = iota
	actDelete
	actReplace
	actSplice
)

// Action is the result of a visitor callback.
type Action struct {
	kind actionKind
	node types.NodeID
	text string
}

// Keep leaves the visited node unchanged.
func Keep() Action { return Action{} }

// Delete removes the visited node.
func Delete() Action { return Action{kind: actDelete} }

// Replace swaps the visited node for id. Replacing with NoNode deletes.
func Replace(id types.NodeID) Action {
	if id == types.NoNode {
		return Delete()
	}
	return Action{kind: actReplace, node: id}
}

// Splice swaps the visited node for an opaque node rendering text verbatim.
func Splice(text string) Action { return Action{kind: actSplice, text: text} }

// Visitor is called for each node. The node is identified by id; its kind,
// payload and metadata are read through t.
type Visitor func(t *types.Tree, id types.NodeID) Action

type walker struct {
	t       *types.Tree
	pre     Visitor
	post    Visitor
	changed bool
}

// Walk traverses the subtree rooted at root in schema field order, calling
// pre before a node's children and post after them. Either visitor may be
// nil. It returns the node now standing where root stood (NoNode if it was
// deleted) and whether any edit was made.
//
// When root is the tree root, replacing or deleting it rebinds t.Root.
func Walk(t *types.Tree, root types.NodeID, pre, post Visitor) (types.NodeID, bool) {
	w := &walker{t: t, pre: pre, post: post}
	if t.Node(root) == nil {
		return types.NoNode, false
	}
	return w.visit(root), w.changed
}

// visit walks id and returns what occupies its position afterwards.
func (w *walker) visit(id types.NodeID) types.NodeID {
	if w.pre != nil {
		id = w.apply(id, w.pre(w.t, id))
		if id == types.NoNode {
			return id
		}
	}

	kind := w.t.Kind(id)
	for _, spec := range types.Schema(kind) {
		if !spec.List {
			if c := w.t.Child(id, spec.Field); c != types.NoNode {
				w.visit(c)
			}
			continue
		}
		for i := 0; ; {
			list := w.t.Children(id, spec.Field)
			if i >= len(list) {
				break
			}
			c := list[i]
			if c == types.NoNode {
				i++
				continue
			}
			if w.visit(c) != types.NoNode {
				i++
			}
		}
	}

	if w.post != nil {
		id = w.apply(id, w.post(w.t, id))
	}
	return id
}

func (w *walker) apply(id types.NodeID, act Action) types.NodeID {
	switch act.kind {
	case actDelete:
		w.t.Remove(id)
		w.changed = true
		return types.NoNode
	case actReplace:
		if act.node == id {
			return id
		}
		w.t.Replace(id, act.node)
		w.changed = true
		return act.node
	case actSplice:
		raw := w.t.RawText(act.text)
		w.t.Replace(id, raw)
		w.changed = true
		return raw
	}
	return id
}

package crdttree

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sanity-io/litter"
)

// treeNode is the (parent, metadata) pair stored for a child. child_id is
// never a map key of itself; it lives only as the key in Tree.nodes.
type treeNode[ID NodeID, M Metadata] struct {
	parent   ID
	metadata M
}

// Tree is a mutable parent map plus a child-index, maintained in lock-step.
// It has no protection against cycles on its own — State is responsible
// for invoking IsAncestor before every Upsert.
type Tree[ID NodeID, M Metadata] struct {
	nodes    map[ID]treeNode[ID, M]
	children map[ID]map[ID]struct{}
}

// NewTree returns an empty Tree.
func NewTree[ID NodeID, M Metadata]() *Tree[ID, M] {
	return &Tree[ID, M]{
		nodes:    make(map[ID]treeNode[ID, M]),
		children: make(map[ID]map[ID]struct{}),
	}
}

// GetParent returns child's parent, or false if child is not in the tree.
func (t *Tree[ID, M]) GetParent(child ID) (ID, bool) {
	n, ok := t.nodes[child]
	return n.parent, ok
}

// GetMetadata returns child's metadata, or false if child is not in the tree.
func (t *Tree[ID, M]) GetMetadata(child ID) (M, bool) {
	n, ok := t.nodes[child]
	return n.metadata, ok
}

// Children returns parent's children in ascending NodeID order.
func (t *Tree[ID, M]) Children(parent ID) []ID {
	set := t.children[parent]
	out := make([]ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// IsAncestor reports whether candidateAncestor lies on the parent chain
// from descendant toward the root. The walk terminates in O(depth) because
// the single-parent and acyclic invariants hold on entry.
func (t *Tree[ID, M]) IsAncestor(candidateAncestor, descendant ID) bool {
	target := descendant
	for {
		n, ok := t.nodes[target]
		if !ok {
			return false
		}
		if n.parent == candidateAncestor {
			return true
		}
		target = n.parent
	}
}

// Upsert writes or overwrites child's (parent, metadata) mapping and keeps
// the child-index consistent.
func (t *Tree[ID, M]) Upsert(child, parent ID, metadata M) {
	t.unindex(child)
	t.nodes[child] = treeNode[ID, M]{parent: parent, metadata: metadata}
	set, ok := t.children[parent]
	if !ok {
		set = make(map[ID]struct{})
		t.children[parent] = set
	}
	set[child] = struct{}{}
}

// Remove deletes child's mapping and index entry. Idempotent on an absent
// child.
func (t *Tree[ID, M]) Remove(child ID) {
	t.unindex(child)
	delete(t.nodes, child)
}

func (t *Tree[ID, M]) unindex(child ID) {
	n, ok := t.nodes[child]
	if !ok {
		return
	}
	if set, ok := t.children[n.parent]; ok {
		delete(set, child)
		if len(set) == 0 {
			delete(t.children, n.parent)
		}
	}
}

// NumNodes returns the total number of nodes (triples) in the tree.
func (t *Tree[ID, M]) NumNodes() int {
	return len(t.nodes)
}

// Descendants returns every node reachable from root by repeatedly walking
// Children, root itself excluded. Not used by the CRDT algorithm; a bulk
// query helper for callers and diagnostics.
func (t *Tree[ID, M]) Descendants(root ID) []ID {
	seen := mapset.NewSet[ID]()
	stack := []ID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Contains(id) {
			continue
		}
		seen.Add(id)
		stack = append(stack, t.Children(id)...)
	}
	seen.Remove(root)
	out := seen.ToSlice()
	slices.Sort(out)
	return out
}

// Walk visits root and every descendant depth-first, calling visit with the
// current node and its depth relative to root. Non-recursive, so a deep
// tree will not overflow the stack. Not used by the CRDT algorithm.
func (t *Tree[ID, M]) Walk(root ID, visit func(tree *Tree[ID, M], id ID, depth int)) {
	type frame struct {
		id    ID
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(t, f.id, f.depth)
		children := t.Children(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// RemoveSubtree removes every descendant of root, and root itself when
// includeRoot is true. Useful for emptying a trash subtree once the move
// that trashed it is causally stable. Not used by the CRDT algorithm.
func (t *Tree[ID, M]) RemoveSubtree(root ID, includeRoot bool) {
	for _, c := range t.Children(root) {
		t.RemoveSubtree(c, true)
	}
	if includeRoot {
		t.Remove(root)
	}
}

func init() {
	litter.Config.HidePrivateFields = false
}

// Dump renders the tree's node map with litter, for test failure output and
// debug endpoints.
func (t *Tree[ID, M]) Dump() string {
	return litter.Sdump(t.nodes)
}

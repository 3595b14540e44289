package crdttree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeUpsertAndLookup(t *testing.T) {
	tr := NewTree[int, string]()

	_, ok := tr.GetParent(10)
	require.False(t, ok)

	tr.Upsert(10, 0, "a")
	parent, ok := tr.GetParent(10)
	require.True(t, ok)
	require.Equal(t, 0, parent)

	meta, ok := tr.GetMetadata(10)
	require.True(t, ok)
	require.Equal(t, "a", meta)
}

func TestTreeChildrenIndexStaysConsistent(t *testing.T) {
	tr := NewTree[int, string]()
	tr.Upsert(1, 0, "a")
	tr.Upsert(2, 0, "b")
	tr.Upsert(3, 1, "c")

	require.Equal(t, []int{1, 2}, tr.Children(0))
	require.Equal(t, []int{3}, tr.Children(1))

	// Moving 3 from under 1 to under 2 must update both index entries.
	tr.Upsert(3, 2, "c")
	require.Empty(t, tr.Children(1))
	require.Equal(t, []int{3}, tr.Children(2))
}

func TestTreeRemoveIsIdempotent(t *testing.T) {
	tr := NewTree[int, string]()
	tr.Upsert(1, 0, "a")

	tr.Remove(1)
	_, ok := tr.GetParent(1)
	require.False(t, ok)
	require.Empty(t, tr.Children(0))

	require.NotPanics(t, func() { tr.Remove(1) })
}

func TestTreeIsAncestorWalksTowardRoot(t *testing.T) {
	tr := NewTree[int, string]()
	// 1 -> 2 -> 6 -> 8 ; 1 -> 3 -> 5
	tr.Upsert(2, 1, "2")
	tr.Upsert(3, 1, "3")
	tr.Upsert(5, 3, "5")
	tr.Upsert(6, 2, "6")
	tr.Upsert(8, 6, "8")

	require.True(t, tr.IsAncestor(2, 8))
	require.True(t, tr.IsAncestor(1, 8))
	require.False(t, tr.IsAncestor(2, 5))
	require.False(t, tr.IsAncestor(8, 1), "leaves are never ancestors of the root")
}

func TestTreeWalkVisitsDepthFirst(t *testing.T) {
	tr := NewTree[int, string]()
	tr.Upsert(2, 1, "2")
	tr.Upsert(3, 1, "3")
	tr.Upsert(4, 2, "4")

	var visited []int
	tr.Walk(1, func(_ *Tree[int, string], id int, depth int) {
		visited = append(visited, id)
		_ = depth
	})

	require.Equal(t, []int{1, 2, 4, 3}, visited)
}

func TestTreeRemoveSubtreeDeletesDescendantsOnly(t *testing.T) {
	tr := NewTree[int, string]()
	tr.Upsert(2, 1, "2")
	tr.Upsert(3, 2, "3")

	tr.RemoveSubtree(1, false)
	require.Equal(t, 0, tr.NumNodes(), "1 was never itself a node, but every descendant is gone")
	_, ok := tr.GetParent(2)
	require.False(t, ok)
}

func TestTreeDescendantsExcludesRoot(t *testing.T) {
	tr := NewTree[int, string]()
	tr.Upsert(2, 1, "2")
	tr.Upsert(3, 1, "3")
	tr.Upsert(4, 2, "4")

	require.ElementsMatch(t, []int{2, 3, 4}, tr.Descendants(1))
}

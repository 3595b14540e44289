package main

import (
	"fmt"

	crdttree "github.com/maidsafe/crdt-tree/crdttree"
	"github.com/sanity-io/litter"
)

// Demonstrates the paper's concurrent-move scenario: two replicas move the
// same node to different new parents at "the same time", then exchange
// ops. They must converge on the mover with the greater timestamp.
func main() {
	litter.Config.HidePrivateFields = false

	r1 := crdttree.NewReplica[int, string, string]("r1")
	r2 := crdttree.NewReplica[int, string, string]("r2")

	const root, a, b, c = 1, 2, 3, 4

	setup := r1.OpMoves([]crdttree.Move[int, string]{
		{ChildID: root, ParentID: 0, Metadata: "root"},
		{ChildID: a, ParentID: root, Metadata: "a"},
		{ChildID: b, ParentID: root, Metadata: "b"},
		{ChildID: c, ParentID: root, Metadata: "c"},
	})
	r1.ApplyOps(setup)
	r2.ApplyOps(setup)

	fmt.Println("initial tree on both replicas:")
	r1.State().Tree().Walk(root, printNode)

	// r1 moves a under b; r2 "simultaneously" moves a under c.
	op1 := r1.OpMove(a, b, "a")
	op2 := r2.OpMove(a, c, "a")

	r1.ApplyOpLocal(op1)
	r2.ApplyOpLocal(op2)

	r1.ApplyOp(op2)
	r2.ApplyOp(op1)

	fmt.Println("\nreplica r1 after merging r2's op:")
	r1.State().Tree().Walk(root, printNode)

	fmt.Println("\nreplica r2 after merging r1's op:")
	r2.State().Tree().Walk(root, printNode)

	if litter.Sdump(r1.State().Log()) == litter.Sdump(r2.State().Log()) {
		fmt.Println("\nconverged: r1 and r2 hold identical logs and trees")
	} else {
		fmt.Println("\nwarning: r1 and r2 diverged")
	}
}

func printNode(tree *crdttree.Tree[int, string], id int, depth int) {
	meta, ok := tree.GetMetadata(id)
	if !ok {
		meta = "?"
	}
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Printf("%s (id=%d)\n", meta, id)
}

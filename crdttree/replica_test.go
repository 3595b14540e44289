package crdttree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplicaOpMoveStampsIncreasingTimestamps(t *testing.T) {
	r := NewReplica[int, string, string]("actor-a")

	op1 := r.OpMove(1, 0, "a")
	op2 := r.OpMove(2, 1, "b")

	require.True(t, op1.Timestamp.Less(op2.Timestamp))
	require.Equal(t, "actor-a", op1.Timestamp.Actor)

	// OpMove does not apply the op, so the tree is still empty.
	require.Equal(t, 0, r.State().Tree().NumNodes())
}

func TestReplicaApplyOpLocalDoesNotReMergeItsOwnClock(t *testing.T) {
	r := NewReplica[int, string, string]("actor-a")
	op := r.OpMove(1, 0, "a")
	r.ApplyOpLocal(op)

	require.Equal(t, uint64(1), r.Time().Counter)
	_, ok := r.State().Tree().GetParent(1)
	require.True(t, ok)
}

func TestReplicaApplyOpMergesRemoteClock(t *testing.T) {
	local := NewReplica[int, string, string]("local")
	remote := NewReplica[int, string, string]("remote")

	remoteOp := remote.OpMove(1, 0, "a")
	remote.ApplyOpLocal(remoteOp)

	local.ApplyOp(remoteOp)

	require.Equal(t, remoteOp.Timestamp.Counter, local.Time().Counter)
	// local's own next op must still be strictly greater than anything it
	// has observed.
	nextLocal := local.OpMove(2, 1, "b")
	require.True(t, remoteOp.Timestamp.Less(nextLocal.Timestamp))
}

func TestReplicaOpMovesBatchAvoidsCollision(t *testing.T) {
	r := NewReplica[int, string, string]("actor-a")

	batch := r.OpMoves([]Move[int, string]{
		{ChildID: 1, ParentID: 0, Metadata: "a"},
		{ChildID: 2, ParentID: 1, Metadata: "b"},
		{ChildID: 3, ParentID: 1, Metadata: "c"},
	})

	require.Len(t, batch, 3)
	for i := 1; i < len(batch); i++ {
		require.True(t, batch[i-1].Timestamp.Less(batch[i].Timestamp))
	}

	r.ApplyOps(batch)
	require.Equal(t, 3, r.State().Tree().NumNodes())
}

func TestReplicaTwoReplicasConverge(t *testing.T) {
	r1 := NewReplica[int, string, string]("r1")
	r2 := NewReplica[int, string, string]("r2")

	setup := r1.OpMoves([]Move[int, string]{
		{ChildID: 10, ParentID: 0, Metadata: "root"},
		{ChildID: 20, ParentID: 10, Metadata: "a"},
		{ChildID: 30, ParentID: 10, Metadata: "b"},
	})
	r1.ApplyOps(setup)
	r2.ApplyOps(setup)

	op1 := r1.OpMove(20, 30, "a") // r1 moves a under b
	op2 := r2.OpMove(20, 10, "a-renamed")

	r1.ApplyOpLocal(op1)
	r2.ApplyOpLocal(op2)

	r1.ApplyOp(op2)
	r2.ApplyOp(op1)

	p1, ok1 := r1.State().Tree().GetParent(20)
	p2, ok2 := r2.State().Tree().GetParent(20)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, p1, p2)
	require.Equal(t, r1.State().Log(), r2.State().Log())
}

func TestReplicaCausallyStableThresholdIsMinAcrossActors(t *testing.T) {
	r := NewReplica[int, string, string]("hub")

	_, ok := r.CausallyStableThreshold()
	require.False(t, ok, "no threshold before any op is applied")

	opA := Operation[int, string, string]{Timestamp: Timestamp[string]{Counter: 5, Actor: "A"}, ChildID: 1, ParentID: 0, Metadata: "a"}
	opB := Operation[int, string, string]{Timestamp: Timestamp[string]{Counter: 2, Actor: "B"}, ChildID: 2, ParentID: 0, Metadata: "b"}

	r.ApplyOp(opA)
	r.ApplyOp(opB)

	threshold, ok := r.CausallyStableThreshold()
	require.True(t, ok)
	require.Equal(t, Timestamp[string]{Counter: 2, Actor: "B"}, threshold, "the lagging actor's latest op is the threshold")
}

func TestReplicaTruncateLogUsesCausallyStableThreshold(t *testing.T) {
	r := NewReplica[int, string, string]("hub")

	opA1 := Operation[int, string, string]{Timestamp: Timestamp[string]{Counter: 1, Actor: "A"}, ChildID: 1, ParentID: 0, Metadata: "a"}
	opA2 := Operation[int, string, string]{Timestamp: Timestamp[string]{Counter: 2, Actor: "A"}, ChildID: 2, ParentID: 1, Metadata: "b"}
	opB1 := Operation[int, string, string]{Timestamp: Timestamp[string]{Counter: 1, Actor: "B"}, ChildID: 3, ParentID: 0, Metadata: "c"}

	r.ApplyOp(opA1)
	r.ApplyOp(opA2)
	r.ApplyOp(opB1)

	require.Len(t, r.State().Log(), 3)

	truncated := r.TruncateLog()
	require.True(t, truncated)
	// threshold is min(A's latest=2, B's latest=1) == (1, B); entries with
	// timestamp < (1, B) are discarded. (1,A) < (1,B) so it goes too.
	require.Len(t, r.State().Log(), 2)
}

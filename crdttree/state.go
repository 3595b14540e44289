package crdttree

import (
	"sort"

	"github.com/sanity-io/litter"
)

// State owns a Tree and a timestamp-ordered log of LogOperations. Applying
// the Operations underlying the log in order, starting from an empty tree,
// always yields exactly Tree(). State has no fallible operations: every
// Operation is applied, discarded (self-parent or cycle), or deduplicated —
// never an error.
type State[ID NodeID, M Metadata, A ActorID] struct {
	tree *Tree[ID, M]
	log  []LogOperation[ID, M, A] // ascending by Timestamp
}

// NewState returns an empty State.
func NewState[ID NodeID, M Metadata, A ActorID]() *State[ID, M, A] {
	return &State[ID, M, A]{tree: NewTree[ID, M]()}
}

// Tree returns the current tree, read-only.
func (s *State[ID, M, A]) Tree() *Tree[ID, M] {
	return s.tree
}

// Log returns a copy of the current log, ascending by Timestamp.
func (s *State[ID, M, A]) Log() []LogOperation[ID, M, A] {
	out := make([]LogOperation[ID, M, A], len(s.log))
	copy(out, s.log)
	return out
}

// ApplyOp integrates a single Operation, local or remote. It is idempotent
// for an Operation whose Timestamp already appears in the log.
//
// On a fresh Timestamp, it undoes every logged entry with a greater
// Timestamp (newest first), applies op, then redoes the undone entries in
// ascending Timestamp order against the new pre-state. Because do_op is a
// deterministic function of the current tree, every replica that observes
// the same set of Operations reaches the same discard decisions and the
// same final tree, regardless of delivery order.
func (s *State[ID, M, A]) ApplyOp(op Operation[ID, M, A]) {
	idx := sort.Search(len(s.log), func(i int) bool {
		return !s.log[i].Timestamp.Less(op.Timestamp)
	})

	if idx < len(s.log) && s.log[idx].Timestamp.Equal(op.Timestamp) {
		return
	}

	tail := make([]LogOperation[ID, M, A], len(s.log)-idx)
	copy(tail, s.log[idx:])

	for i := len(tail) - 1; i >= 0; i-- {
		s.undoOp(tail[i])
	}

	rebuilt := make([]LogOperation[ID, M, A], 0, len(tail)+1)
	if lop, ok := s.doOp(op); ok {
		rebuilt = append(rebuilt, lop)
	}
	for _, entry := range tail {
		if lop, ok := s.doOp(entry.Operation()); ok {
			rebuilt = append(rebuilt, lop)
		}
	}

	head := make([]LogOperation[ID, M, A], idx)
	copy(head, s.log[:idx])
	s.log = append(head, rebuilt...)
}

// ApplyOps applies each Operation in the order supplied.
func (s *State[ID, M, A]) ApplyOps(ops []Operation[ID, M, A]) {
	for _, op := range ops {
		s.ApplyOp(op)
	}
}

// TruncateLogBefore discards the log prefix with Timestamp strictly less
// than t. After truncation State can no longer correctly integrate any
// Operation with an earlier Timestamp; callers must ensure such Operations
// have already been delivered everywhere. This is a liveness optimization,
// not a safety one.
func (s *State[ID, M, A]) TruncateLogBefore(t Timestamp[A]) {
	idx := sort.Search(len(s.log), func(i int) bool {
		return !s.log[i].Timestamp.Less(t)
	})
	kept := make([]LogOperation[ID, M, A], len(s.log)-idx)
	copy(kept, s.log[idx:])
	s.log = kept
}

// doOp applies a single Operation to the tree and returns the produced
// LogOperation, or false if the operation is discarded. An operation is
// discarded, silently and without touching the tree or log, when child ==
// parent (self-parent) or when child is already an ancestor of parent
// (the move would create a cycle).
func (s *State[ID, M, A]) doOp(op Operation[ID, M, A]) (LogOperation[ID, M, A], bool) {
	oldParent, hadOldParent := s.tree.GetParent(op.ChildID)
	oldMetadata, _ := s.tree.GetMetadata(op.ChildID)

	if op.ChildID == op.ParentID || s.tree.IsAncestor(op.ChildID, op.ParentID) {
		return LogOperation[ID, M, A]{}, false
	}

	s.tree.Upsert(op.ChildID, op.ParentID, op.Metadata)

	return LogOperation[ID, M, A]{
		Timestamp:    op.Timestamp,
		ChildID:      op.ChildID,
		OldParentID:  oldParent,
		OldMetadata:  oldMetadata,
		HadOldParent: hadOldParent,
		NewParentID:  op.ParentID,
		NewMetadata:  op.Metadata,
	}, true
}

// undoOp inverts a previously applied LogOperation against the tree.
func (s *State[ID, M, A]) undoOp(entry LogOperation[ID, M, A]) {
	s.tree.Remove(entry.ChildID)
	if entry.HadOldParent {
		s.tree.Upsert(entry.ChildID, entry.OldParentID, entry.OldMetadata)
	}
}

// DebugString renders the log with litter, for test failure output.
func (s *State[ID, M, A]) DebugString() string {
	return litter.Sdump(s.log)
}

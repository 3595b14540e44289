package crdttree

// Operation is a caller's request that, at Timestamp, ChildID's parent
// become ParentID and its metadata become Metadata. It is an immutable
// value; equality is by all fields. Deletion has no dedicated operation —
// the caller designates a well-known "trash" NodeID and deletes a node by
// moving it there.
type Operation[ID NodeID, M Metadata, A ActorID] struct {
	Timestamp Timestamp[A]
	ChildID   ID
	ParentID  ID
	Metadata  M
}

// LogOperation is the journal entry State produces when it applies an
// Operation. It additionally captures the child's parent and metadata
// immediately before the move (or their absence, if the child did not yet
// exist), which is exactly enough to invert the mutation.
type LogOperation[ID NodeID, M Metadata, A ActorID] struct {
	Timestamp    Timestamp[A]
	ChildID      ID
	OldParentID  ID
	OldMetadata  M
	HadOldParent bool
	NewParentID  ID
	NewMetadata  M
}

// Operation reconstructs the Operation that produced this LogOperation.
func (l LogOperation[ID, M, A]) Operation() Operation[ID, M, A] {
	return Operation[ID, M, A]{
		Timestamp: l.Timestamp,
		ChildID:   l.ChildID,
		ParentID:  l.NewParentID,
		Metadata:  l.NewMetadata,
	}
}

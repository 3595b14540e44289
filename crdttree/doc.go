// Package crdttree implements a Conflict-free Replicated Data Type for a
// mutable tree, following the replay-based move algorithm of Kleppmann et
// al., "A highly-available move operation for replicated trees and
// distributed filesystems".
//
// Callers supply three type parameters: NodeID (identifies a tree node),
// Metadata (the payload attached to a node, e.g. a filename), and ActorID
// (identifies a replica). Deletion has no dedicated operation; the caller
// designates a well-known "trash" NodeID and deletes by moving a node there.
package crdttree

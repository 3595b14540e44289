package crdttree

import "cmp"

// NodeID identifies a node in the tree. Total order lets Tree.Children
// return entries in a deterministic order across replicas.
type NodeID interface {
	cmp.Ordered
}

// ActorID identifies a replica. Total order breaks ties between two
// Timestamps that share the same counter.
type ActorID interface {
	cmp.Ordered
}

// Metadata is the caller-defined payload attached to a tree node, e.g. a
// filename or a set of file attributes. Equality is required so Operation
// and LogOperation values, which carry Metadata, are comparable with ==.
type Metadata interface {
	comparable
}

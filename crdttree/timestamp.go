package crdttree

// Timestamp totally orders Operations across every replica: counter first,
// then actor. Two distinct replicas never produce equal timestamps because
// actor differs between them.
type Timestamp[A ActorID] struct {
	Counter uint64
	Actor   A
}

// Less reports whether t sorts strictly before other.
func (t Timestamp[A]) Less(other Timestamp[A]) bool {
	if t.Counter != other.Counter {
		return t.Counter < other.Counter
	}
	return t.Actor < other.Actor
}

// Equal reports whether t and other are the same timestamp.
func (t Timestamp[A]) Equal(other Timestamp[A]) bool {
	return t.Counter == other.Counter && t.Actor == other.Actor
}

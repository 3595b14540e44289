package crdttree

// Move is a single (child, parent, metadata) request, used by
// Replica.OpMoves to stamp a batch of local moves at once.
type Move[ID NodeID, M Metadata] struct {
	ChildID  ID
	ParentID ID
	Metadata M
}

// Replica is a thin facade owning a Clock and a State. It is not
// internally synchronized: concurrent calls on the same Replica are the
// caller's responsibility to serialize.
type Replica[ID NodeID, M Metadata, A ActorID] struct {
	clock *Clock[A]
	state *State[ID, M, A]

	// latestByActor tracks, per actor, the greatest Timestamp this replica
	// has applied (locally issued or received). Its minimum across actors
	// is the causally stable threshold: no future Operation can have an
	// earlier Timestamp from an actor whose latest is already past it.
	latestByActor map[A]Timestamp[A]
}

// NewReplica returns a fresh Replica for actor, with counter 0 and an
// empty State.
func NewReplica[ID NodeID, M Metadata, A ActorID](actor A) *Replica[ID, M, A] {
	return &Replica[ID, M, A]{
		clock:         NewClock[A](actor),
		state:         NewState[ID, M, A](),
		latestByActor: make(map[A]Timestamp[A]),
	}
}

// OpMove stamps a move via Clock.Tick and returns the Operation without
// applying it. The caller chooses when to broadcast, apply locally via
// ApplyOpLocal, or discard.
func (r *Replica[ID, M, A]) OpMove(child, parent ID, metadata M) Operation[ID, M, A] {
	return Operation[ID, M, A]{
		Timestamp: r.clock.Tick(),
		ChildID:   child,
		ParentID:  parent,
		Metadata:  metadata,
	}
}

// OpMoves stamps a batch of moves in order, each with a strictly greater
// Timestamp than the last, and returns them without applying any of them.
func (r *Replica[ID, M, A]) OpMoves(moves []Move[ID, M]) []Operation[ID, M, A] {
	ops := make([]Operation[ID, M, A], 0, len(moves))
	for _, mv := range moves {
		ops = append(ops, r.OpMove(mv.ChildID, mv.ParentID, mv.Metadata))
	}
	return ops
}

// ApplyOpLocal feeds a locally-stamped Operation into State. It does not
// merge the Clock, since a local OpMove already advanced it.
func (r *Replica[ID, M, A]) ApplyOpLocal(op Operation[ID, M, A]) {
	r.recordLatest(op.Timestamp)
	r.state.ApplyOp(op)
}

// ApplyOp integrates a remote Operation: merges its Timestamp into Clock,
// then delegates to State.
func (r *Replica[ID, M, A]) ApplyOp(op Operation[ID, M, A]) {
	r.clock.Merge(op.Timestamp)
	r.recordLatest(op.Timestamp)
	r.state.ApplyOp(op)
}

// ApplyOps applies each Operation in the order supplied via ApplyOp.
func (r *Replica[ID, M, A]) ApplyOps(ops []Operation[ID, M, A]) {
	for _, op := range ops {
		r.ApplyOp(op)
	}
}

func (r *Replica[ID, M, A]) recordLatest(t Timestamp[A]) {
	if latest, ok := r.latestByActor[t.Actor]; ok && !latest.Less(t) {
		return
	}
	r.latestByActor[t.Actor] = t
}

// CausallyStableThreshold returns the minimum, across every actor this
// replica has seen, of that actor's latest applied Timestamp. It is false
// if no Operation has been applied yet.
func (r *Replica[ID, M, A]) CausallyStableThreshold() (Timestamp[A], bool) {
	var min Timestamp[A]
	found := false
	for _, t := range r.latestByActor {
		if !found || t.Less(min) {
			min = t
			found = true
		}
	}
	return min, found
}

// TruncateLog truncates State's log before the current causally stable
// threshold, and reports whether any entries were discarded. It is a
// caller-invoked policy built atop State.TruncateLogBefore; the CRDT core
// never calls it on its own.
func (r *Replica[ID, M, A]) TruncateLog() bool {
	t, ok := r.CausallyStableThreshold()
	if !ok {
		return false
	}
	before := len(r.state.log)
	r.state.TruncateLogBefore(t)
	return len(r.state.log) != before
}

// State returns the underlying State, for inspection.
func (r *Replica[ID, M, A]) State() *State[ID, M, A] {
	return r.state
}

// Time returns the latest Timestamp this replica has produced or observed.
func (r *Replica[ID, M, A]) Time() Timestamp[A] {
	return Timestamp[A]{Counter: r.clock.Observed(), Actor: r.clock.Actor()}
}

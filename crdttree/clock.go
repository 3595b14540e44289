package crdttree

// Clock is a Lamport-style timestamp generator tied to one actor. It
// guarantees that the next locally-stamped Timestamp is strictly greater
// than any Timestamp it has previously produced or observed. Total
// ordering is a property of Timestamp, not of Clock.
type Clock[A ActorID] struct {
	actor   A
	counter uint64
}

// NewClock returns a Clock for actor with counter 0.
func NewClock[A ActorID](actor A) *Clock[A] {
	return &Clock[A]{actor: actor}
}

// Tick increments the counter and returns the freshly stamped Timestamp.
func (c *Clock[A]) Tick() Timestamp[A] {
	c.counter++
	return Timestamp[A]{Counter: c.counter, Actor: c.actor}
}

// Merge folds an observed Timestamp into the clock without incrementing:
// counter becomes max(counter, t.Counter).
func (c *Clock[A]) Merge(t Timestamp[A]) {
	if t.Counter > c.counter {
		c.counter = t.Counter
	}
}

// Observed returns the current counter, for diagnostics and tests.
func (c *Clock[A]) Observed() uint64 {
	return c.counter
}

// Actor returns the actor this clock stamps timestamps with.
func (c *Clock[A]) Actor() A {
	return c.actor
}

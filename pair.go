package portal

import (
	"sync"

	"github.com/zoxc-go/portal/internal/event"
)

// Pair is the owning container for both halves of a bidirectional
// channel: two parts and the two events their endpoints hold.
// Endpoints are lightweight handles into a Pair, and the Pair is what
// gets closed, so destruction of the shared parts and events happens
// exactly once regardless of which endpoint (or both) a caller drops
// first.
type Pair struct {
	parts        [2]*part
	events       [2]*event.Event
	uniprocessor bool
	closeOnce    sync.Once
}

// NewPair allocates a portal pair: two parts, each with its own ring
// of the given capacity, and two endpoints' worth of events. A
// capacity of 0 selects DefaultCapacity (512); any other value must
// be a power of two or NewPair panics.
//
// uniprocessor selects an alternate publish mode: when true, endpoints
// built from this pair publish their write counter immediately on
// every Write instead of batching it behind Flush/Notify. Use this
// only on single-core targets where hardware store reordering cannot
// happen; it must be false on any multi-core target.
func NewPair(capacity uint64, uniprocessor bool) *Pair {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &Pair{
		parts:        [2]*part{newPart(capacity), newPart(capacity)},
		events:       [2]*event.Event{event.New(), event.New()},
		uniprocessor: uniprocessor,
	}
}

// Endpoint returns the handle for side i (0 or 1). Endpoint(0) and
// Endpoint(1) are mirror images of each other: each one's remote part
// is the other's local part, so writes from one land in the ring the
// other reads.
func (p *Pair) Endpoint(i int) *Endpoint {
	if i != 0 && i != 1 {
		panic("portal: endpoint index must be 0 or 1")
	}
	other := 1 - i
	ep := &Endpoint{
		remote:       p.parts[other],
		local:        p.parts[i],
		ownedEvent:   p.events[i],
		uniprocessor: p.uniprocessor,
	}
	ep.pendingWriteCount = ep.remote.writeCount.Load()
	return ep
}

// Close tears down both events. It is idempotent and safe to call
// from either endpoint's goroutine, or both; only the first call has
// an effect.
func (p *Pair) Close() {
	p.closeOnce.Do(func() {
		p.events[0].Close()
		p.events[1].Close()
	})
}

package portal

import (
	"sync/atomic"

	"github.com/zoxc-go/portal/internal/event"
)

// part is one direction of a portal pair: a ring of messages plus the
// counters and wake-up slots that control it. Only the producer side
// (the endpoint for which this part is remote) writes writeCount and
// buffer slots; only the consumer side (the endpoint for which this
// part is local) writes readCount, eventSlot, msgEventSlot and msgID.
// Both sides may read all of them.
//
// Fields are laid out and padded to keep the producer's and
// consumer's hot counters off each other's cache line.
type part struct {
	readCount atomic.Uint64
	_         [cacheLinePad - 8]byte

	writeCount atomic.Uint64
	_          [cacheLinePad - 8]byte

	eventSlot    atomic.Pointer[event.Event]
	msgEventSlot atomic.Pointer[event.Event]
	msgID        atomic.Uint64
	_            [cacheLinePad - 24]byte

	mask   uint64
	buffer []Message
}

func newPart(capacity uint64) *part {
	if !isPowerOfTwo(capacity) {
		panic("portal: capacity must be a power of two")
	}
	return &part{
		mask:   capacity - 1,
		buffer: make([]Message, capacity),
	}
}

// pendingMsgs reports whether the consumer has messages left to read.
// Read with plain atomic loads: a stale view only costs a spurious
// extra wait-recheck or an extra yield, never corruption.
func (p *part) pendingMsgs() bool {
	return p.readCount.Load() != p.writeCount.Load()
}

func (p *part) capacity() uint64 {
	return uint64(len(p.buffer))
}

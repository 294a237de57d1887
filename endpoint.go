package portal

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/zoxc-go/portal/internal/event"
)

// Endpoint is one side of a portal pair: a producer toward remote, a
// consumer from local, and one privately owned event used only when
// this endpoint is about to block. pendingWriteCount is the
// producer-private shadow of remote.writeCount used to batch writes —
// it belongs to the endpoint, never to the shared part, so it is a
// plain uint64, not atomic.
type Endpoint struct {
	remote *part
	local  *part

	ownedEvent *event.Event

	pendingWriteCount uint64
	uniprocessor      bool
}

// Write publishes one message into the peer's ring. It does not make
// the message visible to the peer by itself: call Flush or Notify to
// publish the batch, unless this pair was built with uniprocessor
// enabled, in which case every Write publishes immediately.
//
// If the ring is full, Write flushes whatever batch is outstanding so
// far (otherwise a charity-woken consumer would find an unpublished,
// apparently-still-empty ring and gain nothing from waking), then
// charity-wakes a consumer that may already be blocked waiting on it,
// bumps backpressure (if non-nil), and busy-yields via runtime.Gosched
// until space frees up. Flushing before the charity wake matters: the
// consumer, once woken, must observe the full ring, not just the part
// of it that was already published.
func (ep *Endpoint) Write(msg Message, backpressure *atomic.Uint64) {
	capacity := ep.remote.capacity()

	readCount := ep.remote.readCount.Load()
	used := ep.pendingWriteCount - readCount

	if used >= capacity {
		ep.Flush()
		if ev := ep.remote.eventSlot.Load(); ev != nil {
			ev.Set()
		}
		if backpressure != nil {
			backpressure.Add(1)
		}
		for {
			runtime.Gosched()
			readCount = ep.remote.readCount.Load()
			if ep.pendingWriteCount-readCount < capacity {
				break
			}
		}
	}

	ep.remote.buffer[ep.pendingWriteCount&ep.remote.mask] = msg
	ep.pendingWriteCount++

	if ep.uniprocessor {
		ep.remote.writeCount.Store(ep.pendingWriteCount)
	}
}

// Flush publishes the deferred batch: if there is anything unpublished,
// it stores pendingWriteCount into remote.writeCount. The atomic store
// is what makes every message store from the batch visible to the
// peer's loads before the counter moves, per the Go memory model's
// guarantee that an atomic store happens-before a later atomic load
// observing it.
func (ep *Endpoint) Flush() {
	if ep.pendingWriteCount != ep.remote.writeCount.Load() {
		ep.remote.writeCount.Store(ep.pendingWriteCount)
	}
}

// Notify flushes, then wakes a blocked peer if one is armed and the
// ring is now non-empty. Cheap and idempotent when nobody is waiting.
func (ep *Endpoint) Notify() {
	ep.Flush()
	if ev := ep.remote.eventSlot.Load(); ev != nil && ep.remote.pendingMsgs() {
		ev.Set()
	}
}

// WriteAndNotify writes one message, flushes, and unconditionally sets
// the peer's event if armed — used by the sync overlay for
// single-message request/reply where a normal Notify's "is the ring
// non-empty" check is redundant.
func (ep *Endpoint) WriteAndNotify(msg Message) {
	ep.Write(msg, nil)
	ep.Flush()
	if ev := ep.remote.eventSlot.Load(); ev != nil {
		ev.Set()
	}
}

// Pending returns up to N contiguous unread messages from the local
// ring as a slice borrowed directly from the ring's backing array — no
// copy is performed. The slice is valid only until the next call to
// Read on this endpoint; the caller must finish consuming the
// messages by value before calling Read.
func (ep *Endpoint) Pending() []Message {
	readCount := ep.local.readCount.Load()
	writeCount := ep.local.writeCount.Load()

	offset := readCount & ep.local.mask
	available := writeCount - readCount
	if maxRun := ep.local.capacity() - offset; available > maxRun {
		available = maxRun
	}

	return ep.local.buffer[offset : offset+available]
}

// Occupancy reports how many unread messages are currently in the
// local ring: write_count - read_count, including any that wrapped
// past the end of the backing array and so would not all show up in
// one Pending call.
func (ep *Endpoint) Occupancy() uint64 {
	return ep.local.writeCount.Load() - ep.local.readCount.Load()
}

// Read commits consumption of n messages previously returned by
// Pending, making their slots available for the peer to reuse. n must
// not exceed the value most recently returned by Pending.
func (ep *Endpoint) Read(n uint64) {
	ep.local.readCount.Add(n)
}

// Wait blocks until the local ring is non-empty, using an arm-then-
// recheck handshake to avoid a lost wake-up: flush/notify any outbound
// batch first (this matters when the calling goroutine alternates
// direction), arm this endpoint's event into local.eventSlot, then
// recheck emptiness before actually blocking. Go's atomic operations
// are sequentially consistent, which gives the arm store and the
// emptiness reload the ordering this handshake needs.
//
// A nil ctx (or one that is never cancelled) blocks uncancellably;
// callers that need cancellable shutdown should pass a context tied
// to that shutdown signal.
func (ep *Endpoint) Wait(ctx context.Context) error {
	ep.Notify()

	ep.ownedEvent.Clear()
	ep.local.eventSlot.Store(ep.ownedEvent)

	var waitErr error
	if !ep.local.pendingMsgs() {
		waitErr = ep.ownedEvent.Wait(ctx)
	}

	ep.local.eventSlot.Store(nil)
	return waitErr
}

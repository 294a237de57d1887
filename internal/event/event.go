// Package event implements the manual-reset, set-coalescing binary
// event primitive the portal package treats as an external
// collaborator: alloc/free, set, clear, and a blocking wait.
//
// Semantics: Set transitions the event to signalled and releases a
// blocked waiter; multiple Sets between Clears coalesce into a single
// signalled state. Clear resets to non-signalled. Wait returns
// immediately if already signalled, otherwise blocks until Set (or
// until the supplied context is done). The primitive supports a
// single waiter at a time, matching the one-consumer-per-endpoint
// contract of the channel that uses it.
package event

import "context"

// Event is a one-shot, manual-reset wakeup signal.
type Event struct {
	impl eventImpl
}

// New allocates an event in the non-signalled state.
func New() *Event {
	return &Event{impl: newEventImpl()}
}

// Close releases any OS resources the event holds. An event may be
// reused after Close only if the platform implementation documents
// that; the portable fallback does not require it.
func (e *Event) Close() {
	e.impl.close()
}

// Set transitions the event to signalled, waking a blocked Wait if
// one exists. Redundant Sets between Clears are cheap no-ops.
func (e *Event) Set() {
	e.impl.set()
}

// Clear resets the event to non-signalled.
func (e *Event) Clear() {
	e.impl.clear()
}

// Wait blocks until the event is signalled or ctx is done. A nil ctx
// (or one that is never cancelled) blocks uncancellably.
// portal.Endpoint.Wait and SyncQuery pass their caller's ctx through
// unchanged.
func (e *Event) Wait(ctx context.Context) error {
	return e.impl.wait(ctx)
}

type eventImpl interface {
	close()
	set()
	clear()
	wait(ctx context.Context) error
}

package portal

import "context"

// SyncQuery implements the requester side of a synchronous
// request/reply overlay on top of the ordinary ring: it arms this
// endpoint's own event as the reply event, writes msg, and blocks
// until a SyncReply carrying the same msgID fires the event, or ctx is
// done (in which case ctx's error is returned). A SyncReply with a
// different id, or an ordinary Write/Notify from the peer, does not
// fire the reply event. The reply message itself is not returned by SyncQuery — it
// lands as the next pending message in this endpoint's local ring, to
// be fetched with the usual Pending/Read.
//
// Only one query may be outstanding per direction at a time: the
// single msgID/msgEventSlot pair is not a queue. Calling SyncQuery
// again before the previous one returns is not supported.
func (ep *Endpoint) SyncQuery(ctx context.Context, msg Message, msgID uint64) error {
	ep.local.msgID.Store(msgID)

	ep.ownedEvent.Clear()
	ep.local.msgEventSlot.Store(ep.ownedEvent)

	ep.WriteAndNotify(msg)

	err := ep.ownedEvent.Wait(ctx)
	ep.local.msgEventSlot.Store(nil)
	return err
}

// SyncReply answers a pending SyncQuery if the peer is waiting on
// msgID; otherwise it falls back to a normal WriteAndNotify. When it
// does match, the reply is written and flushed before the reply event
// is set, so the peer, once woken, observes the message the flush
// just published.
func (ep *Endpoint) SyncReply(msg Message, msgID uint64) {
	msgEvent := ep.remote.msgEventSlot.Load()
	remoteMsgID := ep.remote.msgID.Load()

	if msgEvent != nil && remoteMsgID == msgID {
		ep.Write(msg, nil)
		ep.Flush()
		msgEvent.Set()
		return
	}

	ep.WriteAndNotify(msg)
}

// Copyright (c) 2025 Joshua Skootsky
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.
//
// Alternatively, you can license this code under a commercial license.
// Contact: joshua.skootsky@gmail.com

// Package portal provides a lock-free, bidirectional, single-producer
// single-consumer (SPSC) inter-goroutine message channel.
//
// A portal pair gives two cooperating goroutines one endpoint each.
// Each endpoint is at once a producer toward its peer and a consumer
// from its peer: writes from endpoint A land in the ring that endpoint
// B reads, and vice versa, so the two directions are entirely
// independent rings sharing nothing but their allocation.
//
// # Thread-Safety Guarantees
//
// Only the goroutine holding an endpoint may call its producer or
// consumer methods. A single endpoint must not be shared between two
// producers or two consumers; this is a single-producer
// single-consumer primitive per direction, not a queue.
//
// # Batched publish
//
// Write does not make a message visible to the peer by itself — it
// only appends to the local unpublished batch. Flush (or Notify,
// which also wakes a blocked peer) is what publishes the batch by
// moving the shared write counter forward behind a single release
// fence, no matter how many messages were written since the last
// flush.
//
// # Zero-copy consume
//
// Pending returns a slice borrowed directly from the ring's backing
// array; no message is copied out until the caller copies it. The
// borrow is valid only until the next call to Read on the same
// endpoint.
//
// # Usage Example
//
//	pair := portal.NewPair(512, false)
//	defer pair.Close()
//
//	a, b := pair.Endpoint(0), pair.Endpoint(1)
//
//	go func() {
//	    for i := 0; i < 100; i++ {
//	        a.Write(portal.Message{uint64(i)}, nil)
//	    }
//	    a.Notify()
//	}()
//
//	var n int
//	for n < 100 {
//	    if err := b.Wait(context.Background()); err != nil {
//	        break
//	    }
//	    msgs := b.Pending()
//	    n += len(msgs)
//	    b.Read(uint64(len(msgs)))
//	}
package portal

// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package progress implements a single-writer, single-reader progress
// reporting primitive for batch operations (archive extraction, resolver
// builds) that fan work out across a worker pool.
//
// Workers never call user code directly. Each worker posts a delta to a
// shared atomic counter; only the goroutine that owns the Reporter (the
// one that called Extract/Build) drains the counter and invokes the
// callback. This keeps user-supplied callbacks single-threaded even
// though the work they report on is not.
package progress

import "sync/atomic"

// Callback receives the number of units completed so far and the total
// expected unit count (0 if unknown ahead of time).
type Callback func(done, total int64)

// Reporter accumulates completed-unit counts from worker goroutines and
// replays them to a Callback from a single thread.
type Reporter struct {
	done     int64
	total    int64
	cb       Callback
	lastSent int64
}

// NewReporter creates a Reporter for an operation with the given total
// unit count. A nil Callback is legal; Add/Poll become no-ops for
// dispatch purposes but the counter is still maintained.
func NewReporter(total int64, cb Callback) *Reporter {
	return &Reporter{total: total, cb: cb}
}

// Add is safe to call concurrently from any number of worker goroutines.
// It only updates the shared counter; it never invokes the callback.
func (r *Reporter) Add(delta int64) {
	atomic.AddInt64(&r.done, delta)
}

// Done returns the current completed-unit count.
func (r *Reporter) Done() int64 {
	return atomic.LoadInt64(&r.done)
}

// Total returns the configured total unit count.
func (r *Reporter) Total() int64 {
	return r.total
}

// Poll must be called only from the invoking thread (the goroutine that
// owns this Reporter). It dispatches the callback once with the latest
// counter value if it has advanced since the last Poll/Flush.
func (r *Reporter) Poll() {
	if r.cb == nil {
		return
	}
	cur := r.Done()
	if cur == r.lastSent {
		return
	}
	r.lastSent = cur
	r.cb(cur, r.total)
}

// Flush forces one final callback dispatch with the current counts,
// regardless of whether they changed since the last Poll. Call this
// once after all workers have joined.
func (r *Reporter) Flush() {
	if r.cb == nil {
		return
	}
	cur := r.Done()
	r.lastSent = cur
	r.cb(cur, r.total)
}

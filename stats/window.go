/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package stats implements the per-node rolling latency and pending-request
// tracker: a time-windowed array of finished-request latencies, a pending
// map of in-flight start times, percentile and RPS queries over the window,
// and a CAS-gated cache layer so repeated percentile/health reads under load
// don't re-sort the window on every call. Grounded on the teacher's generic
// atomic/map primitives (package atomic) for the concurrency-safe building
// blocks, with the cache-refresh collapse itself done via
// golang.org/x/sync/singleflight so concurrent cache-miss callers share one
// recomputation instead of each re-sorting the window.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	ngatomic "github.com/nabbar/gorpc/atomic"
)

// finishedEntry is one completed request's latency sample.
type finishedEntry struct {
	at      time.Time
	latency time.Duration
}

// Tracker is the per-node rolling window: a finished-entry ring, trimmed to
// window on read, and a pending map of in-flight start times.
type Tracker struct {
	window time.Duration

	mu       sync.Mutex
	finished []finishedEntry

	pending *ngatomic.MapTyped[uuid.UUID, time.Time]

	now func() time.Time
}

// NewTracker returns a Tracker retaining finished samples for window.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:  window,
		pending: ngatomic.NewMapTyped[uuid.UUID, time.Time](),
		now:     time.Now,
	}
}

// BeginRequest records id as started now.
func (t *Tracker) BeginRequest(id uuid.UUID) {
	t.pending.Store(id, t.now())
}

// EndRequest removes id from pending and, if present, appends its latency to
// the finished window. Returns false if id was not pending (already ended,
// or never begun — e.g. a fire-and-forget message).
func (t *Tracker) EndRequest(id uuid.UUID) bool {
	start, ok := t.pending.LoadAndDelete(id)
	if !ok {
		return false
	}

	now := t.now()
	t.mu.Lock()
	t.finished = append(t.finished, finishedEntry{at: now, latency: now.Sub(start)})
	t.mu.Unlock()
	return true
}

// ExpirePending removes id from pending without recording a finished sample,
// for callers that must give up on a request (e.g. the pool's read loop
// failing a request stranded by a decode or transport error) without
// treating it as a completed, timed round trip.
func (t *Tracker) ExpirePending(id uuid.UUID) {
	t.pending.Delete(id)
}

// PendingCount returns the number of in-flight requests.
func (t *Tracker) PendingCount() int {
	return t.pending.Len()
}

// snapshot returns the finished entries within [now-window, now], trimming
// (and persisting the trim of) older entries.
func (t *Tracker) snapshot() []finishedEntry {
	now := t.now()
	cutoff := now.Add(-t.window)

	t.mu.Lock()
	defer t.mu.Unlock()

	i := 0
	for i < len(t.finished) && t.finished[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.finished = t.finished[i:]
	}

	out := make([]finishedEntry, len(t.finished))
	copy(out, t.finished)
	return out
}

// Percentile returns the p-th percentile (p in [0,1]) latency over the
// current window, 0 for an empty window.
func Percentile(entries []finishedEntry, p float64) time.Duration {
	n := len(entries)
	if n == 0 {
		return 0
	}

	latencies := make([]time.Duration, n)
	for i, e := range entries {
		latencies[i] = e.latency
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	idx := int(p * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return latencies[idx]
}

// RPS counts finished entries within the trailing 1-second window via
// binary search over the time-ordered (oldest-first) entries.
func RPS(entries []finishedEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	cutoff := now.Add(-time.Second)
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].at.Before(cutoff)
	})
	return len(entries) - i
}

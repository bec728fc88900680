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

package stats

import (
	"time"

	ngatomic "github.com/nabbar/gorpc/atomic"
)

// Percentiles this module caches independently, so the per-percentile cache
// avoids recomputing the whole sorted array for each percentile.
const (
	P50 = 0.50
	P75 = 0.75
	P90 = 0.90
	P95 = 0.95
	P99 = 0.99
)

// Summary is the cached read layer for one node's Tracker: an independent
// CacheMaintainer for the finished-entry snapshot, for RPS, for pending
// count and for each percentile parameter, plus a health score derived from
// the median latency and pending count.
type Summary struct {
	tracker *Tracker

	outlierMultiplier float64
	outlierConstant   float64

	snapshotCache *CacheMaintainer[[]finishedEntry]
	rpsCache      *CacheMaintainer[int]
	pendingCache  *CacheMaintainer[int]
	percentile    map[float64]*CacheMaintainer[time.Duration]
	healthCache   *CacheMaintainer[float64]

	now func() time.Time
}

// NewSummary builds the cached view over tracker. refreshInterval is the TTL
// shared by every derived view's CacheMaintainer; outlierMultiplier and
// outlierConstant parametrize HealthScore.
func NewSummary(tracker *Tracker, refreshInterval time.Duration, outlierMultiplier, outlierConstant float64) *Summary {
	s := &Summary{
		tracker:           tracker,
		outlierMultiplier: outlierMultiplier,
		outlierConstant:   outlierConstant,
		snapshotCache:     NewCacheMaintainer[[]finishedEntry](refreshInterval),
		rpsCache:          NewCacheMaintainer[int](refreshInterval),
		pendingCache:      NewCacheMaintainer[int](refreshInterval),
		healthCache:       NewCacheMaintainer[float64](refreshInterval),
		percentile:        make(map[float64]*CacheMaintainer[time.Duration]),
		now:               time.Now,
	}
	for _, p := range []float64{P50, P75, P90, P95, P99} {
		s.percentile[p] = NewCacheMaintainer[time.Duration](refreshInterval)
	}
	return s
}

func (s *Summary) snapshot() []finishedEntry {
	return s.snapshotCache.Get(s.tracker.snapshot)
}

// Percentile returns the cached p-th percentile latency, 0 for an
// unregistered p (only P50/P75/P90/P95/P99 are pre-registered).
func (s *Summary) Percentile(p float64) time.Duration {
	c, ok := s.percentile[p]
	if !ok {
		return 0
	}
	return c.Get(func() time.Duration {
		return Percentile(s.snapshot(), p)
	})
}

// RPS returns the cached requests-per-second over the trailing second.
func (s *Summary) RPS() int {
	return s.rpsCache.Get(func() int {
		return RPS(s.snapshot(), s.now())
	})
}

// Pending returns the cached in-flight request count.
func (s *Summary) Pending() int {
	return s.pendingCache.Get(s.tracker.PendingCount)
}

// HealthScore derives a scalar from pending load and median latency: lower
// is healthier. The score is outlierConstant + the median latency in
// milliseconds + the pending count times outlierMultiplier, so any non-zero
// median or pending load scores above the baseline outlierConstant and a
// load balancer can rank nodes by ascending score.
func (s *Summary) HealthScore() float64 {
	return s.healthCache.Get(func() float64 {
		median := float64(s.Percentile(P50).Milliseconds())
		pending := float64(s.Pending())
		return s.outlierConstant + median + pending*s.outlierMultiplier
	})
}

// Registry maps node ids to their per-node Tracker/Summary pair, created
// lazily on first reference. Grounded on the same atomic.MapTyped the
// channel pool registry (package ioclient) uses for its Node → Pool table.
type Registry struct {
	window            time.Duration
	refreshInterval   time.Duration
	outlierMultiplier float64
	outlierConstant   float64

	nodes *ngatomic.MapTyped[int64, *nodeStats]
}

type nodeStats struct {
	tracker *Tracker
	summary *Summary
}

// NewRegistry builds an empty per-node statistics registry.
func NewRegistry(window, refreshInterval time.Duration, outlierMultiplier, outlierConstant float64) *Registry {
	return &Registry{
		window:            window,
		refreshInterval:   refreshInterval,
		outlierMultiplier: outlierMultiplier,
		outlierConstant:   outlierConstant,
		nodes:             ngatomic.NewMapTyped[int64, *nodeStats](),
	}
}

func (r *Registry) entry(nodeID int64) *nodeStats {
	if e, ok := r.nodes.Load(nodeID); ok {
		return e
	}
	fresh := &nodeStats{tracker: NewTracker(r.window)}
	fresh.summary = NewSummary(fresh.tracker, r.refreshInterval, r.outlierMultiplier, r.outlierConstant)
	actual, _ := r.nodes.LoadOrStore(nodeID, fresh)
	return actual
}

// Tracker returns the Tracker for nodeID, creating it on first reference.
func (r *Registry) Tracker(nodeID int64) *Tracker {
	return r.entry(nodeID).tracker
}

// Summary returns the cached Summary for nodeID, creating it on first
// reference.
func (r *Registry) Summary(nodeID int64) *Summary {
	return r.entry(nodeID).summary
}

// Nodes returns every node id the registry has observed.
func (r *Registry) Nodes() []int64 {
	var ids []int64
	r.nodes.Range(func(key int64, _ *nodeStats) bool {
		ids = append(ids, key)
		return true
	})
	return ids
}

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

package stats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nabbar/gorpc/stats"
)

func TestTrackerBeginEndRequest(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	id := uuid.New()

	tr.BeginRequest(id)
	if tr.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", tr.PendingCount())
	}

	if !tr.EndRequest(id) {
		t.Fatal("expected EndRequest to find the pending entry")
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("expected 0 pending after end, got %d", tr.PendingCount())
	}
}

func TestTrackerEndRequestUnknownIDReturnsFalse(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	if tr.EndRequest(uuid.New()) {
		t.Fatal("expected EndRequest on an unbegun id to return false")
	}
}

func TestTrackerExpirePendingDropsWithoutSample(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	id := uuid.New()
	tr.BeginRequest(id)
	tr.ExpirePending(id)

	if tr.PendingCount() != 0 {
		t.Fatal("expected pending count to drop to 0")
	}
	if tr.EndRequest(id) {
		t.Fatal("expected EndRequest to no longer find the expired entry")
	}
}

func TestSummaryPercentileEmptyWindowIsZero(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	s := stats.NewSummary(tr, time.Hour, 1.0, 0)

	if got := s.Percentile(stats.P50); got != 0 {
		t.Fatalf("expected 0 for an empty window, got %v", got)
	}
}

func TestSummaryPercentileUnregisteredIsZero(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	s := stats.NewSummary(tr, time.Hour, 1.0, 0)

	if got := s.Percentile(0.42); got != 0 {
		t.Fatalf("expected 0 for an unregistered percentile, got %v", got)
	}
}

func TestSummaryReflectsFinishedLatencies(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	s := stats.NewSummary(tr, 0, 1.0, 0)

	for i := 0; i < 5; i++ {
		id := uuid.New()
		tr.BeginRequest(id)
		tr.EndRequest(id)
	}

	if s.Percentile(stats.P50) < 0 {
		t.Fatal("expected a non-negative median latency")
	}
}

func TestSummaryPendingReflectsTracker(t *testing.T) {
	tr := stats.NewTracker(time.Minute)
	s := stats.NewSummary(tr, 0, 1.0, 0)

	id := uuid.New()
	tr.BeginRequest(id)

	if got := s.Pending(); got != 1 {
		t.Fatalf("expected 1 pending, got %d", got)
	}
}

func TestRegistryLazilyCreatesPerNodeState(t *testing.T) {
	r := stats.NewRegistry(time.Minute, 0, 1.0, 0)

	tr := r.Tracker(42)
	if tr == nil {
		t.Fatal("expected a non-nil tracker")
	}

	sameTr := r.Tracker(42)
	if tr != sameTr {
		t.Fatal("expected the same tracker instance for the same node id")
	}

	sum := r.Summary(42)
	if sum == nil {
		t.Fatal("expected a non-nil summary")
	}

	nodes := r.Nodes()
	if len(nodes) != 1 || nodes[0] != 42 {
		t.Fatalf("expected [42], got %v", nodes)
	}
}

func TestRegistryTracksMultipleNodesIndependently(t *testing.T) {
	r := stats.NewRegistry(time.Minute, 0, 1.0, 0)

	id := uuid.New()
	r.Tracker(1).BeginRequest(id)

	if r.Tracker(2).PendingCount() != 0 {
		t.Fatal("expected node 2 to be unaffected by node 1's activity")
	}
	if r.Tracker(1).PendingCount() != 1 {
		t.Fatal("expected node 1 to retain its pending entry")
	}
}

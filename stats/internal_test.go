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
	"sync"
	"testing"
	"time"
)

func TestPercentileEmptyWindowIsZero(t *testing.T) {
	if got := Percentile(nil, P50); got != 0 {
		t.Fatalf("expected 0 for empty window, got %v", got)
	}
}

func TestPercentileOrdering(t *testing.T) {
	base := time.Now()
	entries := make([]finishedEntry, 0, 10)
	for i := 1; i <= 10; i++ {
		entries = append(entries, finishedEntry{at: base, latency: time.Duration(i) * time.Millisecond})
	}

	p50 := Percentile(entries, P50)
	p99 := Percentile(entries, P99)
	if p99 < p50 {
		t.Fatalf("expected p99 (%v) >= p50 (%v)", p99, p50)
	}
}

func TestRPSCountsTrailingSecondOnly(t *testing.T) {
	now := time.Now()
	entries := []finishedEntry{
		{at: now.Add(-5 * time.Second)},
		{at: now.Add(-2 * time.Second)},
		{at: now.Add(-500 * time.Millisecond)},
		{at: now.Add(-100 * time.Millisecond)},
	}

	if got := RPS(entries, now); got != 2 {
		t.Fatalf("expected 2 requests in the trailing second, got %d", got)
	}
}

func TestRPSEmptyIsZero(t *testing.T) {
	if got := RPS(nil, time.Now()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCacheMaintainerRecomputesAfterTTL(t *testing.T) {
	// The fake clock starts away from the zero time, which Get reads as
	// "never computed".
	tick := time.Unix(1_700_000_000, 0)
	c := NewCacheMaintainer[int](time.Millisecond)
	c.now = func() time.Time { return tick }

	calls := 0
	compute := func() int {
		calls++
		return calls
	}

	first := c.Get(compute)
	if first != 1 || calls != 1 {
		t.Fatalf("expected first Get to compute once, got value=%d calls=%d", first, calls)
	}

	second := c.Get(compute)
	if second != 1 || calls != 1 {
		t.Fatalf("expected cached value within TTL, got value=%d calls=%d", second, calls)
	}

	tick = tick.Add(time.Second)
	third := c.Get(compute)
	if third != 2 || calls != 2 {
		t.Fatalf("expected recompute after TTL elapsed, got value=%d calls=%d", third, calls)
	}
}

func TestCacheMaintainerConcurrentReadersNeverSeeTornValue(t *testing.T) {
	c := NewCacheMaintainer[[]int](time.Hour)
	want := []int{1, 2, 3, 4, 5}

	c.Get(func() []int { return want })

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Get(func() []int { return []int{9, 9, 9} })
			if len(got) != len(want) {
				t.Errorf("expected a full, untorn slice of length %d, got %d", len(want), len(got))
			}
		}()
	}
	wg.Wait()
}

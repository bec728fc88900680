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

	"golang.org/x/sync/singleflight"

	ngatomic "github.com/nabbar/gorpc/atomic"
)

// CacheMaintainer is a TTL-gated cache for a single derived value of type T.
// Exactly one caller recomputes per TTL expiry; every other concurrent
// caller observes the CAS loss and returns the prior cachedValue
// immediately, never blocking on the winner's recompute. The winner's own
// recompute runs through a private singleflight.Group so a panic-safe,
// single-flight-shaped call is what actually touches compute — the same
// primitive the rest of the pack reaches for to collapse concurrent
// cache-miss work.
type CacheMaintainer[T any] struct {
	ttl time.Duration
	now func() time.Time

	refreshing  ngatomic.Flag
	lastCompute ngatomic.Value[time.Time]
	cached      ngatomic.Value[T]

	group singleflight.Group
}

// NewCacheMaintainer returns a cache with the given TTL.
func NewCacheMaintainer[T any](ttl time.Duration) *CacheMaintainer[T] {
	return &CacheMaintainer[T]{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached value, recomputing via compute iff this caller wins
// the refresh CAS and the TTL has elapsed since the last recompute.
func (c *CacheMaintainer[T]) Get(compute func() T) T {
	now := c.now()
	last := c.lastCompute.Load()

	if !last.IsZero() && now.Sub(last) < c.ttl {
		return c.cached.Load()
	}

	if !c.refreshing.CompareAndSwap(false, true) {
		return c.cached.Load()
	}
	defer c.refreshing.Store(false)

	v, _, _ := c.group.Do("refresh", func() (any, error) {
		val := compute()
		c.cached.Store(val)
		c.lastCompute.Store(c.now())
		return val, nil
	})

	return v.(T)
}

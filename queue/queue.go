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

// Package queue implements a small mutex-guarded FIFO over container/list,
// used both for a channel pool's idle-entry list and its waiting-writes
// list. Grounded on the connection-list shape of hashicorp/nomad's
// helper/pool.ConnPool (container/list.List under a mutex, PushFront/Front/
// Remove for the reusable-entry path) — generalized here to carry any T and
// to add a capacity limit and a scan-and-evict helper for the stale sweeper.
package queue

import (
	"container/list"
	"sync"
)

// Queue is a generic, concurrency-safe FIFO with an optional capacity.
// A zero Queue is not usable; use New.
type Queue[T any] struct {
	mu  sync.Mutex
	l   *list.List
	cap int // 0 means unbounded
}

// New returns an empty Queue. capacity <= 0 means unbounded.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{l: list.New(), cap: capacity}
}

// PushBack appends val, returning false (without appending) if the queue is
// at capacity.
func (q *Queue[T]) PushBack(val T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cap > 0 && q.l.Len() >= q.cap {
		return false
	}
	q.l.PushBack(val)
	return true
}

// PopFront removes and returns the oldest entry, if any.
func (q *Queue[T]) PopFront() (val T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.l.Front()
	if e == nil {
		return val, false
	}
	q.l.Remove(e)
	return e.Value.(T), true
}

// Len returns the current number of queued entries.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}

// DrainWhile removes entries from the front one at a time, calling keep for
// each. keep returns (consumed, stop): consumed means the entry is dropped
// from the queue (whether or not the caller could act on it); stop ends the
// drain early (the entry that returned stop=true is dropped iff consumed was
// also true). maxDrain bounds how many entries a single call inspects, so one
// producer cannot starve other goroutines contending for the same mutex.
func (q *Queue[T]) DrainWhile(maxDrain int, keep func(T) (consumed bool, stop bool)) {
	for i := 0; maxDrain <= 0 || i < maxDrain; i++ {
		q.mu.Lock()
		e := q.l.Front()
		if e == nil {
			q.mu.Unlock()
			return
		}
		val := e.Value.(T)
		q.mu.Unlock()

		consumed, stop := keep(val)

		if consumed {
			q.mu.Lock()
			// The front may have changed if another goroutine raced us, so
			// remove val's own element; if a concurrent PopFront already
			// took it, Remove is a no-op.
			q.l.Remove(e)
			q.mu.Unlock()
		}

		if stop {
			return
		}
	}
}

// EvictMatching scans the whole queue once, removing and collecting every
// entry for which match returns true. Used by the stale-request sweeper,
// which must inspect entries out of FIFO order (only some waiters are
// stale) without taking them out of order for normal service.
func (q *Queue[T]) EvictMatching(match func(T) bool) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var evicted []T
	var next *list.Element

	for e := q.l.Front(); e != nil; e = next {
		next = e.Next()
		if match(e.Value.(T)) {
			evicted = append(evicted, e.Value.(T))
			q.l.Remove(e)
		}
	}

	return evicted
}

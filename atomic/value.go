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

// Package atomic provides small generic wrappers over sync/atomic and
// sync.Map so the rest of the runtime never hand-rolls a mutex for a single
// value or a lookup table. Every exported type is safe for concurrent use
// without external locking.
package atomic

import "sync/atomic"

// Value is a type-safe atomic cell for T, built on atomic.Pointer[T] so a
// nil/zero T is always a well-defined, lock-free Load result.
type Value[T any] struct {
	p atomic.Pointer[T]
}

// NewValue returns a Value initialized with init.
func NewValue[T any](init T) *Value[T] {
	v := &Value[T]{}
	v.Store(init)
	return v
}

// Load returns the current value, or the zero value of T if never stored.
func (v *Value[T]) Load() T {
	if p := v.p.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Store sets the current value.
func (v *Value[T]) Store(val T) {
	v.p.Store(&val)
}

// Swap atomically stores val and returns the previous value.
func (v *Value[T]) Swap(val T) (old T) {
	if p := v.p.Swap(&val); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Flag is a type-safe atomic boolean, used for the single-flight
// false→true transitions this runtime relies on (e.g. a cache's
// refreshing gate, a pool's closed/softClosed switches).
type Flag struct {
	b atomic.Bool
}

// Load returns the current value.
func (f *Flag) Load() bool { return f.b.Load() }

// Store sets the current value.
func (f *Flag) Store(val bool) { f.b.Store(val) }

// CompareAndSwap atomically sets the flag to new iff it currently equals old,
// returning whether the swap happened. Exactly one concurrent caller racing
// false→true observes true.
func (f *Flag) CompareAndSwap(old, new bool) bool {
	return f.b.CompareAndSwap(old, new)
}

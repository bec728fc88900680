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

package atomic

import "sync"

// MapTyped is a generic, concurrency-safe map keyed by K holding values of V,
// built on sync.Map. It is the runtime's default for the registry's
// node→pool table and the statistics tracker's per-node and pending maps —
// every lookup table in this module that is read far more than it is
// written uses this type instead of a mutex-guarded map.
type MapTyped[K comparable, V any] struct {
	m sync.Map
}

// NewMapTyped returns an empty MapTyped.
func NewMapTyped[K comparable, V any]() *MapTyped[K, V] {
	return &MapTyped[K, V]{}
}

func (o *MapTyped[K, V]) Load(key K) (value V, ok bool) {
	v, found := o.m.Load(key)
	if !found {
		return value, false
	}
	return v.(V), true
}

func (o *MapTyped[K, V]) Store(key K, value V) {
	o.m.Store(key, value)
}

// LoadOrStore inserts value under key iff absent, returning the value that
// is now stored (the caller's, or a racing writer's) and whether it was
// already present. This is the primitive behind
// "atomicCreateIfAbsent...under a single-writer guarantee for the inserted
// value" that the statistics tracker's per-node map needs.
func (o *MapTyped[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, found := o.m.LoadOrStore(key, value)
	return v.(V), found
}

func (o *MapTyped[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	v, found := o.m.LoadAndDelete(key)
	if !found {
		return value, false
	}
	return v.(V), true
}

func (o *MapTyped[K, V]) Delete(key K) {
	o.m.Delete(key)
}

// Range calls f for every stored entry until f returns false.
func (o *MapTyped[K, V]) Range(f func(key K, value V) bool) {
	o.m.Range(func(k, v any) bool {
		return f(k.(K), v.(V))
	})
}

// Len counts entries by a full range scan: sync.Map has no O(1) size.
func (o *MapTyped[K, V]) Len() int {
	n := 0
	o.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

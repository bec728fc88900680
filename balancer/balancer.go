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

// Package balancer defines the LoadBalancer collaborator and supplies a
// default round-robin-with-capability-filter implementation. Membership
// discovery and load-balancer policy are external collaborators; this
// default exists because nothing downstream of it can function without
// *some* concrete LoadBalancer — it is original, documented as replaceable.
package balancer

import (
	"sync/atomic"

	"github.com/nabbar/gorpc/node"
)

// LoadBalancer selects a node for a request under a capability constraint.
// Implementations must be safe for concurrent use and are
// snapshot-immutable: a single LoadBalancer instance always answers queries
// against the Endpoint set it was built from.
type LoadBalancer interface {
	// NextNode returns a node satisfying want, or false if none qualifies.
	NextNode(want node.Capability) (node.Node, bool)
}

// Factory builds a LoadBalancer from a membership snapshot. Construction
// may fail (e.g. an empty or malformed snapshot); the caller (package
// netclient) stores that failure as errors.InvalidCluster, sticky until the
// next snapshot.
type Factory func(endpoints []node.Endpoint) (LoadBalancer, error)

// roundRobin has no duplicates option: when a single endpoint satisfies the
// requested mask, it returns that same node on every call.
type roundRobin struct {
	endpoints []node.Endpoint
	cursor    atomic.Uint64
}

// NewRoundRobin returns the default Factory: a round-robin selector that
// skips endpoints failing the requested capability mask.
func NewRoundRobin() Factory {
	return func(endpoints []node.Endpoint) (LoadBalancer, error) {
		cp := make([]node.Endpoint, len(endpoints))
		copy(cp, endpoints)
		return &roundRobin{endpoints: cp}, nil
	}
}

func (r *roundRobin) NextNode(want node.Capability) (node.Node, bool) {
	n := len(r.endpoints)
	if n == 0 {
		return node.Node{}, false
	}

	start := r.cursor.Add(1) - 1
	for i := 0; i < n; i++ {
		idx := int((start + uint64(i)) % uint64(n))
		ep := r.endpoints[idx]
		if ep.Satisfies(want) {
			return ep.Node, true
		}
	}
	return node.Node{}, false
}

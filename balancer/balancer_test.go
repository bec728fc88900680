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

package balancer_test

import (
	"testing"

	"github.com/nabbar/gorpc/balancer"
	"github.com/nabbar/gorpc/node"
)

func TestRoundRobinCyclesThroughEndpoints(t *testing.T) {
	factory := balancer.NewRoundRobin()
	lb, err := factory([]node.Endpoint{
		{Node: node.Node{ID: 1}},
		{Node: node.Node{ID: 2}},
		{Node: node.Node{ID: 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int64]int)
	for i := 0; i < 9; i++ {
		n, ok := lb.NextNode(0)
		if !ok {
			t.Fatal("expected a node on every call")
		}
		seen[n.ID]++
	}

	for id, count := range seen {
		if count != 3 {
			t.Fatalf("expected node %d to be selected 3 times, got %d", id, count)
		}
	}
}

func TestRoundRobinSkipsUnsatisfyingEndpoints(t *testing.T) {
	const want node.Capability = 1 << 2
	factory := balancer.NewRoundRobin()
	lb, _ := factory([]node.Endpoint{
		{Node: node.Node{ID: 1}, Capability: 0},
		{Node: node.Node{ID: 2}, Capability: want},
	})

	for i := 0; i < 5; i++ {
		n, ok := lb.NextNode(want)
		if !ok || n.ID != 2 {
			t.Fatalf("expected only node 2 to satisfy the capability, got %v ok=%v", n, ok)
		}
	}
}

func TestRoundRobinEmptyEndpointsReturnsFalse(t *testing.T) {
	factory := balancer.NewRoundRobin()
	lb, _ := factory(nil)

	if _, ok := lb.NextNode(0); ok {
		t.Fatal("expected no node from an empty endpoint set")
	}
}

func TestRoundRobinNoSatisfyingEndpointReturnsFalse(t *testing.T) {
	factory := balancer.NewRoundRobin()
	lb, _ := factory([]node.Endpoint{{Node: node.Node{ID: 1}}})

	if _, ok := lb.NextNode(1 << 5); ok {
		t.Fatal("expected false when no endpoint satisfies the requested capability")
	}
}

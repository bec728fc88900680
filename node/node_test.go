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

package node_test

import (
	"testing"

	"github.com/nabbar/gorpc/node"
)

func TestNodeAddr(t *testing.T) {
	n := node.Node{ID: 1, Host: "10.0.0.1", Port: 9090}
	if n.Addr() != "10.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", n.Addr())
	}
}

func TestCapabilityHas(t *testing.T) {
	const (
		read  node.Capability = 1 << 0
		write node.Capability = 1 << 1
	)

	both := read | write
	if !both.Has(read) {
		t.Fatal("expected both to have read")
	}
	if !both.Has(write) {
		t.Fatal("expected both to have write")
	}
	if read.Has(write) {
		t.Fatal("expected read-only to not have write")
	}
}

func TestEndpointSatisfiesZeroWantAlwaysTrue(t *testing.T) {
	ep := node.Endpoint{}
	if !ep.Satisfies(0) {
		t.Fatal("expected a zero capability requirement to be satisfied unconditionally")
	}
}

func TestEndpointSatisfiesEitherCapabilitySet(t *testing.T) {
	const want node.Capability = 1 << 3

	ep := node.Endpoint{Capability: want}
	if !ep.Satisfies(want) {
		t.Fatal("expected transient capability to satisfy want")
	}

	ep2 := node.Endpoint{PersistentCapability: want}
	if !ep2.Satisfies(want) {
		t.Fatal("expected persistent capability to satisfy want")
	}

	ep3 := node.Endpoint{}
	if ep3.Satisfies(want) {
		t.Fatal("expected an endpoint with neither capability set to not satisfy want")
	}
}

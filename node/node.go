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

// Package node defines the cluster membership types shared by the load
// balancer, channel pool registry, network client and statistics tracker:
// Node identity and Endpoint capability masks. Membership discovery itself
// is an external collaborator; this package only fixes the shapes it
// publishes.
package node

import "fmt"

// Capability is a bitmask of operations a node advertises support for.
type Capability uint64

// Has reports whether every bit set in want is also set in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Node is an addressable cluster peer. Identity equality is by ID; Host and
// Port are descriptive and may change without changing identity from the
// membership layer's point of view (a changed address requires an explicit
// remove + re-add by that layer, per the registry's routing contract).
type Node struct {
	ID   int64
	Host string
	Port int
}

// Addr renders the dialable host:port for this node.
func (n Node) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

func (n Node) String() string {
	return fmt.Sprintf("node[%d]@%s", n.ID, n.Addr())
}

// Endpoint pairs a Node with its capability masks as of one membership
// snapshot. Endpoints are immutable for the lifetime of that snapshot; a
// capability change arrives as a new Endpoint in the next snapshot.
type Endpoint struct {
	Node                 Node
	Capability           Capability
	PersistentCapability Capability
}

// Satisfies reports whether this endpoint can serve a request requiring
// want under either its transient or persistent capability set.
func (e Endpoint) Satisfies(want Capability) bool {
	if want == 0 {
		return true
	}
	return e.Capability.Has(want) || e.PersistentCapability.Has(want)
}

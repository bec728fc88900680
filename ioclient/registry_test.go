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

package ioclient_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nabbar/gorpc/config"
	"github.com/nabbar/gorpc/errors"
	"github.com/nabbar/gorpc/ioclient"
	"github.com/nabbar/gorpc/logger"
	"github.com/nabbar/gorpc/node"
	"github.com/nabbar/gorpc/pool"
	"github.com/nabbar/gorpc/request"
	"github.com/nabbar/gorpc/stats"
)

func TestPoolForIsLazyAndMemoized(t *testing.T) {
	var created atomic.Int32
	var gotTracker *stats.Tracker
	factory := func(n node.Node, tracker *stats.Tracker) *pool.Pool {
		created.Add(1)
		gotTracker = tracker
		return pool.New(n.Addr(), config.PoolConfig{MaxConnectionsPerNode: 1, CloseChannelTimeMillis: -1}, nil, logger.New(), tracker, nil)
	}

	statsRegistry := stats.NewRegistry(time.Minute, time.Second, 2, 1)
	r := ioclient.New(factory, statsRegistry, logger.New(), 0)
	n := node.Node{ID: 1, Host: "h", Port: 1}

	p1 := r.PoolFor(n)
	p2 := r.PoolFor(n)

	if p1 != p2 {
		t.Fatal("expected PoolFor to return the same pool for the same node id")
	}
	if created.Load() != 1 {
		t.Fatalf("expected the factory to run exactly once, got %d", created.Load())
	}
	if gotTracker == nil || gotTracker != statsRegistry.Tracker(n.ID) {
		t.Fatal("expected PoolFor to hand the factory the registry's Tracker for this node id")
	}
}

func TestApplyMembershipTearsDownRemovedNodes(t *testing.T) {
	factory := func(n node.Node, tracker *stats.Tracker) *pool.Pool {
		return pool.New(n.Addr(), config.PoolConfig{MaxConnectionsPerNode: 1, CloseChannelTimeMillis: -1}, nil, logger.New(), tracker, nil)
	}

	r := ioclient.New(factory, nil, logger.New(), 0)

	kept := node.Node{ID: 1, Host: "h", Port: 1}
	removed := node.Node{ID: 2, Host: "h", Port: 2}

	keptPool := r.PoolFor(kept)
	removedPool := r.PoolFor(removed)

	r.ApplyMembership(context.Background(), []node.Node{kept})

	deadline := time.Now().Add(time.Second)
	for r.PoolFor(removed) == removedPool && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.PoolFor(removed) == removedPool {
		t.Fatal("expected the removed node's pool to be dropped from the registry")
	}
	if r.PoolFor(kept) != keptPool {
		t.Fatal("expected the kept node's pool to be preserved")
	}
	time.Sleep(20 * time.Millisecond)
}

func TestShutdownClosesAllTrackedPools(t *testing.T) {
	factory := func(n node.Node, tracker *stats.Tracker) *pool.Pool {
		return pool.New(n.Addr(), config.PoolConfig{MaxConnectionsPerNode: 1, CloseChannelTimeMillis: -1}, nil, logger.New(), tracker, nil)
	}

	r := ioclient.New(factory, nil, logger.New(), 0)
	p1 := r.PoolFor(node.Node{ID: 1, Host: "h", Port: 1})
	p2 := r.PoolFor(node.Node{ID: 2, Host: "h", Port: 2})

	r.Shutdown(context.Background())

	for i, p := range []*pool.Pool{p1, p2} {
		var got errors.Error
		p.SendRequest(request.New("", []byte("x"), time.Time{}, func(_ []byte, err errors.Error) { got = err }))
		if got == nil || got.Code() != errors.PoolClosed {
			t.Fatalf("expected pool %d to be closed after Shutdown, got %v", i+1, got)
		}
	}
}

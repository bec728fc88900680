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

// Package ioclient implements the channel pool registry: it maps each
// node.Node to its pool.Pool, creating pools lazily through a
// Factory, and tears pools down (after a grace period) when a membership
// update removes their node. Routing is keyed by Node.ID, so an address
// change requires an explicit remove + re-add from the membership layer.
package ioclient

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	ngatomic "github.com/nabbar/gorpc/atomic"
	"github.com/nabbar/gorpc/logger"
	"github.com/nabbar/gorpc/node"
	"github.com/nabbar/gorpc/pool"
	"github.com/nabbar/gorpc/stats"
)

// Factory lazily builds a Pool for one node's address. tracker is nil if
// the Registry was built without a stats.Registry; a Factory that wires a
// pool.New call should pass it straight through as pool.New's tracker
// argument so the pool's write/response path records latency samples.
type Factory func(n node.Node, tracker *stats.Tracker) *pool.Pool

// Registry maps node ids to their channel pools.
type Registry struct {
	factory Factory
	stats   *stats.Registry
	log     logger.Logger

	pools *ngatomic.MapTyped[int64, *pool.Pool]

	// removalGrace bounds how long a removed node's pool is kept alive so
	// its in-flight requests can finish or time out naturally before the
	// pool is force-closed.
	removalGrace time.Duration
}

// New builds an empty Registry. factory constructs a Pool on first
// reference to a node; removalGrace is the teardown grace period for nodes
// dropped from membership.
func New(factory Factory, statsRegistry *stats.Registry, log logger.Logger, removalGrace time.Duration) *Registry {
	return &Registry{
		factory:      factory,
		stats:        statsRegistry,
		log:          log,
		pools:        ngatomic.NewMapTyped[int64, *pool.Pool](),
		removalGrace: removalGrace,
	}
}

// PoolFor returns n's Pool, creating it lazily via Factory on first
// reference. When the Registry was built with a stats.Registry, the node's
// Tracker is looked up (creating it on first reference too) and handed to
// Factory so the resulting pool records latency samples for n.ID.
func (r *Registry) PoolFor(n node.Node) *pool.Pool {
	if p, ok := r.pools.Load(n.ID); ok {
		return p
	}

	var tracker *stats.Tracker
	if r.stats != nil {
		tracker = r.stats.Tracker(n.ID)
	}

	fresh := r.factory(n, tracker)
	actual, _ := r.pools.LoadOrStore(n.ID, fresh)
	return actual
}

// ApplyMembership computes the set difference against current and closes
// pools for nodes no longer present, after removalGrace. Pools for nodes
// still present are preserved untouched.
func (r *Registry) ApplyMembership(ctx context.Context, current []node.Node) {
	keep := make(map[int64]struct{}, len(current))
	for _, n := range current {
		keep[n.ID] = struct{}{}
	}

	var removed []int64
	r.pools.Range(func(id int64, _ *pool.Pool) bool {
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
		return true
	})

	if len(removed) == 0 {
		return
	}

	go r.teardownAfterGrace(ctx, removed)
}

func (r *Registry) teardownAfterGrace(ctx context.Context, ids []int64) {
	if r.removalGrace > 0 {
		select {
		case <-time.After(r.removalGrace):
		case <-ctx.Done():
		}
	}

	g, _ := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if p, ok := r.pools.LoadAndDelete(id); ok {
				p.Close()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("pool teardown reported an error", logger.Fields{"count": len(ids)}, err)
	}
}

// Shutdown closes every pool the registry currently tracks, fanning the
// close calls out across an errgroup (the same pattern ApplyMembership's
// grace-period teardown uses).
func (r *Registry) Shutdown(ctx context.Context) {
	var ids []int64
	r.pools.Range(func(id int64, _ *pool.Pool) bool {
		ids = append(ids, id)
		return true
	})

	g, _ := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if p, ok := r.pools.LoadAndDelete(id); ok {
				p.Close()
			}
			return nil
		})
	}
	_ = g.Wait()
}

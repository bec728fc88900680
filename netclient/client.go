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

// Package netclient implements the network client: an atomic load-balancer
// slot refreshed on membership updates, SendRequest/SendMessage
// orchestration, and a node-reselecting retry trampoline.
package netclient

import (
	"context"
	"strconv"
	"time"

	ngatomic "github.com/nabbar/gorpc/atomic"
	"github.com/nabbar/gorpc/balancer"
	"github.com/nabbar/gorpc/codec"
	"github.com/nabbar/gorpc/config"
	"github.com/nabbar/gorpc/errors"
	"github.com/nabbar/gorpc/ioclient"
	"github.com/nabbar/gorpc/logger"
	"github.com/nabbar/gorpc/node"
	"github.com/nabbar/gorpc/request"
)

// Callback receives a request's terminal outcome: exactly one of (reply,
// nil) or (nil, err), exactly once per request.
type Callback func(reply []byte, err errors.Error)

// slot is the tagged union {absent, error(InvalidCluster), ready(lb)},
// represented as a plain struct since Go has no closed sum type: lb == nil
// && err == nil is absent, err != nil is the error case.
type slot struct {
	lb  balancer.LoadBalancer
	err errors.Error
}

// Client is the network client handle.
type Client struct {
	cfg      config.ClientConfig
	factory  balancer.Factory
	registry *ioclient.Registry
	log      logger.Logger

	lbSlot    ngatomic.Value[slot]
	connected ngatomic.Flag
}

// New builds a Client. The load-balancer slot starts absent; call
// UpdateMembership at least once before SendRequest/SendMessage can
// succeed.
func New(cfg config.ClientConfig, factory balancer.Factory, registry *ioclient.Registry, log logger.Logger) *Client {
	c := &Client{cfg: cfg, factory: factory, registry: registry, log: log}
	c.connected.Store(true)
	return c
}

// UpdateMembership rebuilds the load balancer from a fresh Endpoint set and
// publishes it to the slot. A factory construction failure is captured as
// errors.InvalidCluster, sticky until the next call.
func (c *Client) UpdateMembership(endpoints []node.Endpoint) {
	lb, err := c.factory(endpoints)
	if err != nil {
		c.lbSlot.Store(slot{err: errors.InvalidCluster.Error(err)})
		return
	}
	c.lbSlot.Store(slot{lb: lb})
}

func (c *Client) readSlot() (balancer.LoadBalancer, errors.Error) {
	s := c.lbSlot.Load()
	if s.err != nil {
		return nil, s.err
	}
	if s.lb == nil {
		return nil, errors.ClusterDisconnected.Error()
	}
	return s.lb, nil
}

// SendRequest validates the body, selects a node under capability, and
// dispatches. maxRetry <= 0 disables the retry trampoline.
func (c *Client) SendRequest(capability node.Capability, body []byte, maxRetry int, cb Callback) {
	if !c.connected.Load() {
		cb(nil, errors.ClusterDisconnected.Error())
		return
	}
	if body == nil {
		cb(nil, errors.NullArgument.Error())
		return
	}

	lb, err := c.readSlot()
	if err != nil {
		cb(nil, err)
		return
	}

	n, ok := lb.NextNode(capability)
	if !ok {
		cb(nil, errors.NoNodesAvailable.Error())
		return
	}

	var done func(reply []byte, err errors.Error)
	if maxRetry > 0 {
		done = c.retryTrampoline(capability, body, maxRetry, 0, n, cb)
	} else {
		done = cb
	}

	c.dispatch(capability, body, n, nil, done)
}

// SendMessage is the fire-and-forget path: identical node selection, but
// the built request carries no completion and expects no response.
func (c *Client) SendMessage(capability node.Capability, body []byte) errors.Error {
	if !c.connected.Load() {
		return errors.ClusterDisconnected.Error()
	}
	if body == nil {
		return errors.NullArgument.Error()
	}

	lb, err := c.readSlot()
	if err != nil {
		return err
	}

	n, ok := lb.NextNode(capability)
	if !ok {
		return errors.NoNodesAvailable.Error()
	}

	c.dispatch(capability, body, n, nil, nil)
	return nil
}

func (c *Client) dispatch(capability node.Capability, body []byte, n node.Node, deadline *time.Time, done func([]byte, errors.Error)) {
	var d time.Time
	if deadline != nil {
		d = *deadline
	}

	req := request.New(requestCapability(capability), body, d, done)
	req.MarkAttempt(n.Addr())
	c.registry.PoolFor(n).SendRequest(req)
}

// requestCapability renders a node capability mask as a request.Capability:
// "" (any node) for the zero mask, otherwise the mask in decimal.
func requestCapability(capability node.Capability) request.Capability {
	if capability == 0 {
		return ""
	}
	return request.Capability(strconv.FormatUint(uint64(capability), 10))
}

// retryTrampoline: on failure exposing the failing request (via
// request.FromError) with retryAttempt < maxRetry, re-query the load
// balancer under the same capability. A different node
// gets a freshly built, recursively wrapped request; the same node (or a
// re-selection failure) propagates the original failure, swallowing any
// secondary error from the retry attempt itself.
func (c *Client) retryTrampoline(capability node.Capability, body []byte, maxRetry, attempt int, lastNode node.Node, underlying Callback) Callback {
	var self Callback
	self = func(reply []byte, err errors.Error) {
		if err == nil {
			underlying(reply, nil)
			return
		}

		_, hasReq := request.FromError(err)
		if !hasReq || attempt >= maxRetry {
			underlying(nil, err)
			return
		}

		lb, lbErr := c.readSlot()
		if lbErr != nil {
			underlying(nil, err)
			return
		}

		next, ok := lb.NextNode(capability)
		if !ok || next.ID == lastNode.ID {
			underlying(nil, err)
			return
		}

		nextAttempt := attempt + 1
		retryCB := c.retryTrampoline(capability, body, maxRetry, nextAttempt, next, underlying)

		nreq := request.New(requestCapability(capability), body, time.Time{}, retryCB)
		nreq.SetRetryAttempt(nextAttempt)
		nreq.MarkAttempt(next.Addr())

		c.registry.PoolFor(next).SendRequest(nreq)
	}
	return self
}

// SendRequestT is SendRequest's Codec-backed counterpart: msg is marshaled
// through cdc at most once, lazily, the first time the write path reaches
// for the request's body — not here at the call site. Go does not allow a
// method to introduce a new type parameter, so this lives as a free
// function taking *Client rather than as a method.
func SendRequestT[T any](c *Client, capability node.Capability, msg T, cdc codec.Codec[T], maxRetry int, cb Callback) {
	if !c.connected.Load() {
		cb(nil, errors.ClusterDisconnected.Error())
		return
	}
	if cdc == nil {
		cb(nil, errors.NullArgument.Error())
		return
	}

	lb, err := c.readSlot()
	if err != nil {
		cb(nil, err)
		return
	}

	n, ok := lb.NextNode(capability)
	if !ok {
		cb(nil, errors.NoNodesAvailable.Error())
		return
	}

	var done Callback
	if maxRetry > 0 {
		done = retryTrampolineEncodedFirst(c, capability, maxRetry, n, cb)
	} else {
		done = cb
	}

	dispatchT(c, capability, msg, cdc, n, done)
}

// SendMessageT is SendMessage's Codec-backed counterpart.
func SendMessageT[T any](c *Client, capability node.Capability, msg T, cdc codec.Codec[T]) errors.Error {
	if !c.connected.Load() {
		return errors.ClusterDisconnected.Error()
	}
	if cdc == nil {
		return errors.NullArgument.Error()
	}

	lb, err := c.readSlot()
	if err != nil {
		return err
	}

	n, ok := lb.NextNode(capability)
	if !ok {
		return errors.NoNodesAvailable.Error()
	}

	dispatchT(c, capability, msg, cdc, n, nil)
	return nil
}

func dispatchT[T any](c *Client, capability node.Capability, msg T, cdc codec.Codec[T], n node.Node, done Callback) {
	req := request.NewEncoded(requestCapability(capability), msg, cdc, time.Time{}, done)
	req.MarkAttempt(n.Addr())
	c.registry.PoolFor(n).SendRequest(req)
}

// retryTrampolineEncodedFirst wraps the byte-based retryTrampoline around a
// Codec-encoded first attempt. An EncodingError means msg never produced a
// valid payload, so no resend could help and it propagates immediately. Any
// other failure recovers the request's already-materialized body (Body()
// ran once in the write path and cached its result) and hands off to the
// ordinary byte-based trampoline for every further attempt, so a message is
// encoded through its Codec at most once per SendRequestT call no matter how
// many nodes get tried.
func retryTrampolineEncodedFirst(c *Client, capability node.Capability, maxRetry int, firstNode node.Node, underlying Callback) Callback {
	return func(reply []byte, err errors.Error) {
		if err == nil {
			underlying(reply, nil)
			return
		}
		if err.Code() == errors.EncodingError {
			underlying(nil, err)
			return
		}

		req, hasReq := request.FromError(err)
		if !hasReq {
			underlying(nil, err)
			return
		}

		retryCB := c.retryTrampoline(capability, req.Body(), maxRetry, 0, firstNode, underlying)
		retryCB(reply, err)
	}
}

// Shutdown marks the client disconnected so subsequent
// SendRequest/SendMessage calls fail fast, then closes every pool the
// client's registry tracks and blocks for socket teardown.
func (c *Client) Shutdown(ctx context.Context) {
	c.connected.Store(false)
	c.registry.Shutdown(ctx)
}

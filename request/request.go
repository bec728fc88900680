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

// Package request implements the record that flows through a client's write
// path and back: a UUID correlation id, the serialized outbound payload, the
// node it was last dispatched to, and a completion continuation that the
// channel pool's response reader fires exactly once, either with a decoded
// reply or with an errors.Error (carrying this same Request as its payload,
// so a retry trampoline can recover it with FromError without an import
// cycle between errors and request).
package request

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nabbar/gorpc/errors"
)

// Capability names a method/operation a node must support to be eligible to
// receive a given Request; the empty string means "any node".
type Capability string

// Request is a single outbound call awaiting a reply.
type Request struct {
	id         uuid.UUID
	capability Capability
	body       []byte
	deadline   time.Time
	submitted  time.Time
	attempts   int
	node       string

	encode     func() ([]byte, error)
	encodeOnce sync.Once
	encodeErr  error

	done func(reply []byte, err errors.Error)
}

// New builds a Request with a fresh correlation id and an already-serialized
// body. deadline is the wall-clock instant after which the request is
// considered stale; a zero deadline means no expiry.
func New(capability Capability, body []byte, deadline time.Time, done func(reply []byte, err errors.Error)) *Request {
	return &Request{
		id:         uuid.New(),
		capability: capability,
		body:       body,
		deadline:   deadline,
		submitted:  timeNow(),
		done:       done,
	}
}

// NewLazy builds a Request whose body is not yet serialized: encode runs at
// most once, on the first call to Body or BodyErr, and the result (or
// failure) is cached for every call after. A Codec-backed send path uses this
// so a message is only ever marshaled once, right before it is first needed
// on the wire, rather than eagerly at submission time.
func NewLazy(capability Capability, deadline time.Time, encode func() ([]byte, error), done func(reply []byte, err errors.Error)) *Request {
	return &Request{
		id:         uuid.New(),
		capability: capability,
		deadline:   deadline,
		submitted:  timeNow(),
		encode:     encode,
		done:       done,
	}
}

// timeNow is indirected only so tests can't accidentally rely on wall-clock
// skew across a single assertion; production always uses time.Now.
var timeNow = time.Now

func (r *Request) ID() uuid.UUID          { return r.id }
func (r *Request) Capability() Capability { return r.capability }
func (r *Request) SubmittedAt() time.Time { return r.submitted }
func (r *Request) Attempts() int          { return r.attempts }
func (r *Request) Node() string           { return r.node }

// Body returns the serialized payload, materializing it via the Codec
// encode func on first access if this Request was built with NewLazy. Once
// an encode attempt fails, every subsequent call returns nil; check BodyErr
// before relying on the result.
func (r *Request) Body() []byte {
	r.materialize()
	return r.body
}

// BodyErr reports the encode failure, if any, from materializing the body.
// It forces materialization the same way Body does, so it is safe to call
// first.
func (r *Request) BodyErr() error {
	r.materialize()
	return r.encodeErr
}

func (r *Request) materialize() {
	if r.encode == nil {
		return
	}
	r.encodeOnce.Do(func() {
		r.body, r.encodeErr = r.encode()
	})
}

// Deadline reports the request's expiry and whether one was set.
func (r *Request) Deadline() (time.Time, bool) {
	return r.deadline, !r.deadline.IsZero()
}

// Expired reports whether the request is already past its deadline as of now.
func (r *Request) Expired(now time.Time) bool {
	return !r.deadline.IsZero() && now.After(r.deadline)
}

// SetRetryAttempt sets the 0-based retry attempt counter (0 on the original
// submission, N on the Nth retry).
func (r *Request) SetRetryAttempt(n int) {
	r.attempts = n
}

// MarkAttempt records the node this request was (or is about to be)
// dispatched to. It does not touch the retry attempt counter — that is
// fixed at construction via SetRetryAttempt, separately from how many times
// a given attempt is dispatched.
func (r *Request) MarkAttempt(node string) {
	r.node = node
}

// Complete fires the completion continuation with a decoded reply. Safe to
// call at most once; callers are responsible for that single-fire guarantee
// (the channel pool and retry trampoline each own disjoint completion paths).
func (r *Request) Complete(reply []byte) {
	if r.done != nil {
		r.done(reply, nil)
	}
}

// Fail fires the completion continuation with err, attaching this Request as
// the error's payload so a caller holding only the error can recover it via
// FromError.
func (r *Request) Fail(err errors.Error) {
	if r.done == nil {
		return
	}
	if err != nil {
		err = err.WithPayload(r)
	}
	r.done(nil, err)
}

// FromError recovers the Request attached to err via WithPayload, if any.
func FromError(err errors.Error) (*Request, bool) {
	if err == nil {
		return nil, false
	}
	req, ok := err.Payload().(*Request)
	return req, ok
}

// Codec mirrors codec.Codec[T]'s Encode method, restated here so this
// package does not import codec (and so any encoder shaped this way, not
// just codec.Codec[T], can be passed to NewEncoded).
type Codec[T any] interface {
	Encode(msg T) ([]byte, error)
}

// NewEncoded builds a Request whose body is msg marshaled through cdc,
// deferred to first access via NewLazy — this is the Codec-backed entry
// point a generic send path uses in place of New's pre-serialized []byte.
func NewEncoded[T any](capability Capability, msg T, cdc Codec[T], deadline time.Time, done func(reply []byte, err errors.Error)) *Request {
	return NewLazy(capability, deadline, func() ([]byte, error) {
		return cdc.Encode(msg)
	}, done)
}

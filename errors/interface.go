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

// Package errors implements the runtime's closed error taxonomy: a small set
// of numeric CodeError values (ClusterDisconnected, PoolClosed, WriteTimeout, ...)
// each carrying an optional parent chain and an optional opaque payload, so
// that a retry trampoline can recover the failing request without a type
// hierarchy.
package errors

import (
	stderrors "errors"
)

// CodeError is a closed taxonomy member. The zero value is Unknown, whose
// message Message also returns for any unrecognized code.
type CodeError uint16

// Error extends the standard error with a stable code, a parent chain and an
// opaque payload slot used to attach a typed value (e.g. the failing request)
// without the caller needing a type hierarchy to carry it.
type Error interface {
	error

	// Code returns this error's own code (not a parent's).
	Code() CodeError
	// IsCode reports whether this error's own code equals code.
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool

	// Is implements errors.Is support: two Errors match when their codes and
	// messages are equal.
	Is(err error) bool
	// Unwrap exposes the parent chain for errors.As/errors.Is traversal.
	Unwrap() []error
	// Add appends parent errors, wrapping plain errors as code-0 Errors.
	Add(parent ...error)

	// Payload returns the opaque value attached via WithPayload, or nil.
	Payload() any
	// WithPayload returns a copy of this Error carrying the given payload.
	WithPayload(p any) Error
}

// New builds a new Error with the given code, message and optional parents.
func New(code CodeError, message string, parent ...error) Error {
	e := &ers{c: code, m: message}
	e.Add(parent...)
	return e
}

// Newf builds a new Error with a formatted message.
func Newf(code CodeError, pattern string, args ...any) Error {
	return New(code, sprintf(pattern, args...))
}

// Is reports whether err is (or wraps) an Error.
func Is(err error) bool {
	var e Error
	return stderrors.As(err, &e)
}

// Get returns err as an Error if it is one, nil otherwise.
func Get(err error) Error {
	var e Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// HasCode reports whether err (or any parent, if err is an Error) carries code.
func HasCode(err error, code CodeError) bool {
	if e := Get(err); e != nil {
		return e.HasCode(code)
	}
	return false
}

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

package errors

// The taxonomy is closed: these are the only codes this runtime produces.
// QueueFull and EncodingError are implementer additions: QueueFull for an
// optional waiting-writes cap, not emitted unless a pool is configured with
// a queue capacity; EncodingError for a Codec failing to serialize an
// outbound message, a failure mode that only exists once a Codec is wired
// in via request.NewEncoded.
const (
	Unknown CodeError = iota

	ClusterDisconnected
	InvalidCluster
	NoNodesAvailable
	PoolClosed
	ConnectTimeout
	ConnectError
	WriteError
	WriteTimeout
	StaleRequest
	DeserializationError
	NullArgument
	QueueFull
	EncodingError
)

var messages = map[CodeError]string{
	Unknown:              "unknown error",
	ClusterDisconnected:  "cluster disconnected: no membership snapshot or client shut down",
	InvalidCluster:       "load balancer construction failed on latest membership snapshot",
	NoNodesAvailable:     "load balancer returned no node for the requested capability",
	PoolClosed:           "destination pool is closed",
	ConnectTimeout:       "socket connect timed out",
	ConnectError:         "socket connect failed",
	WriteError:           "socket write failed",
	WriteTimeout:         "request aged out waiting for a writable channel",
	StaleRequest:         "request aged out in the waiting-writes queue",
	DeserializationError: "response bytes failed to parse",
	NullArgument:         "message argument was nil",
	QueueFull:            "waiting-writes queue is at capacity",
	EncodingError:        "outbound message failed to encode via Codec",
}

// Message returns the registered text for code, or the Unknown text.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[Unknown]
}

// Error builds an Error from this code's registered message.
func (c CodeError) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// Errorf builds an Error from this code with a formatted message.
func (c CodeError) Errorf(pattern string, args ...any) Error {
	return New(c, sprintf(pattern, args...))
}

func (c CodeError) String() string {
	return c.Message()
}

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

// Package codec replaces an implicit, ambient serializer with an explicit
// collaborator: a typed message is turned into wire bytes (and back) only
// through a Codec a caller passes in, rather than some global default the
// request record reaches for on its own.
package codec

import "encoding/json"

// Codec turns a T into wire bytes and back. Implementations should be safe
// for concurrent use — a single Codec instance is typically shared across
// every request of its message type.
type Codec[T any] interface {
	Encode(msg T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSON is the default Codec, grounded on encoding/json the way the rest of
// this module's config loading already serializes structured values.
type JSON[T any] struct{}

func (JSON[T]) Encode(msg T) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var out T
	err := json.Unmarshal(data, &out)
	return out, err
}

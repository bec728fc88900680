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

import (
	stderrors "errors"
	"fmt"
	"strings"
)

func sprintf(pattern string, args ...any) string {
	if !strings.Contains(pattern, "%") || len(args) == 0 {
		return pattern
	}
	return fmt.Sprintf(pattern, args...)
}

// ers is the concrete Error implementation.
type ers struct {
	c CodeError
	m string
	p []Error
	x any
}

func (e *ers) Code() CodeError {
	return e.c
}

func (e *ers) IsCode(code CodeError) bool {
	return e.c == code
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Error() string {
	if e.m == "" {
		return e.c.Message()
	}
	return e.m
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if o, ok := err.(*ers); ok {
		return e.c == o.c && e.Error() == o.Error()
	}
	var o Error
	if stderrors.As(err, &o) {
		return e.c == o.Code() && e.Error() == o.Error()
	}
	return false
}

func (e *ers) Unwrap() []error {
	if len(e.p) == 0 {
		return nil
	}
	r := make([]error, 0, len(e.p))
	for _, p := range e.p {
		r = append(r, p)
	}
	return r
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}
		if er, ok := v.(*ers); ok {
			e.p = append(e.p, er)
		} else if er, ok := v.(Error); ok {
			e.p = append(e.p, er)
		} else {
			e.p = append(e.p, &ers{c: Unknown, m: v.Error()})
		}
	}
}

func (e *ers) Payload() any {
	return e.x
}

func (e *ers) WithPayload(p any) Error {
	return &ers{c: e.c, m: e.m, p: e.p, x: p}
}

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

package pool

import (
	"context"
	"time"

	"github.com/nabbar/gorpc/errors"
)

// sweepOnce scans the waiting-writes FIFO once, failing any request older
// than staleRequestTimeoutMins with StaleRequest. sweepOnce has no failure
// path of its own and always returns nil; the ticker's OnError handler
// (wired in New) logs any error a sweep returns without stopping the ticker.
func (p *Pool) sweepOnce(_ context.Context, _ *time.Ticker) error {
	timeout := p.cfg.StaleRequestTimeout()
	if timeout <= 0 {
		return nil
	}

	now := time.Now()
	stale := p.waiting.EvictMatching(func(w *waiter) bool {
		return now.Sub(w.enqueued) > timeout
	})

	for _, w := range stale {
		w.req.Fail(errors.StaleRequest.Error())
	}

	return nil
}

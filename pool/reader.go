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
	"github.com/nabbar/gorpc/errors"
	"github.com/nabbar/gorpc/wire"
)

// readLoop is the per-socket response correlation layer living below the
// pool: it decodes frames until the connection closes, resolves each by
// correlation id, records the finish timing and fires the request's
// completion with the decoded reply. A decode failure (corrupt frame,
// reset, EOF) ends the goroutine and fails every request still pending on
// this socket with errors.DeserializationError, so a request that was
// written but never got a reply is not left hanging forever — requests on
// other sockets in this pool are unaffected.
func (p *Pool) readLoop(e *entry) {
	for {
		frame, err := wire.Decode(e.reader)
		if err != nil {
			p.failPendingOnEntry(e, err)
			return
		}

		e.untrackPending(frame.CorrelationID)

		req, ok := p.correlation.LoadAndDelete(frame.CorrelationID)
		if !ok {
			// Unknown correlation id: a response for a request this pool
			// already gave up on (e.g. failed by the stale sweeper). Drop it.
			continue
		}

		if p.tracker != nil {
			p.tracker.EndRequest(req.ID())
		}

		req.Complete(frame.Body)
	}
}

// failPendingOnEntry fails every request still written to e and awaiting a
// reply with errors.DeserializationError, wrapping the transport/parse
// failure that ended readLoop.
func (p *Pool) failPendingOnEntry(e *entry, cause error) {
	for _, id := range e.drainPending() {
		req, ok := p.correlation.LoadAndDelete(id)
		if !ok {
			continue
		}
		if p.tracker != nil {
			p.tracker.ExpirePending(req.ID())
		}
		req.Fail(errors.DeserializationError.Error(cause))
	}
}

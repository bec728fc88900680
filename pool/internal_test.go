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
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	ngatomic "github.com/nabbar/gorpc/atomic"
	"github.com/nabbar/gorpc/config"
	"github.com/nabbar/gorpc/errors"
	"github.com/nabbar/gorpc/logger"
	"github.com/nabbar/gorpc/queue"
	"github.com/nabbar/gorpc/request"
)

func newBarePool(cfg config.PoolConfig) *Pool {
	return &Pool{
		addr:        "test",
		cfg:         cfg,
		dial:        DialTCP,
		log:         logger.New(),
		idle:        queue.New[*entry](cfg.MaxConnectionsPerNode),
		waiting:     queue.New[*waiter](cfg.WaitingWritesQueueCap),
		correlation: ngatomic.NewMapTyped[uuid.UUID, *request.Request](),
	}
}

func TestCheckinChannelZeroWriteBudgetFailsImmediately(t *testing.T) {
	p := newBarePool(config.PoolConfig{MaxConnectionsPerNode: 1, WriteTimeoutMillis: 0, CloseChannelTimeMillis: -1})

	client, server := net.Pipe()
	defer server.Close()
	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	var gotErr errors.Error
	req := request.New("cap", []byte("body"), time.Time{}, func(reply []byte, err errors.Error) {
		gotErr = err
	})
	p.waiting.PushBack(&waiter{req: req, enqueued: time.Now()})

	e := &entry{conn: client, reader: nil, createdAt: time.Now()}
	p.checkinChannel(e, false)

	if gotErr == nil || gotErr.Code() != errors.WriteTimeout {
		t.Fatalf("expected WriteTimeout on a zero write budget, got %v", gotErr)
	}
}

func TestSweepOnceEvictsOnlyStaleWaiters(t *testing.T) {
	p := newBarePool(config.PoolConfig{StaleRequestTimeoutMins: 1, WaitingWritesQueueCap: 0})

	var freshErr, staleErr errors.Error
	fresh := request.New("cap", []byte("a"), time.Time{}, func(reply []byte, err errors.Error) { freshErr = err })
	stale := request.New("cap", []byte("b"), time.Time{}, func(reply []byte, err errors.Error) { staleErr = err })

	p.waiting.PushBack(&waiter{req: fresh, enqueued: time.Now()})
	p.waiting.PushBack(&waiter{req: stale, enqueued: time.Now().Add(-time.Hour)})

	if err := p.sweepOnce(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if staleErr == nil || staleErr.Code() != errors.StaleRequest {
		t.Fatalf("expected the stale waiter to fail with StaleRequest, got %v", staleErr)
	}
	if freshErr != nil {
		t.Fatalf("expected the fresh waiter to remain queued, got %v", freshErr)
	}
	if p.waiting.Len() != 1 {
		t.Fatalf("expected 1 remaining waiter, got %d", p.waiting.Len())
	}
}

func TestSweepOnceNoopWhenTimeoutDisabled(t *testing.T) {
	p := newBarePool(config.PoolConfig{StaleRequestTimeoutMins: 0})

	req := request.New("cap", []byte("a"), time.Time{}, nil)
	p.waiting.PushBack(&waiter{req: req, enqueued: time.Now().Add(-24 * time.Hour)})

	if err := p.sweepOnce(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.waiting.Len() != 1 {
		t.Fatal("expected the waiter to remain queued when stale timeout is disabled")
	}
}

func TestEntryReusable(t *testing.T) {
	e := &entry{createdAt: time.Now().Add(-time.Hour)}

	if !e.reusable(-1) {
		t.Fatal("expected a negative closeChannelTime to mean never age out")
	}
	if e.reusable(time.Minute) {
		t.Fatal("expected an hour-old entry to not be reusable under a 1-minute budget")
	}
	if !e.reusable(2 * time.Hour) {
		t.Fatal("expected an hour-old entry to be reusable under a 2-hour budget")
	}
}

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

package ticker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/gorpc/ticker"
)

var _ = Describe("Ticker", func() {
	Describe("Lifecycle", func() {
		It("fires the ticked function repeatedly while running", func() {
			var count atomic.Int32
			tk := ticker.New(15*time.Millisecond, func(ctx context.Context, tck *time.Ticker) error {
				count.Add(1)
				return nil
			})

			Expect(tk.Start(context.Background())).To(Succeed())
			defer tk.Stop(context.Background())

			Eventually(count.Load, time.Second, 5*time.Millisecond).Should(BeNumerically(">=", int32(2)))
			Expect(tk.IsRunning()).To(BeTrue())
		})

		It("Stop is idempotent and stops the ticker from running", func() {
			tk := ticker.New(15*time.Millisecond, func(ctx context.Context, tck *time.Ticker) error { return nil })
			_ = tk.Start(context.Background())

			Expect(tk.Stop(context.Background())).To(Succeed())
			Expect(tk.IsRunning()).To(BeFalse())
			Expect(tk.Stop(context.Background())).To(Succeed(), "a second Stop should be a no-op")
		})

		It("Start is idempotent", func() {
			tk := ticker.New(15*time.Millisecond, func(ctx context.Context, tck *time.Ticker) error { return nil })

			_ = tk.Start(context.Background())
			_ = tk.Start(context.Background())
			defer tk.Stop(context.Background())

			Expect(tk.IsRunning()).To(BeTrue())
		})

		It("reports zero uptime before Start", func() {
			tk := ticker.New(15*time.Millisecond, func(ctx context.Context, tck *time.Ticker) error { return nil })
			Expect(tk.Uptime()).To(BeZero())
		})

		It("never panics with a nil ticked function", func() {
			tk := ticker.New(15*time.Millisecond, nil)
			Expect(func() {
				_ = tk.Start(context.Background())
				time.Sleep(40 * time.Millisecond)
				_ = tk.Stop(context.Background())
			}).ToNot(Panic())
		})
	})

	Describe("Error handling", func() {
		It("delivers a ticked function's error to OnError", func() {
			boom := errors.New("boom")
			errs := make(chan error, 1)

			tk := ticker.New(15*time.Millisecond, func(ctx context.Context, tck *time.Ticker) error {
				return boom
			})
			tk.OnError(func(err error) {
				select {
				case errs <- err:
				default:
				}
			})

			_ = tk.Start(context.Background())
			defer tk.Stop(context.Background())

			Eventually(errs, time.Second).Should(Receive(MatchError(boom)))
		})
	})
})

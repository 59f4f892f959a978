/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package ticker runs a function on a fixed interval as a restartable,
// concurrency-safe component. The liveness heartbeat (writing the mtime of
// the liveness file on an interval) is built on top of it.
package ticker

import (
	"context"
	"time"

	libatm "github.com/openpbs/pbs-failover-core/atomic"
)

// defaultDuration is used when New is given a period too small to be a
// meaningful tick interval.
const defaultDuration = 30 * time.Second

// minDuration is the smallest period New will honor as given.
const minDuration = 1 * time.Millisecond

// Func is invoked on every tick. tck is the underlying *time.Ticker, handed
// through in case the function needs to Reset it. A returned error is
// recorded (see ErrorsLast and ErrorsList) but never stops the ticker.
type Func func(ctx context.Context, tck *time.Ticker) error

// Ticker runs Func on a fixed interval as a restartable unit.
type Ticker interface {
	// Start launches the ticking loop in a new goroutine, stopping any
	// instance already running first. Returns an error only for a nil
	// ctx; errors from Func itself surface through ErrorsLast.
	Start(ctx context.Context) error

	// Stop cancels the running instance and waits for its goroutine to
	// return. Safe to call when not running, and safe to call
	// concurrently.
	Stop(ctx context.Context) error

	// Restart stops then starts the ticker. Safe to call when not
	// running.
	Restart(ctx context.Context) error

	// IsRunning reports whether the ticking loop is currently active.
	IsRunning() bool

	// Uptime reports how long the current instance has been running, or
	// zero when not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error raised by Func, or nil.
	ErrorsLast() error

	// ErrorsList returns every error raised since the last Start call.
	ErrorsList() []error
}

// New returns a Ticker invoking fn every d. A d smaller than minDuration
// (including zero and negative values) is replaced with defaultDuration. fn
// may be nil; the resulting Ticker will report an "invalid function" error
// through ErrorsLast on every tick instead.
func New(d time.Duration, fn Func) Ticker {
	if d < minDuration {
		d = defaultDuration
	}

	return &tickerRunner{
		d:       d,
		fn:      fn,
		startAt: libatm.NewValue[time.Time](),
	}
}

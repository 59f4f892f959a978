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

// Package startStop wraps a single long-running function pair (start/stop)
// into a restartable, concurrency-safe component. The primary's
// control-channel listener is built on top of it.
package startStop

import (
	"context"
	"time"

	libatm "github.com/openpbs/pbs-failover-core/atomic"
)

// FuncStart is a blocking function launched by Start. It must return when
// ctx is cancelled.
type FuncStart func(ctx context.Context) error

// FuncStop performs any work needed to unblock a running FuncStart beyond
// context cancellation (closing a listener, signalling a channel) and to
// release resources it held.
type FuncStop func(ctx context.Context) error

// StartStop runs a FuncStart/FuncStop pair as a restartable unit.
type StartStop interface {
	// Start launches the start function in a new goroutine, first
	// cancelling the context of any instance already running and waiting
	// for it to return; the stop function is not run for that instance.
	// It returns immediately; errors
	// raised by the start function itself surface through ErrorsLast.
	Start(ctx context.Context) error

	// Stop cancels the running instance's context, runs the stop function
	// once, and waits for the start function to return. Safe to call when
	// not running, and safe to call concurrently.
	Stop(ctx context.Context) error

	// Restart stops then starts the runner. Safe to call when not running.
	Restart(ctx context.Context) error

	// IsRunning reports whether the start function is currently executing.
	IsRunning() bool

	// Uptime reports how long the current instance has been running, or
	// zero when not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error raised by the start/stop
	// functions, or nil.
	ErrorsLast() error

	// ErrorsList returns every error raised since the last Start call.
	ErrorsList() []error
}

// New returns a StartStop wrapping fnStart/fnStop. Either may be nil; the
// resulting runner will report an "invalid start/stop function" error
// through ErrorsLast when the nil one would have been invoked.
func New(fnStart FuncStart, fnStop FuncStop) StartStop {
	return &runner{
		fnStart: fnStart,
		fnStop:  fnStop,
		startAt: libatm.NewValue[time.Time](),
	}
}

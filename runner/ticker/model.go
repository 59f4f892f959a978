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

package ticker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	libatm "github.com/openpbs/pbs-failover-core/atomic"
)

type tickerRunner struct {
	d  time.Duration
	fn Func

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce *sync.Once

	running atomic.Bool
	startAt libatm.Value[time.Time]

	errMu sync.Mutex
	errs  []error
}

func (t *tickerRunner) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("ticker: nil context")
	}

	t.mu.Lock()
	prevCancel := t.cancel
	prevDone := t.done
	t.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.stopOnce = &sync.Once{}
	t.mu.Unlock()

	t.clearErrors()
	t.running.Store(true)
	t.startAt.Store(time.Now())

	go t.run(cctx, cancel, done)

	return nil
}

func (t *tickerRunner) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		cancel()
		t.running.Store(false)
		t.startAt.Store(time.Time{})
		close(done)
	}()

	tck := time.NewTicker(t.d)
	defer tck.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tck.C:
			t.invoke(ctx, tck)
		}
	}
}

func (t *tickerRunner) invoke(ctx context.Context, tck *time.Ticker) {
	defer func() {
		if rec := recover(); rec != nil {
			t.addError(fmt.Errorf("panic in ticker function: %v", rec))
		}
	}()

	if t.fn == nil {
		t.addError(fmt.Errorf("invalid function: nil"))
		return
	}

	if err := t.fn(ctx, tck); err != nil {
		t.addError(err)
	}
}

func (t *tickerRunner) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	once := t.stopOnce
	t.mu.Unlock()

	if cancel == nil || done == nil {
		return nil
	}

	once.Do(func() {
		cancel()
	})

	<-done
	return nil
}

func (t *tickerRunner) Restart(ctx context.Context) error {
	_ = t.Stop(ctx)
	return t.Start(ctx)
}

func (t *tickerRunner) IsRunning() bool {
	return t.running.Load()
}

func (t *tickerRunner) Uptime() time.Duration {
	if !t.running.Load() {
		return 0
	}

	ts := t.startAt.Load()
	if ts.IsZero() {
		return 0
	}

	return time.Since(ts)
}

func (t *tickerRunner) addError(err error) {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	t.errs = append(t.errs, err)
}

func (t *tickerRunner) clearErrors() {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	t.errs = nil
}

func (t *tickerRunner) ErrorsLast() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()

	if len(t.errs) == 0 {
		return nil
	}

	return t.errs[len(t.errs)-1]
}

func (t *tickerRunner) ErrorsList() []error {
	t.errMu.Lock()
	defer t.errMu.Unlock()

	out := make([]error, len(t.errs))
	copy(out, t.errs)
	return out
}

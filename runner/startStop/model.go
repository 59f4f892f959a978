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

package startStop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	libatm "github.com/openpbs/pbs-failover-core/atomic"
)

type runner struct {
	fnStart FuncStart
	fnStop  FuncStop

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce *sync.Once

	running atomic.Bool
	startAt libatm.Value[time.Time]

	errMu sync.Mutex
	errs  []error
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	prevCancel := r.cancel
	prevDone := r.done
	r.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.stopOnce = &sync.Once{}
	r.mu.Unlock()

	r.clearErrors()
	r.running.Store(true)
	r.startAt.Store(time.Now())

	go r.run(cctx, cancel, done)

	return nil
}

func (r *runner) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		if rec := recover(); rec != nil {
			r.addError(fmt.Errorf("panic in start function: %v", rec))
		}
		cancel()
		r.running.Store(false)
		r.startAt.Store(time.Time{})
		close(done)
	}()

	if r.fnStart == nil {
		r.addError(fmt.Errorf("invalid start function: nil"))
		return
	}

	if err := r.fnStart(ctx); err != nil {
		r.addError(err)
	}
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	once := r.stopOnce
	r.mu.Unlock()

	if cancel == nil || done == nil {
		return nil
	}

	once.Do(func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.addError(fmt.Errorf("panic in stop function: %v", rec))
			}
			cancel()
		}()

		if r.fnStop == nil {
			r.addError(fmt.Errorf("invalid stop function: nil"))
		} else if err := r.fnStop(ctx); err != nil {
			r.addError(err)
		}
	})

	<-done
	return nil
}

func (r *runner) Restart(ctx context.Context) error {
	_ = r.Stop(ctx)
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	return r.running.Load()
}

func (r *runner) Uptime() time.Duration {
	if !r.running.Load() {
		return 0
	}

	t := r.startAt.Load()
	if t.IsZero() {
		return 0
	}

	return time.Since(t)
}

func (r *runner) addError(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *runner) clearErrors() {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errs = nil
}

func (r *runner) ErrorsLast() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	if len(r.errs) == 0 {
		return nil
	}

	return r.errs[len(r.errs)-1]
}

func (r *runner) ErrorsList() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package atomic

import (
	"sync/atomic"
)

// Value is a generic, lock-free atomic box for T, with configurable
// defaults returned on empty Load/Store. It holds the single typed values
// read off their owning goroutine: failover.Context's active flag (polled
// by the heartbeat ticker's Func) and the runners' start timestamps
// (read by Uptime from any caller while the run goroutine resets them).
type Value[T any] interface {
	// SetDefaultLoad sets the default load value for this Value.
	SetDefaultLoad(def T)
	// SetDefaultStore sets the default store value for this Value.
	SetDefaultStore(def T)

	// Load returns the value stored in the underlying store for this Value.
	Load() (val T)
	// Store sets the value for this Value.
	Store(val T)
	// Swap atomically swaps the value and returns the previous one.
	Swap(new T) (old T)
	// CompareAndSwap atomically compares and, if equal, swaps the value.
	CompareAndSwap(old, new T) (swapped bool)
}

// NewValue returns a new Value with the zero value of T as both defaults.
func NewValue[T any]() Value[T] {
	var (
		tmp1 T
		tmp2 T
	)

	return NewValueDefault[T](tmp1, tmp2)
}

// NewValueDefault returns a new Value with the given default load/store values.
func NewValueDefault[T any](load, store T) Value[T] {
	o := &val[T]{
		av: new(atomic.Value),
		dl: new(atomic.Value),
		ds: new(atomic.Value),
	}

	o.SetDefaultLoad(load)
	o.SetDefaultStore(store)

	return o
}

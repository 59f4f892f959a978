/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package liveness

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	liberr "github.com/openpbs/pbs-failover-core/errors"
)

// Reader tracks the *change* in a liveness file's observed mtime between
// successive reads, never the absolute delta against local time, so a
// clock skew between writer and reader cannot fake a stagnant or a live
// peer. It is the piece the secondary machine's NOHSK handling polls.
type Reader struct {
	path string

	mu        sync.Mutex
	lastMTime time.Time
	primed    bool

	watcher *fsnotify.Watcher
	hint    chan struct{}
}

// NewReader returns a Reader for the liveness file at path. It also
// starts watching the file's directory with fsnotify so Hint can fire
// sooner than the 1Hz secondary tick would otherwise notice a write; the
// fsnotify signal is only ever a latency hint; Observe's stat-based mtime
// comparison remains the sole source of truth.
func NewReader(path string) (*Reader, error) {
	r := &Reader{
		path: path,
		hint: make(chan struct{}, 1),
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		// fsnotify is a latency optimization, not a correctness
		// requirement; a Reader with no watcher still works via Observe.
		return r, nil
	}

	if err = w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return r, nil
	}

	r.watcher = w
	go r.watch()

	return r, nil
}

func (r *Reader) watch() {
	base := filepath.Base(r.path)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			select {
			case r.hint <- struct{}{}:
			default:
			}
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Hint fires (non-blocking, best-effort) when the liveness file's
// directory reports a write affecting it. It is purely a wake-up signal;
// callers must still call Observe to decide anything.
func (r *Reader) Hint() <-chan struct{} {
	return r.hint
}

// Observe stats the liveness file and reports whether its mtime advanced
// since the last call. The very first call after construction always
// reports unchanged (there is nothing yet to compare against) while still
// recording the baseline mtime. A stat failure (permission, missing
// directory) is wrapped with CodeTransientIO.
func (r *Reader) Observe() (changed bool, mtime time.Time, err error) {
	fi, statErr := os.Stat(r.path)
	if statErr != nil {
		return false, time.Time{}, liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot stat liveness file", statErr)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mtime = fi.ModTime()

	if !r.primed {
		r.primed = true
		r.lastMTime = mtime
		return false, mtime, nil
	}

	changed = mtime.After(r.lastMTime)
	if changed {
		r.lastMTime = mtime
	}

	return changed, mtime, nil
}

// Close stops the directory watch, if any.
func (r *Reader) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}

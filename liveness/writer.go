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

// Package liveness implements the two filesystem-based health signals of
// the pair: the liveness file, whose mtime the active server touches on
// every handshake tick, and the active-marker file, written by the
// secondary the moment it takes over. Both live on shared storage with
// the same consistency model (mtime-monotonic per writer, exclusive
// creator for the marker), so they share one package. license.fo, written
// once per successful registration, is here too since it is produced from
// the same REGISTER round trip the marker file's lifecycle is defined
// against.
package liveness

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/openpbs/pbs-failover-core/errors"
)

// DefaultPeriod is the interval at which the active server touches the
// liveness file's mtime, matching the control-channel handshake period.
const DefaultPeriod = 5 * time.Second

// Writer touches a liveness file's mtime. It is meant to be driven by a
// runner/ticker.Ticker on DefaultPeriod from the Primary Controller (and,
// symmetrically, by whichever process currently holds the active role).
type Writer struct {
	path string
}

// NewWriter returns a Writer for the liveness file at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Touch updates the file's mtime to now, creating it first if absent.
// It uses unix.Utimes directly rather than os.Chtimes, so the mtime
// update is a single syscall. A permission or missing-directory failure
// is wrapped with CodeTransientIO; the caller treats it as "unknown,
// wait and retry".
func (w *Writer) Touch() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot create liveness file", err)
	}
	_ = f.Close()

	now := time.Now()
	tv := unix.NsecToTimeval(now.UnixNano())

	if err := unix.Utimes(w.path, []unix.Timeval{tv, tv}); err != nil {
		return liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot touch liveness file", err)
	}

	return nil
}

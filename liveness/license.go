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
	"encoding/binary"
	"os"

	liberr "github.com/openpbs/pbs-failover-core/errors"
)

// License is license.fo: an 8-byte file holding the XOR of the two
// hostids, mode 0600, written exactly once per successful registration.
type License struct {
	path string
}

// NewLicense returns a License for the file at path.
func NewLicense(path string) *License {
	return &License{path: path}
}

// Write XORs primaryHostID with secondaryHostID and (over)writes the
// 8-byte big-endian result to path, creating it with mode 0600 if absent.
// A failure to open the file is a fatal misconfiguration, not a
// transient condition.
func (l *License) Write(primaryHostID, secondaryHostID uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], primaryHostID^secondaryHostID)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return liberr.New(uint16(liberr.MinCodeFatal), "liveness: cannot open license.fo", err)
	}
	defer func() { _ = f.Close() }()

	if _, err = f.Write(buf[:]); err != nil {
		return liberr.New(uint16(liberr.MinCodeFatal), "liveness: cannot write license.fo", err)
	}

	return nil
}

// Read returns the 8-byte opaque contents of license.fo.
func (l *License) Read() ([8]byte, error) {
	var out [8]byte

	b, err := os.ReadFile(l.path)
	if err != nil {
		return out, liberr.New(uint16(liberr.MinCodeFatal), "liveness: cannot read license.fo", err)
	}
	if len(b) != 8 {
		return out, liberr.Newf(uint16(liberr.MinCodeFatal), "liveness: license.fo has unexpected length %d", len(b))
	}

	copy(out[:], b)
	return out, nil
}

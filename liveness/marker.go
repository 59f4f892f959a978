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
	"strings"

	liberr "github.com/openpbs/pbs-failover-core/errors"
)

// Marker is the active-marker file: created by the secondary on
// transition to active, containing its hostname; read by the primary
// during its handshake tick to detect displacement; removed by the
// secondary on any transition that surrenders the active role.
type Marker struct {
	path string
}

// NewMarker returns a Marker for the active-marker file at path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Write truncates and writes path as a single-line text file containing
// hostname, creating it if absent.
func (m *Marker) Write(hostname string) error {
	if err := os.WriteFile(m.path, []byte(hostname+"\n"), 0644); err != nil {
		return liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot write active-marker file", err)
	}
	return nil
}

// Read returns the marker's hostname and whether the file exists. A
// missing file is not an error; it is the primary's normal "not
// displaced" case.
func (m *Marker) Read() (hostname string, exists bool, err error) {
	b, readErr := os.ReadFile(m.path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return "", false, nil
		}
		return "", false, liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot read active-marker file", readErr)
	}
	return strings.TrimSpace(string(b)), true, nil
}

// Exists reports whether the marker file is currently present.
func (m *Marker) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Remove deletes the marker file. Removing an absent file is not an
// error - both PRIM_IS_BACK handling and any surrender-of-active
// transition may race to remove it.
func (m *Marker) Remove() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return liberr.New(uint16(liberr.MinCodeTransientIO), "liveness: cannot remove active-marker file", err)
	}
	return nil
}

// SurrenderActive removes the active-marker file at path; it is
// NewMarker(path).Remove() for a caller holding only the path. The
// daemon's own surrender path (failover.ActionSurrenderActive, emitted on
// PRIM_IS_BACK and SECD_GO_INACTIVE) calls Remove on the Context's Marker
// instead and does not go through this function.
func SurrenderActive(path string) error {
	return NewMarker(path).Remove()
}

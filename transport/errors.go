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

package transport

import "errors"

var (
	// ErrAddress is returned by Dial/Listen when the given address cannot
	// be resolved.
	ErrAddress = errors.New("transport: invalid address")

	// ErrConnection is returned by operations attempted on a Conn that is
	// not (or no longer) connected.
	ErrConnection = errors.New("transport: not connected")

	// ErrPeerLost is returned when a send does not complete before its
	// deadline ("a write fails with peer-lost on timeout, on which
	// the sender closes the channel and declares the peer down").
	ErrPeerLost = errors.New("transport: peer lost")

	// ErrBusy names the "peer already connected" condition. No function in
	// this package returns it; a second REGISTER is refused on the wire
	// with wire.ReplyBusy instead.
	ErrBusy = errors.New("transport: peer already connected")

	// ErrClosed names the "already closed" condition. No function in this
	// package returns it: a closed Conn reports ErrConnection, and a closed
	// Server's Accept returns the listener's own error.
	ErrClosed = errors.New("transport: closed")
)

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

package wire

// Reply codes. ReplyOK is the only code with no failure meaning; all
// others land in the errors package's MinCodeProtocol range so a code alone
// tells a reader which error kind produced it.
const (
	// ReplyOK is a bare, successful acknowledgement.
	ReplyOK uint16 = 0

	// ReplyBusy is returned by the primary's REGISTER handler when a peer
	// is already connected. The existing peer is left undisturbed.
	ReplyBusy uint16 = 2001

	// ReplyUnknownRequest is returned when the request tag is not one of
	// the six defined kinds or the request is not a FAILOVER request, and by
	// the primary for any tag other than REGISTER (HANDSHAKE received by the
	// primary, for example).
	ReplyUnknownRequest uint16 = 2002

	// ReplySystemError is the secondary's reply to any request it does not
	// expect to receive at all.
	ReplySystemError uint16 = 2003
)

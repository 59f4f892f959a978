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

// Package wire defines the FAILOVER message bodies exchanged on the control
// channel and a newline-delimited JSON framing for them. Framing, reply
// matching, and length prefixing are normally the job of the surrounding
// batch-request transport; this package stands in for that transport's
// message layer so the control channel (see package transport) has
// something concrete to dial, send, and decode.
package wire

import (
	"strconv"
)

// requestType is the literal carried in every Request's Type field. Every
// failover message is a request of this single type; the six request kinds
// are distinguished only by Tag.
const requestType = "FAILOVER"

// Tag identifies one of the six failover request kinds.
type Tag uint8

const (
	// TagRegister is sent secondary->primary to request recognition as the
	// standby.
	TagRegister Tag = iota + 1

	// TagHandshake is sent primary->secondary as a periodic "I am alive".
	TagHandshake

	// TagPrimIsBack is sent primary->secondary when the primary restarts
	// after the secondary took over, demanding the floor back.
	TagPrimIsBack

	// TagSecdShutdown is sent primary->secondary: go down now.
	TagSecdShutdown

	// TagSecdGoInactive is sent primary->secondary: stay up but remain
	// passive.
	TagSecdGoInactive

	// TagSecdTakeover is sent primary->secondary: the primary is shutting
	// down cleanly, assume the active role.
	TagSecdTakeover
)

// String returns a short human name for the tag, used in log lines.
func (t Tag) String() string {
	switch t {
	case TagRegister:
		return "REGISTER"
	case TagHandshake:
		return "HANDSHAKE"
	case TagPrimIsBack:
		return "PRIM_IS_BACK"
	case TagSecdShutdown:
		return "SECD_SHUTDOWN"
	case TagSecdGoInactive:
		return "SECD_GO_INACTIVE"
	case TagSecdTakeover:
		return "SECD_TAKEOVER"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
	}
}

// Valid reports whether t is one of the six defined request kinds.
func (t Tag) Valid() bool {
	return t >= TagRegister && t <= TagSecdTakeover
}

// Request is the body of a single FAILOVER request, as carried on the
// control channel. Type is always "FAILOVER"; the unsigned tag in
// {1..6} selects the kind.
type Request struct {
	Type string `json:"type"`
	Tag  Tag    `json:"tag"`
}

// NewRequest builds a Request carrying tag.
func NewRequest(tag Tag) Request {
	return Request{Type: requestType, Tag: tag}
}

// IsFailover reports whether r carries the expected FAILOVER request type.
func (r Request) IsFailover() bool {
	return r.Type == requestType
}

// Reply is the body of a reply to a Request. A zero Code is a bare
// acknowledgement. REGISTER's reply additionally carries the primary's
// host-identifier as decimal ASCII text with no trailing newline, and
// optionally a protocol-version string the secondary compares against its
// own configured minimum.
type Reply struct {
	Code    uint16 `json:"code"`
	Text    string `json:"text,omitempty"`
	Version string `json:"version,omitempty"`
}

// Ack is the empty, successful acknowledgement reply used for HANDSHAKE,
// SECD_SHUTDOWN, SECD_GO_INACTIVE, SECD_TAKEOVER, and PRIM_IS_BACK.
func Ack() Reply {
	return Reply{Code: ReplyOK}
}

// RegisterOK builds the successful REGISTER reply carrying the primary's
// host-identifier as decimal text.
func RegisterOK(hostID uint64) Reply {
	return Reply{Code: ReplyOK, Text: FormatHostID(hostID)}
}

// ErrorReply builds a reply carrying a non-zero code and no payload.
func ErrorReply(code uint16) Reply {
	return Reply{Code: code}
}

// OK reports whether the reply's code is the success code.
func (r Reply) OK() bool {
	return r.Code == ReplyOK
}

// FormatHostID renders a host identifier the way a REGISTER reply carries
// it: decimal ASCII, no trailing newline.
func FormatHostID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseHostID parses a REGISTER reply's text payload back into a host
// identifier. Returns an error if the text is not a plain decimal integer.
func ParseHostID(text string) (uint64, error) {
	return strconv.ParseUint(text, 10, 64)
}

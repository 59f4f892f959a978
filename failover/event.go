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

package failover

import (
	"time"

	"github.com/openpbs/pbs-failover-core/wire"
)

// EventKind enumerates the inputs to SecondaryMachine.Handle. Every piece
// of blocking I/O (dial, send, fence) runs in the driver between two
// Handle calls, and its outcome comes back in as its own event kind, so
// Handle never touches a socket and the machine can be driven entirely
// from a test.
type EventKind uint8

const (
	// EventTick is the once-per-second main loop input.
	EventTick EventKind = iota

	// EventDialOK/EventDialErr report the outcome of an ActionDial the
	// machine previously requested.
	EventDialOK
	EventDialErr

	// EventSendOK/EventSendErr report the outcome of an ActionSendRegister.
	EventSendOK
	EventSendErr

	// EventReplyOK is a successful reply to REGISTER, HasText true when it
	// carries the primary's host-identifier.
	EventReplyOK

	// EventReplyUnknown is a successful reply with an unexpected code
	// (unknown-request) to REGISTER.
	EventReplyUnknown

	// EventReplyEOF is EOF observed on the reply read.
	EventReplyEOF

	// EventReplyErr is any other reply read failure.
	EventReplyErr

	// EventInboundReq is a failover request dispatched to the secondary
	// while the primary is active and we are passive.
	EventInboundReq

	// EventSocketClosed is delivered when INACT's EOF wait unblocks.
	EventSocketClosed

	// EventFenceOK/EventFenceAbsent/EventFenceFailed report fencing.Hook's
	// outcome for an ActionFence.
	EventFenceOK
	EventFenceAbsent
	EventFenceFailed
)

// Event is one input to SecondaryMachine.Handle.
type Event struct {
	Kind EventKind
	Now  time.Time

	// HasText, PeerHostID and Version decorate EventReplyOK for REGISTER's
	// reply.
	HasText    bool
	PeerHostID uint64
	Version    string

	// Tag decorates EventInboundReq.
	Tag wire.Tag

	// LivenessStatOK and LivenessChanged decorate EventTick while in
	// NOHSK, carrying the outcome of a liveness.Reader.Observe call the
	// driver already performed this tick. The mtime-delta tracking lives
	// in package liveness; the machine only asks "did it change".
	LivenessStatOK  bool
	LivenessChanged bool
}

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

import "time"

// ActionKind enumerates the side effects Handle asks the driver to
// perform on the machine's behalf instead of performing them itself.
type ActionKind uint8

const (
	ActionDial ActionKind = iota
	ActionSendRegister
	ActionCloseSocket
	ActionFence
	ActionBecomeActive
	ActionSurrenderActive
	ActionPersistLicense
	ActionRewireDispatcher
	ActionExitProcess
	ActionReplyAck
	ActionReplyBusy
	ActionReplySystemError
	ActionScheduleDelayedAck
	ActionSleep
	ActionWaitEOF
	ActionLog
)

// Action is one side effect the driver must perform on the machine's
// behalf; Handle never performs I/O directly.
type Action struct {
	Kind ActionKind

	// Message is set on ActionLog.
	Message string

	// Sleep is set on ActionSleep.
	Sleep time.Duration

	// ExitCode is set on ActionExitProcess.
	ExitCode int

	// HostID/PeerHostID are set on ActionPersistLicense; the persisted
	// value is hostid_primary XOR hostid_secondary.
	HostID     uint64
	PeerHostID uint64
}

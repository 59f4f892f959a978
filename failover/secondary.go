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

	"github.com/hashicorp/go-version"

	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/wire"
)

// HandshakePeriod is the primary's handshake interval, shared with the
// liveness-file touch cadence.
const HandshakePeriod = 5 * time.Second

// nohskDisconnectThreshold is the number of "liveness changed" ticks in
// NOHSK, with no socket open, before the machine gives up waiting for a
// handshake and forces a full reconnect.
const nohskDisconnectThreshold = 4

// nohskDialEvery spaces NOHSK's opportunistic redial attempts: one every
// third tick while no socket is open.
const nohskDialEvery = 3

// takeoverGrace is the fixed component of the takeover deadline:
// start_time + takeoverGrace + secondary_delay.
const takeoverGrace = 5 * time.Minute

// SecondaryMachine is the secondary's failover state machine as one pure
// transition function. It never performs I/O: every side effect Handle
// decides on is returned as an Action for the driver (package cmd, or a
// future server loop) to carry out, which is what makes the machine
// testable without a socket.
type SecondaryMachine struct {
	state State

	startTime        time.Time
	takeoverDeadline time.Time
	delay            config.Delay
	minPeerVersion   string

	lastHandshake time.Time
	mytime        time.Time

	nohskCounter int
	tickCounter  int
	socketOpen   bool

	// settleUntil gates EventTick processing in IDLE and TAKEOV while a
	// "sleep ~10s, then proceed" grace window is outstanding (INACT's EOF
	// settle into IDLE; SECD_TAKEOVER's settle into TAKEOV).
	// It is compared against each tick's own ev.Now rather than enforced
	// by an actual blocking sleep, which is what lets two independent
	// goroutines (the 1Hz tick loop and the control-channel read loop)
	// drive the same machine without one's notion of "10 seconds have
	// passed" depending on which goroutine happened to sleep. The zero
	// value never gates anything, since it is always in the past.
	settleUntil time.Time

	// ImmediateTakeover lets an operator force NOCONN straight to TAKEOV
	// regardless of the deadline.
	ImmediateTakeover bool
}

// NewSecondaryMachine returns a machine starting in NOCONN at now. The
// takeover deadline is already passed when delay carries the "-1"
// immediate-promotion sentinel, else start_time + 5m + secondary_delay.
func NewSecondaryMachine(now time.Time, delay config.Delay, minPeerVersion string) *SecondaryMachine {
	m := &SecondaryMachine{
		state:          StateNoConn,
		startTime:      now,
		delay:          delay,
		minPeerVersion: minPeerVersion,
		lastHandshake:  now,
		mytime:         now,
	}

	if delay.Immediate {
		m.takeoverDeadline = now
	} else {
		m.takeoverDeadline = now.Add(takeoverGrace).Add(delay.Wait.Time())
	}

	return m
}

// State returns the machine's current state.
func (m *SecondaryMachine) State() State {
	return m.state
}

// LastHandshake returns when the machine last saw a handshake (or, before
// the first one, when REGISTER's reply arrived, or when the machine was
// created).
func (m *SecondaryMachine) LastHandshake() time.Time {
	return m.lastHandshake
}

// Handle consumes one event and returns the actions the driver must carry
// out.
func (m *SecondaryMachine) Handle(ev Event) []Action {
	if ev.Kind == EventInboundReq {
		return m.dispatchInbound(ev)
	}

	switch m.state {
	case StateNoConn, StateIdle:
		return m.handleNoConnIdle(ev)
	case StateConn:
		return m.handleConn(ev)
	case StateRegSent:
		return m.handleRegSent(ev)
	case StateHandsk:
		return m.handleHandsk(ev)
	case StateNoHsk:
		return m.handleNoHsk(ev)
	case StateShutd:
		return m.handleShutd(ev)
	case StateTakeov:
		return m.handleTakeov(ev)
	case StateInact:
		return m.handleInact(ev)
	default:
		return nil
	}
}

func (m *SecondaryMachine) handleNoConnIdle(ev Event) []Action {
	switch ev.Kind {
	case EventTick:
		// IDLE is reached by settling out of INACT; honor whatever grace
		// window is still outstanding before the first reconnect attempt
		// rather than dialing on the very next 1Hz tick.
		if m.state == StateIdle && ev.Now.Before(m.settleUntil) {
			return nil
		}
		return []Action{{Kind: ActionDial}}

	case EventDialOK:
		m.state = StateConn
		m.socketOpen = true
		return nil

	case EventDialErr:
		if m.state == StateIdle {
			return []Action{{Kind: ActionSleep, Sleep: 10 * time.Second}}
		}

		if m.ImmediateTakeover || ev.Now.After(m.takeoverDeadline) {
			m.state = StateTakeov
			m.settleUntil = time.Time{}
			return nil
		}

		return []Action{{Kind: ActionSleep, Sleep: 10 * time.Second}}

	default:
		return nil
	}
}

func (m *SecondaryMachine) handleConn(ev Event) []Action {
	switch ev.Kind {
	case EventTick:
		return []Action{{Kind: ActionSendRegister}}

	case EventSendOK:
		m.state = StateRegSent
		return nil

	case EventSendErr:
		m.state = StateNoConn
		m.socketOpen = false
		return nil

	default:
		return nil
	}
}

func (m *SecondaryMachine) handleRegSent(ev Event) []Action {
	switch ev.Kind {
	case EventReplyOK:
		if !ev.HasText {
			return []Action{
				{Kind: ActionLog, Message: "REGISTER acknowledged with no host-identifier: peer does not support failover"},
				{Kind: ActionExitProcess, ExitCode: 1},
			}
		}

		if incompatible := m.peerVersionIncompatible(ev.Version); incompatible {
			return []Action{
				{Kind: ActionLog, Message: "peer protocol version " + ev.Version + " is below the configured minimum"},
				{Kind: ActionExitProcess, ExitCode: 1},
			}
		}

		m.lastHandshake = ev.Now
		m.mytime = ev.Now
		m.state = StateHandsk

		return []Action{
			{Kind: ActionPersistLicense, PeerHostID: ev.PeerHostID},
			{Kind: ActionRewireDispatcher},
		}

	case EventReplyUnknown:
		return []Action{
			{Kind: ActionLog, Message: "REGISTER rejected as an unknown request: peer does not support failover"},
			{Kind: ActionExitProcess, ExitCode: 1},
		}

	case EventReplyEOF:
		// The secondary got through and the peer died before replying:
		// proof the primary is down. No settle grace applies here; TAKEOV
		// acts on the very next tick.
		m.state = StateTakeov
		m.socketOpen = false
		m.settleUntil = time.Time{}
		return nil

	case EventReplyErr:
		m.state = StateNoConn
		m.socketOpen = false
		return nil

	default:
		return nil
	}
}

func (m *SecondaryMachine) handleHandsk(ev Event) []Action {
	if ev.Kind != EventTick {
		return nil
	}

	if !ev.Now.Before(m.lastHandshake.Add(2 * HandshakePeriod)) {
		m.state = StateNoHsk
		m.nohskCounter = 0
		m.tickCounter = 0
	}

	return nil
}

func (m *SecondaryMachine) handleNoHsk(ev Event) []Action {
	if ev.Kind != EventTick {
		return nil
	}

	var actions []Action

	switch {
	case ev.LivenessStatOK && ev.LivenessChanged:
		m.mytime = ev.Now
		m.nohskCounter++
		if m.nohskCounter > nohskDisconnectThreshold && !m.socketOpen {
			m.state = StateNoConn
			m.nohskCounter = 0
			m.tickCounter = 0
			return actions
		}

	case ev.LivenessStatOK && !ev.LivenessChanged:
		if ev.Now.After(m.deadlineFrom(m.mytime)) {
			m.state = StateTakeov
			m.settleUntil = time.Time{}
			return actions
		}

	case !ev.LivenessStatOK:
		if ev.Now.After(m.deadlineFrom(m.lastHandshake)) {
			m.state = StateNoConn
			m.nohskCounter = 0
			m.tickCounter = 0
			return actions
		}
	}

	m.tickCounter++
	if m.tickCounter%nohskDialEvery == 0 && !m.socketOpen {
		actions = append(actions, Action{Kind: ActionDial})
	}

	return actions
}

// deadlineFrom applies secondary_delay to a base time, honoring the
// immediate-promotion sentinel the same way the takeover deadline does.
func (m *SecondaryMachine) deadlineFrom(base time.Time) time.Time {
	if m.delay.Immediate {
		return base
	}
	return base.Add(m.delay.Wait.Time())
}

func (m *SecondaryMachine) handleShutd(ev Event) []Action {
	if ev.Kind != EventTick {
		return nil
	}
	return []Action{{Kind: ActionExitProcess, ExitCode: 0}}
}

func (m *SecondaryMachine) handleTakeov(ev Event) []Action {
	switch ev.Kind {
	case EventTick:
		// SECD_TAKEOVER's ten-second settle grace is held off here rather
		// than by an actual blocking sleep in the driver: the inbound
		// request that moved the machine into TAKEOV arrives on a
		// different goroutine than the one that ticks
		// this state machine, so only a timestamp comparison against each
		// tick's own ev.Now can gate the close/redial/fence sequence
		// without one goroutine's sleep racing the other's tick.
		if ev.Now.Before(m.settleUntil) {
			return nil
		}
		m.socketOpen = false
		return []Action{{Kind: ActionCloseSocket}, {Kind: ActionDial}}

	case EventDialOK:
		m.state = StateConn
		m.socketOpen = true
		return nil

	case EventDialErr:
		return []Action{{Kind: ActionFence}}

	case EventFenceFailed:
		return []Action{
			{Kind: ActionLog, Message: "fencing failed, will attempt taking over again"},
			{Kind: ActionSleep, Sleep: 10 * time.Second},
		}

	case EventFenceOK, EventFenceAbsent:
		return []Action{{Kind: ActionBecomeActive}}

	default:
		return nil
	}
}

func (m *SecondaryMachine) handleInact(ev Event) []Action {
	switch ev.Kind {
	case EventTick:
		return []Action{{Kind: ActionWaitEOF}}

	case EventReplyEOF, EventSocketClosed:
		m.state = StateIdle
		m.socketOpen = false
		m.settleUntil = ev.Now.Add(10 * time.Second)
		return []Action{
			{Kind: ActionSleep, Sleep: 10 * time.Second},
			{Kind: ActionCloseSocket},
		}

	default:
		return nil
	}
}

// dispatchInbound handles a failover request arriving while the primary is
// active and we are passive; it applies regardless of the tick-driven
// sub-state above.
func (m *SecondaryMachine) dispatchInbound(ev Event) []Action {
	switch ev.Tag {
	case wire.TagHandshake:
		m.lastHandshake = ev.Now
		m.nohskCounter = 0
		if m.state == StateNoHsk {
			m.state = StateHandsk
		}
		return []Action{{Kind: ActionReplyAck}}

	case wire.TagPrimIsBack:
		m.state = StateIdle
		// No settle grace on this path: reconnect on the very next tick,
		// clearing any stale grace window a prior INACT settle may have
		// left behind.
		m.settleUntil = time.Time{}
		return []Action{
			{Kind: ActionSurrenderActive},
			{Kind: ActionLog, Message: "primary is back, surrendering active role"},
			{Kind: ActionScheduleDelayedAck},
		}

	case wire.TagSecdShutdown:
		m.state = StateShutd
		return []Action{{Kind: ActionReplyAck}}

	case wire.TagSecdGoInactive:
		m.state = StateInact
		return []Action{
			{Kind: ActionSurrenderActive},
			{Kind: ActionReplyAck},
		}

	case wire.TagSecdTakeover:
		m.state = StateTakeov
		m.settleUntil = ev.Now.Add(10 * time.Second)
		return []Action{
			{Kind: ActionReplyAck},
			{Kind: ActionSleep, Sleep: 10 * time.Second},
		}

	default:
		return []Action{{Kind: ActionReplySystemError}}
	}
}

// peerVersionIncompatible reports whether peerVer is set, a minimum is
// configured, and peerVer parses lower than it. A peer that omits the
// version field, or a machine with no configured minimum, is always
// accepted.
func (m *SecondaryMachine) peerVersionIncompatible(peerVer string) bool {
	if m.minPeerVersion == "" || peerVer == "" {
		return false
	}

	min, err := version.NewVersion(m.minPeerVersion)
	if err != nil {
		return false
	}

	peer, err := version.NewVersion(peerVer)
	if err != nil {
		return false
	}

	return peer.LessThan(min)
}

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

package failover_test

import (
	"time"

	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func actionKinds(actions []failover.Action) []failover.ActionKind {
	kinds := make([]failover.ActionKind, len(actions))
	for i, a := range actions {
		kinds[i] = a.Kind
	}
	return kinds
}

var _ = Describe("SecondaryMachine", func() {
	var start time.Time

	BeforeEach(func() {
		start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	Context("NOCONN/IDLE", func() {
		It("requests a dial on tick", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionDial}))
		})

		It("moves to CONN on successful dial", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			m.Handle(failover.Event{Kind: failover.EventDialOK, Now: start})
			Expect(m.State()).To(Equal(failover.StateConn))
		})

		It("sleeps and retries on dial failure before the takeover deadline", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			actions := m.Handle(failover.Event{Kind: failover.EventDialErr, Now: start.Add(time.Second)})
			Expect(m.State()).To(Equal(failover.StateNoConn))
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionSleep}))
		})

		It("moves to TAKEOV once the takeover deadline has passed", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			past := start.Add(5*time.Minute + 31*time.Second)
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})
			Expect(m.State()).To(Equal(failover.StateTakeov))
		})

		It("moves to TAKEOV on the operator immediate-takeover flag regardless of the deadline", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			m.ImmediateTakeover = true
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: start.Add(time.Second)})
			Expect(m.State()).To(Equal(failover.StateTakeov))
		})

		It("moves directly to TAKEOV on first NOCONN dial failure when secondary_delay is -1", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Immediate: true}, "")
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: start.Add(time.Millisecond)})
			Expect(m.State()).To(Equal(failover.StateTakeov))
		})

		It("just sleeps in IDLE on dial failure, never reaching TAKEOV", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			// Reach IDLE via INACT's EOF settle path.
			m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagSecdGoInactive})
			m.Handle(failover.Event{Kind: failover.EventSocketClosed, Now: start})
			Expect(m.State()).To(Equal(failover.StateIdle))

			actions := m.Handle(failover.Event{Kind: failover.EventDialErr, Now: start.Add(time.Hour)})
			Expect(m.State()).To(Equal(failover.StateIdle))
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionSleep}))
		})
	})

	Context("CONN/REGSENT", func() {
		var m *failover.SecondaryMachine

		BeforeEach(func() {
			m = failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			m.Handle(failover.Event{Kind: failover.EventDialOK, Now: start})
		})

		It("sends REGISTER on tick and moves to REGSENT on send success", func() {
			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionSendRegister}))

			m.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})
			Expect(m.State()).To(Equal(failover.StateRegSent))
		})

		It("returns to NOCONN on send failure", func() {
			m.Handle(failover.Event{Kind: failover.EventSendErr, Now: start})
			Expect(m.State()).To(Equal(failover.StateNoConn))
		})

		It("persists the license and moves to HANDSK on a textual REGISTER reply", func() {
			m.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})
			actions := m.Handle(failover.Event{
				Kind: failover.EventReplyOK, Now: start, HasText: true, PeerHostID: 4242,
			})
			Expect(m.State()).To(Equal(failover.StateHandsk))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionPersistLicense))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionRewireDispatcher))
		})

		It("exits the process on a textless REGISTER reply: peer does not support failover", func() {
			m.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})
			actions := m.Handle(failover.Event{Kind: failover.EventReplyOK, Now: start, HasText: false})
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionExitProcess))
		})

		It("rejects a peer below the configured minimum version", func() {
			vm := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "2.0.0")
			vm.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			vm.Handle(failover.Event{Kind: failover.EventDialOK, Now: start})
			vm.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			vm.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})

			actions := vm.Handle(failover.Event{
				Kind: failover.EventReplyOK, Now: start, HasText: true, PeerHostID: 1, Version: "1.0.0",
			})
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionExitProcess))
		})

		It("moves to TAKEOV on EOF while in REGSENT, not NOCONN", func() {
			m.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})
			m.Handle(failover.Event{Kind: failover.EventReplyEOF, Now: start})
			Expect(m.State()).To(Equal(failover.StateTakeov))
		})
	})

	Context("HANDSK/NOHSK", func() {
		It("moves to NOHSK once the handshake has aged past 2x the period", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			driveToHandsk(m, start)

			m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})
			Expect(m.State()).To(Equal(failover.StateNoHsk))
		})

		It("does not treat exactly secondary_delay of stagnation as a takeover trigger", func() {
			// mytime is set to start when REGSENT's reply moved the
			// machine into HANDSK (driveToHandsk); the NOHSK transition
			// at start+11s does not itself move mytime.
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			driveToHandsk(m, start)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})
			Expect(m.State()).To(Equal(failover.StateNoHsk))

			exactlyAt := start.Add(30 * time.Second)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: exactlyAt, LivenessStatOK: true, LivenessChanged: false})
			Expect(m.State()).To(Equal(failover.StateNoHsk))
		})

		It("moves to TAKEOV once stagnation strictly exceeds secondary_delay", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			driveToHandsk(m, start)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})

			after := start.Add(31 * time.Second)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: after, LivenessStatOK: true, LivenessChanged: false})
			Expect(m.State()).To(Equal(failover.StateTakeov))
		})

		It("moves to NOCONN when the liveness stat fails past secondary_delay", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			driveToHandsk(m, start)
			base := start.Add(11 * time.Second)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: base})

			after := start.Add(31 * time.Second)
			m.Handle(failover.Event{Kind: failover.EventTick, Now: after, LivenessStatOK: false})
			Expect(m.State()).To(Equal(failover.StateNoConn))
		})
	})

	Context("TAKEOV", func() {
		It("reverts to CONN when the last-chance dial succeeds", func() {
			past := start.Add(time.Millisecond)
			m := failover.NewSecondaryMachine(start, config.Delay{Immediate: true}, "")
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})
			Expect(m.State()).To(Equal(failover.StateTakeov))

			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: past})
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionDial))
			m.Handle(failover.Event{Kind: failover.EventDialOK, Now: past})
			Expect(m.State()).To(Equal(failover.StateConn))
		})

		It("retries after a back-off when fencing fails", func() {
			past := start.Add(time.Millisecond)
			m := failover.NewSecondaryMachine(start, config.Delay{Immediate: true}, "")
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})
			m.Handle(failover.Event{Kind: failover.EventTick, Now: past})
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})

			actions := m.Handle(failover.Event{Kind: failover.EventFenceFailed, Now: past})
			Expect(m.State()).To(Equal(failover.StateTakeov))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionSleep))
		})

		It("becomes active when fencing succeeds or the hook is absent", func() {
			past := start.Add(time.Millisecond)
			m := failover.NewSecondaryMachine(start, config.Delay{Immediate: true}, "")
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})
			m.Handle(failover.Event{Kind: failover.EventTick, Now: past})
			m.Handle(failover.Event{Kind: failover.EventDialErr, Now: past})

			actions := m.Handle(failover.Event{Kind: failover.EventFenceAbsent, Now: past})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionBecomeActive}))
		})
	})

	Context("INACT", func() {
		It("waits for EOF then settles in IDLE", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagSecdGoInactive})
			Expect(m.State()).To(Equal(failover.StateInact))

			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionWaitEOF}))

			actions = m.Handle(failover.Event{Kind: failover.EventSocketClosed, Now: start})
			Expect(m.State()).To(Equal(failover.StateIdle))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionSleep))
		})

		It("does not attempt to dial out of IDLE before the 10s settle window elapses", func() {
			m := failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagSecdGoInactive})
			m.Handle(failover.Event{Kind: failover.EventSocketClosed, Now: start})
			Expect(m.State()).To(Equal(failover.StateIdle))

			// A tick arriving well within the 10s settle window (as it
			// would on the independent 1Hz tick goroutine, regardless of
			// whatever the read-loop goroutine that closed the socket is
			// doing) must not dial yet.
			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(time.Second)})
			Expect(actions).To(BeEmpty())
			Expect(m.State()).To(Equal(failover.StateIdle))

			// Once the settle window has strictly elapsed, the next tick
			// dials as usual.
			actions = m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionDial}))
		})
	})

	Context("dispatch of inbound requests while passive", func() {
		var m *failover.SecondaryMachine

		BeforeEach(func() {
			m = failover.NewSecondaryMachine(start, config.Delay{Wait: mustDuration("30s")}, "")
			driveToHandsk(m, start)
		})

		It("acks HANDSHAKE and refreshes last_handshake", func() {
			actions := m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start.Add(time.Second), Tag: wire.TagHandshake})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionReplyAck}))
		})

		It("recovers HANDSK from NOHSK on HANDSHAKE", func() {
			m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})
			Expect(m.State()).To(Equal(failover.StateNoHsk))

			m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start.Add(12 * time.Second), Tag: wire.TagHandshake})
			Expect(m.State()).To(Equal(failover.StateHandsk))
		})

		It("surrenders active and schedules a delayed ack on PRIM_IS_BACK", func() {
			actions := m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagPrimIsBack})
			Expect(m.State()).To(Equal(failover.StateIdle))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionSurrenderActive))
			Expect(actionKinds(actions)).To(ContainElement(failover.ActionScheduleDelayedAck))
			Expect(actionKinds(actions)).ToNot(ContainElement(failover.ActionReplyAck))
		})

		It("moves to SHUTD and exits zero on the next tick for SECD_SHUTDOWN", func() {
			m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagSecdShutdown})
			Expect(m.State()).To(Equal(failover.StateShutd))

			actions := m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
			Expect(actions).To(Equal([]failover.Action{{Kind: failover.ActionExitProcess, ExitCode: 0}}))
		})

		It("records TAKEOV but withholds the close/redial/fence sequence until the settle window elapses on SECD_TAKEOVER", func() {
			actions := m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagSecdTakeover})
			Expect(m.State()).To(Equal(failover.StateTakeov))
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionReplyAck, failover.ActionSleep}))

			// A tick delivered almost immediately afterwards (as the
			// independent 1Hz tick goroutine would, since the above event
			// is dispatched from the control-channel read-loop goroutine)
			// must not yet close the socket, redial, or fence: the
			// ten-second settle grace is still open.
			actions = m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(time.Second)})
			Expect(actions).To(BeEmpty())
			Expect(m.State()).To(Equal(failover.StateTakeov))

			// Once 10s have strictly elapsed, the tick proceeds with
			// TAKEOV's close/redial sequence.
			actions = m.Handle(failover.Event{Kind: failover.EventTick, Now: start.Add(11 * time.Second)})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionCloseSocket, failover.ActionDial}))
		})

		It("replies system-error to REGISTER received at a secondary", func() {
			actions := m.Handle(failover.Event{Kind: failover.EventInboundReq, Now: start, Tag: wire.TagRegister})
			Expect(actionKinds(actions)).To(Equal([]failover.ActionKind{failover.ActionReplySystemError}))
		})
	})
})

func driveToHandsk(m *failover.SecondaryMachine, start time.Time) {
	m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
	m.Handle(failover.Event{Kind: failover.EventDialOK, Now: start})
	m.Handle(failover.Event{Kind: failover.EventTick, Now: start})
	m.Handle(failover.Event{Kind: failover.EventSendOK, Now: start})
	m.Handle(failover.Event{Kind: failover.EventReplyOK, Now: start, HasText: true, PeerHostID: 99})
}

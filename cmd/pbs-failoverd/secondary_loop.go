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

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/metrics"
	"github.com/openpbs/pbs-failover-core/transport"
	"github.com/openpbs/pbs-failover-core/wire"
)

// secondaryDriver is the one place this core performs the I/O
// failover.SecondaryMachine deliberately stays free of: it turns each
// Action the pure machine returns into a dial, a send, a fencing-hook
// invocation, or a filesystem write, and feeds the outcome back in as
// the next Event. A single mutex serializes Handle calls between the
// tick goroutine below and the inbound-request goroutine ReadLoop drives
// once the control channel is established. A literal single event loop
// would need no lock; this driver splits ticking and reading across two
// goroutines for a simpler net.Conn-based implementation, so a mutex
// around Handle stands in for that serialization.
type secondaryDriver struct {
	fc          *failover.Context
	machine     *failover.SecondaryMachine
	met         *metrics.Registry
	primaryAddr string

	mu   sync.Mutex
	conn *transport.Conn
}

// runSecondary drives fc.Secondary against primaryAddr until ctx is
// cancelled.
func runSecondary(ctx context.Context, fc *failover.Context, primaryAddr string, met *metrics.Registry, forceTakeover bool) error {
	machine := failover.NewSecondaryMachine(time.Now(), fc.Delay, fc.Config.MinPeerVersion)
	machine.ImmediateTakeover = forceTakeover
	fc.Secondary = machine

	d := &secondaryDriver{fc: fc, machine: machine, met: met, primaryAddr: primaryAddr}

	if fc.HeartbeatTicker != nil {
		if err := fc.HeartbeatTicker.Start(ctx); err != nil && fc.Log != nil {
			fc.Log.Warning("heartbeat ticker failed to start", err)
		}
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	prevState := d.state()

	// A nil hint channel blocks forever, so a Reader built without a
	// working fsnotify watcher simply never fires this case.
	var hint <-chan struct{}
	if fc.Observer != nil {
		hint = fc.Observer.Hint()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-hint:
			// The liveness file's directory just saw a write: while
			// degraded, re-stat immediately instead of waiting out the
			// remainder of the current one-second tick.
			if d.state() == failover.StateNoHsk {
				ev := failover.Event{Kind: failover.EventTick, Now: time.Now()}
				changed, _, err := fc.Observer.Observe()
				ev.LivenessStatOK = err == nil
				ev.LivenessChanged = changed
				d.dispatch(ctx, ev)
			}

		case now := <-ticker.C:
			ev := failover.Event{Kind: failover.EventTick, Now: now}

			if d.state() == failover.StateNoHsk && fc.Observer != nil {
				changed, _, err := fc.Observer.Observe()
				ev.LivenessStatOK = err == nil
				ev.LivenessChanged = changed
			}

			d.dispatch(ctx, ev)

			if s := d.state(); s != prevState {
				if met != nil {
					met.ObserveTransition(prevState.String(), s.String())
				}
				prevState = s
			}

			if met != nil {
				met.ObserveHandshakeAge(now.Sub(d.lastHandshake()))
			}
		}
	}
}

// state returns the machine's current state under d.mu: the tick
// goroutine (runSecondary's loop) and the control-channel read-loop
// goroutine (handleInbound, via dispatch) both mutate and read machine
// state, so any read outside the lock that guards Handle is a data race
// on the same field.
func (d *secondaryDriver) state() failover.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.State()
}

// lastHandshake reads the machine's handshake timestamp under the same
// lock as state(), for the same reason.
func (d *secondaryDriver) lastHandshake() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.LastHandshake()
}

func (d *secondaryDriver) dispatch(ctx context.Context, ev failover.Event) {
	d.mu.Lock()
	actions := d.machine.Handle(ev)
	d.mu.Unlock()

	d.run(ctx, actions)
}

func (d *secondaryDriver) run(ctx context.Context, actions []failover.Action) {
	for _, a := range actions {
		switch a.Kind {
		case failover.ActionDial:
			d.dial(ctx)
		case failover.ActionSendRegister:
			d.sendRegister(ctx)
		case failover.ActionCloseSocket:
			d.closeConn()
		case failover.ActionFence:
			d.fence(ctx)
		case failover.ActionBecomeActive:
			d.becomeActive()
		case failover.ActionSurrenderActive:
			d.surrenderActive()
		case failover.ActionPersistLicense:
			if err := d.fc.License.Write(a.PeerHostID, d.fc.HostID); err != nil && d.fc.Log != nil {
				d.fc.Log.Fatal("cannot persist license.fo", err)
			}
		case failover.ActionRewireDispatcher:
			d.startReadLoop(ctx)
		case failover.ActionExitProcess:
			if d.fc.Log != nil {
				d.fc.Log.Info("exiting", nil)
			}
			_ = d.fc.Stop()
			os.Exit(a.ExitCode)
		case failover.ActionSleep:
			time.Sleep(a.Sleep)
		case failover.ActionLog:
			if d.fc.Log != nil {
				d.fc.Log.Warning(a.Message, nil)
			}
		}
	}
}

func (d *secondaryDriver) dial(ctx context.Context) {
	d.closeConn()

	dctx, cancel := context.WithTimeout(ctx, transport.DefaultDialTimeout)
	defer cancel()

	conn, err := transport.Dial(dctx, d.primaryAddr)
	now := time.Now()
	if err != nil {
		d.dispatch(ctx, failover.Event{Kind: failover.EventDialErr, Now: now})
		return
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	d.dispatch(ctx, failover.Event{Kind: failover.EventDialOK, Now: now})
}

// sendRegister performs the REGISTER round trip. The CONN->REGSENT
// transition is applied optimistically on EventSendOK before the write is
// attempted: Conn.SendRequest bundles the write and the reply read into
// one blocking call, so a failure anywhere in that call is reported once
// the machine is already in REGSENT rather than as a separate
// EventSendErr. SendRequest returns io.EOF when the primary closes the
// connection before replying, reported as EventReplyEOF; every other
// failure is reported as EventReplyErr.
func (d *secondaryDriver) sendRegister(ctx context.Context) {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()

	now := time.Now()

	if conn == nil {
		d.dispatch(ctx, failover.Event{Kind: failover.EventSendErr, Now: now})
		return
	}

	d.dispatch(ctx, failover.Event{Kind: failover.EventSendOK, Now: now})

	reply, err := conn.SendRequest(ctx, wire.NewRequest(wire.TagRegister))
	now = time.Now()
	if err != nil {
		// EOF means the REGISTER got through and the primary died before
		// replying; the machine treats that as proof the peer is down and
		// goes straight to TAKEOV instead of back to NOCONN.
		kind := failover.EventReplyErr
		if errors.Is(err, io.EOF) {
			kind = failover.EventReplyEOF
		}
		d.dispatch(ctx, failover.Event{Kind: kind, Now: now})
		return
	}

	switch {
	case reply.OK():
		hostID, perr := wire.ParseHostID(reply.Text)
		d.dispatch(ctx, failover.Event{
			Kind:       failover.EventReplyOK,
			Now:        now,
			HasText:    reply.Text != "" && perr == nil,
			PeerHostID: hostID,
			Version:    reply.Version,
		})
	case reply.Code == wire.ReplyUnknownRequest:
		d.dispatch(ctx, failover.Event{Kind: failover.EventReplyUnknown, Now: now})
	default:
		d.dispatch(ctx, failover.Event{Kind: failover.EventReplyErr, Now: now})
	}
}

func (d *secondaryDriver) closeConn() {
	d.mu.Lock()
	c := d.conn
	d.conn = nil
	d.mu.Unlock()

	if c != nil {
		_ = c.Close()
	}
}

func (d *secondaryDriver) fence(ctx context.Context) {
	res, err := d.fc.Fencing.Fence(ctx, d.fc.Log, d.fc.Config.PBSPrimary)
	if err != nil && d.fc.Log != nil {
		d.fc.Log.Error("fencing hook returned an error", err)
	}
	if d.met != nil {
		d.met.ObserveFencing(res.String())
	}

	now := time.Now()
	switch {
	case res.String() == "ok":
		d.dispatch(ctx, failover.Event{Kind: failover.EventFenceOK, Now: now})
	case res.String() == "absent":
		d.dispatch(ctx, failover.Event{Kind: failover.EventFenceAbsent, Now: now})
	default:
		d.dispatch(ctx, failover.Event{Kind: failover.EventFenceFailed, Now: now})
	}
}

func (d *secondaryDriver) becomeActive() {
	d.fc.SetActive(true)

	host, err := os.Hostname()
	if err == nil {
		if werr := d.fc.Marker.Write(host); werr != nil && d.fc.Log != nil {
			d.fc.Log.Error("cannot write active-marker file", werr)
		}
	} else if d.fc.Log != nil {
		d.fc.Log.Error("cannot determine local hostname for active-marker file", err)
	}

	if d.met != nil {
		d.met.IncTakeover()
	}
}

func (d *secondaryDriver) surrenderActive() {
	d.fc.SetActive(false)
	if err := d.fc.Marker.Remove(); err != nil && d.fc.Log != nil {
		d.fc.Log.Error("cannot remove active-marker file", err)
	}
}

// startReadLoop launches the goroutine that dispatches every inbound
// failover request arriving on the now-registered control channel.
func (d *secondaryDriver) startReadLoop(ctx context.Context) {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return
	}

	go func() {
		_ = conn.ReadLoop(ctx, d.handleInbound)
		if ctx.Err() != nil {
			return
		}
		d.dispatch(ctx, failover.Event{Kind: failover.EventSocketClosed, Now: time.Now()})
	}()
}

// handleInbound is the transport.Handler for the secondary's side of the
// control channel. Actions that affect the reply (ActionReplyAck/Busy/
// SystemError) are resolved before returning, since ReadLoop sends exactly
// one reply per request; ActionSurrenderActive and ActionLog run
// synchronously first so PRIM_IS_BACK's delayed acknowledgement is
// honored by ordering: the surrender completes before the single
// permitted reply goes out, rather than by skipping a reply ReadLoop has
// no way to suppress. Every other action (sleep, the no-op wait-EOF) runs
// in the background so it never delays that reply.
func (d *secondaryDriver) handleInbound(req wire.Request) wire.Reply {
	if !req.IsFailover() || !req.Tag.Valid() {
		return wire.ErrorReply(wire.ReplyUnknownRequest)
	}

	d.mu.Lock()
	actions := d.machine.Handle(failover.Event{Kind: failover.EventInboundReq, Now: time.Now(), Tag: req.Tag})
	d.mu.Unlock()

	reply := wire.Ack()
	var deferred []failover.Action

	for _, a := range actions {
		switch a.Kind {
		case failover.ActionReplyAck:
			reply = wire.Ack()
		case failover.ActionReplyBusy:
			reply = wire.ErrorReply(wire.ReplyBusy)
		case failover.ActionReplySystemError:
			reply = wire.ErrorReply(wire.ReplySystemError)
		case failover.ActionSurrenderActive, failover.ActionLog:
			d.run(context.Background(), []failover.Action{a})
		default:
			deferred = append(deferred, a)
		}
	}

	if len(deferred) > 0 {
		go d.run(context.Background(), deferred)
	}

	return reply
}

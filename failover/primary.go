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
	"context"
	"fmt"
	"time"

	"github.com/openpbs/pbs-failover-core/transport"
	"github.com/openpbs/pbs-failover-core/wire"
)

// DisplacedExitCode is the distinguished exit code the primary uses when
// it finds itself displaced: the process supervisor restarts the binary,
// which then runs TakeoverFromSecondary.
const DisplacedExitCode = 9

// TakeoverDialTimeout bounds the primary's reclaim dial.
const TakeoverDialTimeout = 4 * time.Second

// TakeoverAckTimeout bounds the wait for the secondary's PRIM_IS_BACK
// acknowledgement.
const TakeoverAckTimeout = 10 * time.Minute

// PrimaryController runs the primary's side of the pairing: the once-per-
// HandshakePeriod tick, REGISTER acceptance, shutdown signalling, and the
// startup reclaim handshake. Unlike SecondaryMachine it is not expressed
// as a pure transition function: each tick step is a single bounded I/O
// call with no branching state machine behind it.
type PrimaryController struct {
	ctx *Context
}

// NewPrimaryController returns a controller driving fc, which must have
// Role == RolePrimary.
func NewPrimaryController(fc *Context) *PrimaryController {
	return &PrimaryController{ctx: fc}
}

// Tick runs one handshake-period iteration: touch the liveness file,
// handshake the registered peer if any, and check for displacement.
func (p *PrimaryController) Tick(ctx context.Context) error {
	if err := p.ctx.Liveness.Touch(); err != nil {
		return err
	}

	if peer := p.ctx.Peer(); peer != nil {
		reply, err := peer.SendRequest(ctx, wire.NewRequest(wire.TagHandshake))
		if err != nil {
			if p.ctx.Log != nil {
				p.ctx.Log.Warning("handshake send failed, peer lost", err)
			}
			_ = p.ctx.ClearPeer()
		} else {
			_ = reply // HANDSHAKE's reply is fire-and-forget
		}
	}

	if p.ctx.Marker.Exists() {
		if p.ctx.Log != nil {
			p.ctx.Log.Info("active-marker file present: this primary was displaced", nil)
		}
		return ErrDisplaced
	}

	return nil
}

// AcceptRegister handles an inbound REGISTER: busy if a peer already
// holds the slot, otherwise adopt the connection and reply with our
// host-identifier.
func (p *PrimaryController) AcceptRegister(conn *transport.Conn) wire.Reply {
	if err := p.ctx.RegisterPeer(conn); err != nil {
		return wire.ErrorReply(wire.ReplyBusy)
	}

	if p.ctx.Log != nil {
		p.ctx.Log.Info(fmt.Sprintf("registering %s as secondary server", conn.RemoteHost()), nil)
	}

	return wire.RegisterOK(p.ctx.HostID)
}

// Shutdown signals the secondary on clean primary shutdown: it sends tag
// (TagSecdShutdown or TagSecdGoInactive, selected by operator policy) and
// blocks on the reply up to deadline. The reply is a pure acknowledgement;
// a failure to receive it is logged, never returned as an error.
func (p *PrimaryController) Shutdown(ctx context.Context, tag wire.Tag, deadline time.Duration) {
	peer := p.ctx.Peer()
	if peer == nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	if _, err := peer.SendRequest(sctx, wire.NewRequest(tag)); err != nil {
		if p.ctx.Log != nil {
			p.ctx.Log.Warning("secondary did not acknowledge shutdown signal", err)
		}
	}
}

// TakeoverFromSecondary runs the primary's startup reclaim handshake: dial
// the secondary with a short deadline, demand the floor back, and block
// for up to TakeoverAckTimeout. Any failure is fatal; the caller maps
// ErrSecondaryRefusedIdle and every other failure here to distinct exit
// codes.
func TakeoverFromSecondary(ctx context.Context, secondaryAddr string) error {
	dctx, cancel := context.WithTimeout(ctx, TakeoverDialTimeout)
	defer cancel()

	conn, err := transport.Dial(dctx, secondaryAddr)
	if err != nil {
		return fmt.Errorf("failover: cannot dial secondary for reclaim: %w", err)
	}
	defer func() { _ = conn.Close() }()

	actx, cancel2 := context.WithTimeout(ctx, TakeoverAckTimeout)
	defer cancel2()

	reply, err := conn.SendRequest(actx, wire.NewRequest(wire.TagPrimIsBack))
	if err != nil {
		return fmt.Errorf("failover: secondary did not acknowledge PRIM_IS_BACK: %w", err)
	}

	if !reply.OK() {
		return ErrSecondaryRefusedIdle
	}

	return nil
}

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
	"os"
	"time"

	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/metrics"
	"github.com/openpbs/pbs-failover-core/runner/startStop"
	"github.com/openpbs/pbs-failover-core/transport"
	"github.com/openpbs/pbs-failover-core/wire"
)

// runPrimary drives fc's PrimaryController: a listener accepting the
// secondary's REGISTER and a once-per-HandshakePeriod Tick. If fc
// was started over an existing active-marker file, the marker was left
// behind by a secondary that has taken over, so the reclaim handshake
// (TakeoverFromSecondary) runs before the listener opens at all.
func runPrimary(ctx context.Context, fc *failover.Context, met *metrics.Registry, sdTag wire.Tag) error {
	if fc.Marker.Exists() {
		if fc.Log != nil {
			fc.Log.Info("active-marker file present at startup: reclaiming from secondary", nil)
		}
		addr := controlAddr(fc.Config, fc.Config.PBSSecondary)
		if err := failover.TakeoverFromSecondary(ctx, addr); err != nil {
			if fc.Log != nil {
				fc.Log.Error("reclaim from secondary failed", err)
			}
			// Exit code 2 when the secondary was reachable but refused
			// to go idle, exit code 1 for every other reclaim failure
			// (unreachable, dial timeout, no acknowledgement at all).
			if errors.Is(err, failover.ErrSecondaryRefusedIdle) {
				os.Exit(2)
			}
			os.Exit(1)
		}
		if err := fc.Marker.Remove(); err != nil && fc.Log != nil {
			fc.Log.Warning("reclaim succeeded but active-marker file could not be removed", err)
		}
		if met != nil {
			met.ObserveTransition("TAKEOV", "IDLE")
		}
	}

	ctrl := failover.NewPrimaryController(fc)

	addr := controlAddr(fc.Config, fc.Config.PBSPrimary)
	srv, err := transport.Listen(addr)
	if err != nil {
		return err
	}

	// The control-channel listener is a textbook FuncStart/FuncStop pair:
	// acceptLoop blocks until its context is cancelled, and closing the
	// listener is what unblocks the pending Accept() call.
	listener := startStop.New(
		func(lctx context.Context) error {
			acceptLoop(lctx, srv, ctrl, fc)
			return nil
		},
		func(context.Context) error {
			return srv.Close()
		},
	)
	if err := listener.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = listener.Stop(context.Background()) }()

	if fc.HeartbeatTicker != nil {
		if err := fc.HeartbeatTicker.Start(ctx); err != nil && fc.Log != nil {
			fc.Log.Warning("heartbeat ticker failed to start", err)
		}
	}

	ticker := time.NewTicker(failover.HandshakePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Clean shutdown: tell the registered secondary what to do
			// next (assume the role, go passive, or go down) and wait
			// briefly for its acknowledgement before tearing down.
			ctrl.Shutdown(context.Background(), sdTag, 30*time.Second)
			return ctx.Err()
		case <-ticker.C:
			if err := ctrl.Tick(ctx); err != nil {
				if err == failover.ErrDisplaced {
					if fc.Log != nil {
						fc.Log.Warning("displaced by secondary, exiting for supervisor restart", nil)
					}
					_ = fc.Stop()
					os.Exit(failover.DisplacedExitCode)
				}
				if fc.Log != nil {
					fc.Log.Error("primary tick failed", err)
				}
			}
		}
	}
}

func acceptLoop(ctx context.Context, srv *transport.Server, ctrl *failover.PrimaryController, fc *failover.Context) {
	for {
		conn, err := srv.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if fc.Log != nil {
				fc.Log.Warning("accept failed", err)
			}
			continue
		}
		go servePeerConn(ctx, conn, ctrl, fc)
	}
}

// servePeerConn handles the secondary's control connection: REGISTER
// goes through PrimaryController.AcceptRegister,
// everything after runs through the generic ReadLoop since a
// primary never needs to originate failover tags on an inbound
// connection, only acknowledge them.
func servePeerConn(ctx context.Context, conn *transport.Conn, ctrl *failover.PrimaryController, fc *failover.Context) {
	handler := func(req wire.Request) wire.Reply {
		if req.Tag == wire.TagRegister {
			return ctrl.AcceptRegister(conn)
		}
		return wire.ErrorReply(wire.ReplyUnknownRequest)
	}

	if err := conn.ReadLoop(ctx, handler); err != nil && fc.Log != nil && ctx.Err() == nil {
		fc.Log.Warning("peer connection closed: "+conn.RemoteHost(), err)
	}
	_ = conn.Close()
	if fc.Peer() == conn {
		_ = fc.ClearPeer()
	}
}

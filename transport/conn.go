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

// Package transport implements the control channel: a long-lived
// authenticated TCP connection between primary and secondary carrying
// framed FAILOVER messages (package wire). It provides just enough
// framing, dialing, and reply matching for the failover core; the full
// batch-request transport lives with the rest of the server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/openpbs/pbs-failover-core/wire"
)

// defaultSendTimeout bounds a send when the caller's context carries no
// deadline of its own. Sends must never block indefinitely.
const defaultSendTimeout = 5 * time.Second

// Handler decides the reply for one decoded inbound request. It must
// never block for long and must never panic; ReadLoop treats a panic as
// a decode-error and tears down the connection.
type Handler func(req wire.Request) wire.Reply

// Conn is the control-channel handle: the underlying socket plus an
// authenticated flag and a no-timeout flag. At
// most one Conn is meaningful per process at a time; callers own that
// invariant, Conn only tracks the two flags.
type Conn struct {
	nc  net.Conn
	enc *wire.Encoder
	dec *wire.Decoder

	session string

	authenticated atomic.Bool
	noTimeout     atomic.Bool
	closed        atomic.Bool
}

// SessionID returns the per-dial nonce generated by Dial, or "" for a
// Conn obtained from Server.Accept unless SetSessionID has been called.
func (c *Conn) SessionID() string {
	return c.session
}

// SetSessionID records a session nonce on the Conn. Nothing in the wire
// messages carries the nonce, so the accepting side only has one if its
// caller sets it here.
func (c *Conn) SetSessionID(id string) {
	c.session = id
}

func newConn(nc net.Conn) *Conn {
	return &Conn{
		nc:  nc,
		enc: wire.NewEncoder(nc),
		dec: wire.NewDecoder(nc),
	}
}

// SetAuthenticated marks the connection authenticated, as the primary does
// on accepting a REGISTER.
func (c *Conn) SetAuthenticated(v bool) {
	c.authenticated.Store(v)
}

// IsAuthenticated reports whether SetAuthenticated(true) has been called.
func (c *Conn) IsAuthenticated() bool {
	return c.authenticated.Load()
}

// SetNoTimeout marks the connection exempt from idle read timeouts, as
// the primary does for an authenticated peer. It affects
// only ReadLoop's idle wait, never SendRequest's own deadline.
func (c *Conn) SetNoTimeout(v bool) {
	c.noTimeout.Store(v)
}

// NoTimeout reports the current no-timeout flag.
func (c *Conn) NoTimeout() bool {
	return c.noTimeout.Load()
}

// RemoteHost returns the peer's address without the port, or "" once
// closed.
func (c *Conn) RemoteHost() string {
	if c.nc == nil {
		return ""
	}
	addr := c.nc.RemoteAddr()
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.nc.Close()
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// SendRequest writes req and blocks for its reply. The send itself never
// blocks past ctx's deadline (or defaultSendTimeout absent one); a
// timeout or write failure closes the connection and returns ErrPeerLost:
// the peer is declared down. The read similarly honors ctx so a caller
// awaiting a bounded acknowledgement (SECD_SHUTDOWN, PRIM_IS_BACK) can
// set its own deadline. A peer that closes the stream before replying is
// reported as io.EOF rather than ErrPeerLost: the caller can tell "got
// through, then the peer died" apart from "never got through", which is
// what lets a REGISTER sender treat EOF as proof the primary is down.
func (c *Conn) SendRequest(ctx context.Context, req wire.Request) (wire.Reply, error) {
	if c.closed.Load() {
		return wire.Reply{}, ErrConnection
	}

	if err := c.nc.SetWriteDeadline(deadlineOf(ctx, defaultSendTimeout)); err != nil {
		return wire.Reply{}, err
	}

	if err := c.enc.EncodeRequest(req); err != nil {
		_ = c.Close()
		return wire.Reply{}, ErrPeerLost
	}

	if err := c.nc.SetReadDeadline(deadlineOf(ctx, defaultSendTimeout)); err != nil {
		return wire.Reply{}, err
	}

	reply, err := c.dec.DecodeReply()
	if err != nil {
		_ = c.Close()
		if errors.Is(err, io.EOF) {
			return wire.Reply{}, io.EOF
		}
		return wire.Reply{}, ErrPeerLost
	}

	return reply, nil
}

// SendReply writes a reply to an inbound request. Used by ReadLoop and
// available directly for a handler that wants to reply outside the normal
// flow (PRIM_IS_BACK's delayed acknowledgement).
func (c *Conn) SendReply(ctx context.Context, reply wire.Reply) error {
	if c.closed.Load() {
		return ErrConnection
	}

	if err := c.nc.SetWriteDeadline(deadlineOf(ctx, defaultSendTimeout)); err != nil {
		return err
	}

	if err := c.enc.EncodeReply(reply); err != nil {
		_ = c.Close()
		return ErrPeerLost
	}

	return nil
}

// ReadLoop decodes inbound requests until ctx is cancelled, the peer
// closes (io.EOF), or a decode error occurs, calling handler for each and
// writing back its reply. It honors the no-timeout flag: when set, reads
// block with no deadline between requests, matching an authenticated
// peer's exempt-from-idle-timeout invariant. ReadLoop returns the
// terminal error: io.EOF, a decode error, or ctx.Err().
func (c *Conn) ReadLoop(ctx context.Context, handler Handler) error {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-stop:
		}
	}()

	for {
		if !c.noTimeout.Load() {
			_ = c.nc.SetReadDeadline(time.Now().Add(defaultSendTimeout))
		} else {
			_ = c.nc.SetReadDeadline(time.Time{})
		}

		req, err := c.dec.DecodeRequest()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var reply wire.Reply
		if err = func() (perr error) {
			defer func() {
				if rec := recover(); rec != nil {
					perr = fmt.Errorf("transport: handler panic: %v", rec)
				}
			}()
			reply = handler(req)
			return nil
		}(); err != nil {
			_ = c.Close()
			return err
		}

		if err = c.SendReply(ctx, reply); err != nil {
			return err
		}
	}
}

func deadlineOf(ctx context.Context, fallback time.Duration) time.Time {
	if ctx != nil {
		if d, ok := ctx.Deadline(); ok {
			return d
		}
	}
	return time.Now().Add(fallback)
}

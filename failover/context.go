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
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	libatm "github.com/openpbs/pbs-failover-core/atomic"
	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/fencing"
	"github.com/openpbs/pbs-failover-core/liveness"
	"github.com/openpbs/pbs-failover-core/logger"
	"github.com/openpbs/pbs-failover-core/runner/ticker"
	"github.com/openpbs/pbs-failover-core/transport"
)

// Context owns all mutable failover state for one process: the role, the
// liveness/marker/license files, the fencing hook, the secondary machine,
// the heartbeat ticker, the single peer connection and the active flag.
// Every handler in this package and in cmd/ receives it explicitly; there
// is no package-level state.
type Context struct {
	Role   Role
	Config config.FailoverConfig
	Delay  config.Delay
	HostID uint64

	Log logger.Logger

	Liveness *liveness.Writer
	Observer *liveness.Reader
	Marker   *liveness.Marker
	License  *liveness.License
	Fencing  *fencing.Hook

	Secondary *SecondaryMachine

	HeartbeatTicker ticker.Ticker

	mu   sync.Mutex
	peer *transport.Conn

	// active is read off the owning goroutine (the heartbeat ticker's
	// Func polls it every period), hence the atomic box rather than a
	// field guarded by mu.
	active libatm.Value[bool]
}

// New builds a Context for role from a validated, normalized config
// (config.FailoverConfig.Normalize already ran). privDir holds the
// liveness, marker and license files; homeDir holds the spool directory
// the fencing hook captures output under.
func New(role Role, cfg config.FailoverConfig, delay config.Delay, hostID uint64, log logger.Logger, privDir, homeDir string) *Context {
	c := &Context{
		Role:     role,
		Config:   cfg,
		Delay:    delay,
		HostID:   hostID,
		Log:      log,
		Liveness: liveness.NewWriter(filepath.Join(privDir, "svrlive")),
		Marker:   liveness.NewMarker(filepath.Join(privDir, "secondary_active")),
		License:  liveness.NewLicense(filepath.Join(privDir, "license.fo")),
		Fencing:  fencing.New(filepath.Join(privDir, "stonith"), filepath.Join(homeDir, "spool")),
		active:   libatm.NewValue[bool](),
	}

	if observer, err := liveness.NewReader(filepath.Join(privDir, "svrlive")); err == nil {
		c.Observer = observer
	}

	// The heartbeat ticker touches the liveness file once per
	// HandshakePeriod whenever this process is the active one: the
	// primary always is; a secondary only after TAKEOV sets SetActive(true).
	c.HeartbeatTicker = ticker.New(HandshakePeriod, func(_ context.Context, _ *time.Ticker) error {
		if !c.IsActive() {
			return nil
		}
		return c.Liveness.Touch()
	})

	return c
}

// Peer returns the current control-channel handle, or nil when none is
// connected. At most one exists per process at any time.
func (c *Context) Peer() *transport.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// RegisterPeer adopts conn as the sole peer handle: rejects with
// ErrPeerBusy if a peer is already connected, otherwise marks conn
// authenticated and timeout-exempt.
func (c *Context) RegisterPeer(conn *transport.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.peer != nil {
		return ErrPeerBusy
	}

	conn.SetAuthenticated(true)
	conn.SetNoTimeout(true)
	c.peer = conn

	return nil
}

// ClearPeer drops the current peer handle, closing it first. Safe to call
// when no peer is set.
func (c *Context) ClearPeer() error {
	c.mu.Lock()
	peer := c.peer
	c.peer = nil
	c.mu.Unlock()

	if peer == nil {
		return nil
	}

	return peer.Close()
}

// IsActive reports whether this process currently serves as the active
// server. TAKEOV sets it on the secondary; the marker file's existence
// tracks it.
func (c *Context) IsActive() bool {
	return c.active.Load()
}

// SetActive sets the process-wide active flag.
func (c *Context) SetActive(v bool) {
	c.active.Store(v)
}

// Stop tears the context down: stops the heartbeat ticker, closes any
// peer connection, and combines every resulting error with
// hashicorp/go-multierror rather than discarding all but the first.
func (c *Context) Stop() error {
	var result *multierror.Error

	if c.HeartbeatTicker != nil {
		if err := c.HeartbeatTicker.Stop(nil); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := c.ClearPeer(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Observer != nil {
		if err := c.Observer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

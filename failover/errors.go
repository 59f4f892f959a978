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

import "errors"

// ErrNoPeer is the single "no peer connected" sentinel. A handshake send
// failure and a never-connected peer both land here: no caller ever needs
// to tell the two apart, so there is one sentinel, not two.
var ErrNoPeer = errors.New("failover: no peer connected")

// ErrPeerBusy is returned to a REGISTER attempt while a peer is already
// connected. The existing peer is left undisturbed.
var ErrPeerBusy = errors.New("failover: peer already registered")

// ErrDisplaced is returned by the primary's startup check when it finds
// the active-marker file: the supervisor must restart it so it can run
// takeover-from-secondary.
var ErrDisplaced = errors.New("failover: active-marker file present, secondary has taken over")

// ErrSecondaryRefusedIdle is returned by TakeoverFromSecondary when the
// secondary was reachable and replied, but declined to go idle (a non-OK
// reply to PRIM_IS_BACK). Carries its own exit code, distinct from
// "secondary unreachable": the caller must be able to tell "couldn't
// reach it at all" apart from "reached it, and it said no".
var ErrSecondaryRefusedIdle = errors.New("failover: secondary refused to go idle during reclaim")

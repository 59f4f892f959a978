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

package transport

import (
	"context"
	"net"
	"time"

	"github.com/hashicorp/go-uuid"
)

// DefaultDialTimeout is the connect deadline used when a caller's context
// carries no deadline of its own.
const DefaultDialTimeout = 6 * time.Second

// Dial connects to addr and returns the resulting Conn. Every dial mints a
// session nonce via uuid.GenerateUUID, readable through Conn.SessionID; the
// nonce is not sent to the peer and is not written to any log line.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	if addr == "" {
		return nil, ErrAddress
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, ErrAddress
	}

	deadline := deadlineOf(ctx, DefaultDialTimeout)

	d := net.Dialer{Deadline: deadline}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	session, err := uuid.GenerateUUID()
	if err != nil {
		_ = nc.Close()
		return nil, err
	}

	c := newConn(nc)
	c.session = session
	return c, nil
}

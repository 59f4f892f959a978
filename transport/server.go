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
	"net"

	"golang.org/x/net/netutil"
)

// maxPendingConnections bounds concurrently-open sockets on the primary's
// listener. This is a defense-in-depth accept-level limit, separate from
// and in addition to the application-level *busy* rejection of a second
// REGISTER - a handful of pending half-open
// connections should never be allowed to pile up regardless of whether
// the failover component has gotten around to rejecting them yet.
const maxPendingConnections = 4

// Server listens for the secondary's control-channel connection.
type Server struct {
	ln net.Listener
}

// Listen binds addr and returns a Server. The listener is wrapped in
// netutil.LimitListener to cap concurrently-open connections.
func Listen(addr string) (*Server, error) {
	if addr == "" {
		return nil, ErrAddress
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Server{ln: netutil.LimitListener(ln, maxPendingConnections)}, nil
}

// Accept blocks for the next inbound connection and wraps it as a Conn.
// It returns the listener's error unwrapped (including on Close).
func (s *Server) Accept() (*Conn, error) {
	nc, err := s.ln.Accept()
	if err != nil {
		return nil, err
	}
	return newConn(nc), nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

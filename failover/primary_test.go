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
	"context"
	"os"

	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/transport"
	"github.com/openpbs/pbs-failover-core/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// dialedPair returns a connected client/server transport.Conn pair over a
// loopback listener, for tests that need a real *transport.Conn rather
// than a zero value (Context.RegisterPeer touches the conn's fields).
func dialedPair() (client, server *transport.Conn, cleanup func()) {
	srv, err := transport.Listen("127.0.0.1:0")
	ExpectWithOffset(1, err).ToNot(HaveOccurred())

	accepted := make(chan *transport.Conn, 1)
	go func() {
		c, acceptErr := srv.Accept()
		ExpectWithOffset(1, acceptErr).ToNot(HaveOccurred())
		accepted <- c
	}()

	cli, err := transport.Dial(context.Background(), srv.Addr().String())
	ExpectWithOffset(1, err).ToNot(HaveOccurred())

	return cli, <-accepted, func() {
		_ = cli.Close()
		_ = srv.Close()
	}
}

var _ = Describe("PrimaryController", func() {
	var (
		dir string
		fc  *failover.Context
		pc  *failover.PrimaryController
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "failover-primary-*")
		Expect(err).ToNot(HaveOccurred())

		fc = failover.New(failover.RolePrimary, config.FailoverConfig{}, config.Delay{}, 11, nil, dir, dir)
		pc = failover.NewPrimaryController(fc)
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("touches the liveness file on every tick", func() {
		Expect(pc.Tick(context.Background())).To(Succeed())
		_, err := os.Stat(dir + "/svrlive")
		Expect(err).ToNot(HaveOccurred())
	})

	It("reports ErrDisplaced once the active-marker file appears", func() {
		Expect(fc.Marker.Write("secondary-host")).To(Succeed())
		err := pc.Tick(context.Background())
		Expect(err).To(MatchError(failover.ErrDisplaced))
	})

	It("accepts a REGISTER when no peer is connected", func() {
		_, server, cleanup := dialedPair()
		defer cleanup()

		reply := pc.AcceptRegister(server)
		Expect(reply.OK()).To(BeTrue())
		Expect(reply.Text).To(Equal(wire.FormatHostID(11)))
	})

	It("rejects a second REGISTER with busy, leaving the first peer undisturbed", func() {
		_, first, cleanup1 := dialedPair()
		defer cleanup1()
		_, second, cleanup2 := dialedPair()
		defer cleanup2()

		Expect(pc.AcceptRegister(first).OK()).To(BeTrue())
		reply := pc.AcceptRegister(second)
		Expect(reply.OK()).To(BeFalse())
		Expect(reply.Code).To(Equal(wire.ReplyBusy))
		Expect(fc.Peer()).To(BeIdenticalTo(first))
	})
})

var _ = Describe("Context", func() {
	It("rejects a second REGISTER while a peer is already connected", func() {
		dir, err := os.MkdirTemp("", "failover-context-*")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = os.RemoveAll(dir) }()

		fc := failover.New(failover.RoleSecondary, config.FailoverConfig{}, config.Delay{}, 7, nil, dir, dir)

		_, conn1, cleanup1 := dialedPair()
		defer cleanup1()
		_, conn2, cleanup2 := dialedPair()
		defer cleanup2()

		Expect(fc.RegisterPeer(conn1)).To(Succeed())
		Expect(fc.RegisterPeer(conn2)).To(MatchError(failover.ErrPeerBusy))
	})

	It("exposes the active flag set by TAKEOV's become-active action", func() {
		dir, err := os.MkdirTemp("", "failover-active-*")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = os.RemoveAll(dir) }()

		fc := failover.New(failover.RoleSecondary, config.FailoverConfig{}, config.Delay{}, 7, nil, dir, dir)
		Expect(fc.IsActive()).To(BeFalse())
		fc.SetActive(true)
		Expect(fc.IsActive()).To(BeTrue())
	})
})

var _ = Describe("TakeoverFromSecondary", func() {
	It("returns ErrSecondaryRefusedIdle when the secondary replies but declines", func() {
		srv, err := transport.Listen("127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = srv.Close() }()

		go func() {
			conn, acceptErr := srv.Accept()
			if acceptErr != nil {
				return
			}
			defer func() { _ = conn.Close() }()
			_ = conn.ReadLoop(context.Background(), func(wire.Request) wire.Reply {
				return wire.ErrorReply(wire.ReplySystemError)
			})
		}()

		err = failover.TakeoverFromSecondary(context.Background(), srv.Addr().String())
		Expect(err).To(MatchError(failover.ErrSecondaryRefusedIdle))
	})

	It("returns a non-ErrSecondaryRefusedIdle error when the secondary is unreachable", func() {
		err := failover.TakeoverFromSecondary(context.Background(), "127.0.0.1:1")
		Expect(err).To(HaveOccurred())
		Expect(err).ToNot(MatchError(failover.ErrSecondaryRefusedIdle))
	})
})

var _ = Describe("wire tags used by dispatch", func() {
	It("covers every inbound failover tag", func() {
		Expect(wire.TagRegister.Valid()).To(BeTrue())
		Expect(wire.TagHandshake.Valid()).To(BeTrue())
		Expect(wire.TagPrimIsBack.Valid()).To(BeTrue())
		Expect(wire.TagSecdShutdown.Valid()).To(BeTrue())
		Expect(wire.TagSecdGoInactive.Valid()).To(BeTrue())
		Expect(wire.TagSecdTakeover.Valid()).To(BeTrue())
	})
})

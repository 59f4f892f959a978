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

package hashicorp_test

import (
	hclog "github.com/hashicorp/go-hclog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openpbs/pbs-failover-core/logger"
	loghcl "github.com/openpbs/pbs-failover-core/logger/hashicorp"
	loglvl "github.com/openpbs/pbs-failover-core/logger/level"
)

var _ = Describe("hclog bridge", func() {
	var b hclog.Logger

	BeforeEach(func() {
		b = loghcl.New(logger.New(), "failover")
	})

	It("carries its name through Named and ResetNamed", func() {
		Expect(b.Name()).To(Equal("failover"))
		Expect(b.Named("fence").Name()).To(Equal("failover.fence"))
		Expect(b.Named("fence").ResetNamed("peer").Name()).To(Equal("peer"))
	})

	It("round-trips levels through SetLevel/GetLevel", func() {
		b.SetLevel(hclog.Debug)
		Expect(b.GetLevel()).To(Equal(hclog.Debug))
		Expect(b.IsDebug()).To(BeTrue())

		b.SetLevel(hclog.Warn)
		Expect(b.GetLevel()).To(Equal(hclog.Warn))
		Expect(b.IsDebug()).To(BeFalse())
		Expect(b.IsError()).To(BeTrue())
	})

	It("maps hclog.Info onto the facade's InfoLevel", func() {
		l := logger.New()
		b = loghcl.New(l, "x")
		b.SetLevel(hclog.Info)
		Expect(l.GetLevel()).To(Equal(loglvl.InfoLevel))
	})

	It("logs through every level without panicking", func() {
		Expect(func() {
			b.Trace("trace", "k", "v")
			b.Debug("debug")
			b.Info("info", "k", "v")
			b.Warn("warn")
			b.Error("error", "k", "v")
			b.Log(hclog.Info, "log", "k", "v")
		}).ToNot(Panic())
	})

	It("derives a child logger from With without losing the name", func() {
		child := b.With("peer", "pbs-secondary")
		Expect(child.Name()).To(Equal("failover"))
		Expect(func() { child.Info("registered") }).ToNot(Panic())
	})

	It("exposes a usable standard library logger", func() {
		std := b.StandardLogger(nil)
		Expect(std).ToNot(BeNil())
		Expect(func() { std.Println("via stdlib log") }).ToNot(Panic())
	})
})

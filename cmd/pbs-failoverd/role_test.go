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
	"os"

	"github.com/openpbs/pbs-failover-core/config"
	"github.com/openpbs/pbs-failover-core/failover"
	"github.com/openpbs/pbs-failover-core/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("shutdownTag", func() {
	It("maps each operator policy onto its wire tag", func() {
		tag, err := shutdownTag("takeover")
		Expect(err).NotTo(HaveOccurred())
		Expect(tag).To(Equal(wire.TagSecdTakeover))

		tag, err = shutdownTag("inactive")
		Expect(err).NotTo(HaveOccurred())
		Expect(tag).To(Equal(wire.TagSecdGoInactive))

		tag, err = shutdownTag("shutdown")
		Expect(err).NotTo(HaveOccurred())
		Expect(tag).To(Equal(wire.TagSecdShutdown))
	})

	It("rejects an unknown policy", func() {
		_, err := shutdownTag("reboot")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("resolveRole", func() {
	var cfg config.FailoverConfig

	BeforeEach(func() {
		cfg = config.FailoverConfig{
			PBSPrimary:   "pbs-a.example.com",
			PBSSecondary: "pbs-b.example.com",
		}
	})

	It("honors an explicit --role primary", func() {
		role, err := resolveRole("primary", cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(role).To(Equal(failover.RolePrimary))
	})

	It("honors an explicit --role secondary", func() {
		role, err := resolveRole("secondary", cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(role).To(Equal(failover.RoleSecondary))
	})

	It("rejects an unrecognized --role value", func() {
		_, err := resolveRole("tertiary", cfg)
		Expect(err).To(HaveOccurred())
	})

	Context("auto", func() {
		It("infers primary when the local hostname matches pbs_primary", func() {
			host, err := os.Hostname()
			Expect(err).NotTo(HaveOccurred())
			cfg.PBSPrimary = host

			role, err := resolveRole("auto", cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(Equal(failover.RolePrimary))
		})

		It("infers secondary when the local hostname matches pbs_secondary", func() {
			host, err := os.Hostname()
			Expect(err).NotTo(HaveOccurred())
			cfg.PBSSecondary = host

			role, err := resolveRole("auto", cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(Equal(failover.RoleSecondary))
		})

		It("errors when the local hostname matches neither", func() {
			_, err := resolveRole("auto", cfg)
			Expect(err).To(HaveOccurred())
		})
	})
})

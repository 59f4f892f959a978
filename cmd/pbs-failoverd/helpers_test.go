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
	"github.com/openpbs/pbs-failover-core/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("fnv64", func() {
	It("is deterministic for the same input", func() {
		Expect(fnv64("pbs-a.example.com")).To(Equal(fnv64("pbs-a.example.com")))
	})

	It("differs across distinct inputs", func() {
		Expect(fnv64("pbs-a.example.com")).NotTo(Equal(fnv64("pbs-b.example.com")))
	})
})

var _ = Describe("hostIDFor", func() {
	It("falls back to the fnv64 hash for an unresolvable hostname", func() {
		const bogus = "this-host-does-not-resolve.invalid"
		Expect(hostIDFor(bogus)).To(Equal(fnv64(bogus)))
	})
})

var _ = Describe("controlAddr", func() {
	It("joins the host with the configured DIS port", func() {
		cfg := config.FailoverConfig{PBSServerPortDIS: 15001}
		Expect(controlAddr(cfg, "pbs-a.example.com")).To(Equal("pbs-a.example.com:15001"))
	})
})

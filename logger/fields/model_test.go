/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package fields_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	logfld "github.com/openpbs/pbs-failover-core/logger/fields"
)

var _ = Describe("Fields", func() {
	It("New returns an empty set", func() {
		Expect(logfld.New()).To(BeEmpty())
	})

	It("Add sets a key and returns the receiver for chaining", func() {
		f := logfld.New().Add("role", "primary").Add("state", "CONN")

		Expect(f).To(HaveKeyWithValue("role", "primary"))
		Expect(f).To(HaveKeyWithValue("state", "CONN"))
	})

	It("Clone is independent of the original", func() {
		f := logfld.New().Add("role", "primary")
		c := f.Clone()
		c.Add("role", "secondary")

		Expect(f).To(HaveKeyWithValue("role", "primary"))
		Expect(c).To(HaveKeyWithValue("role", "secondary"))
	})

	It("Merge overlays the argument's keys onto the receiver", func() {
		base := logfld.New().Add("role", "primary")
		merged := base.Merge(logfld.New().Add("state", "CONN").Add("role", "secondary"))

		Expect(merged).To(HaveKeyWithValue("role", "secondary"))
		Expect(merged).To(HaveKeyWithValue("state", "CONN"))
	})

	It("Logrus converts to an equivalent logrus.Fields", func() {
		f := logfld.New().Add("peer", "node-b")
		lf := f.Logrus()

		Expect(lf).To(HaveKeyWithValue("peer", "node-b"))
	})
})

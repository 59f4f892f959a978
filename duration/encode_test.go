/*
MIT License

Copyright (c) 2023 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package duration_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libdur "github.com/openpbs/pbs-failover-core/duration"
)

var _ = Describe("Duration encoding", func() {
	orig := libdur.Minutes(1) + libdur.Seconds(30)

	It("round-trips through JSON", func() {
		b, err := json.Marshal(orig)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal(`"1m30s"`))

		var d libdur.Duration
		Expect(json.Unmarshal(b, &d)).To(Succeed())
		Expect(d).To(Equal(orig))
	})

	It("round-trips through encoding.TextMarshaler", func() {
		b, err := orig.MarshalText()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("1m30s"))

		var d libdur.Duration
		Expect(d.UnmarshalText(b)).To(Succeed())
		Expect(d).To(Equal(orig))
	})

	It("rejects a TOML value that is neither string nor []byte", func() {
		var d libdur.Duration
		Expect(d.UnmarshalTOML(42)).To(HaveOccurred())
	})
})

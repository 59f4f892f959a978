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

package level_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	loglvl "github.com/openpbs/pbs-failover-core/logger/level"
)

var _ = Describe("Level", func() {
	DescribeTable("String",
		func(l loglvl.Level, expect string) {
			Expect(l.String()).To(Equal(expect))
		},
		Entry("panic", loglvl.PanicLevel, "panic"),
		Entry("fatal", loglvl.FatalLevel, "fatal"),
		Entry("error", loglvl.ErrorLevel, "error"),
		Entry("warning", loglvl.WarnLevel, "warning"),
		Entry("info", loglvl.InfoLevel, "info"),
		Entry("debug", loglvl.DebugLevel, "debug"),
		Entry("nil", loglvl.NilLevel, "none"),
	)

	DescribeTable("Parse",
		func(s string, expect loglvl.Level) {
			Expect(loglvl.Parse(s)).To(Equal(expect))
		},
		Entry("upper case", "ERROR", loglvl.ErrorLevel),
		Entry("mixed case with spaces", "  Warn ", loglvl.WarnLevel),
		Entry("warning alias", "warning", loglvl.WarnLevel),
		Entry("debug", "debug", loglvl.DebugLevel),
		Entry("unknown falls back to info", "bogus", loglvl.InfoLevel),
	)

	It("orders severities so comparisons are meaningful", func() {
		Expect(loglvl.DebugLevel > loglvl.InfoLevel).To(BeTrue())
		Expect(loglvl.InfoLevel > loglvl.WarnLevel).To(BeTrue())
		Expect(loglvl.WarnLevel > loglvl.ErrorLevel).To(BeTrue())
		Expect(loglvl.ErrorLevel > loglvl.FatalLevel).To(BeTrue())
		Expect(loglvl.FatalLevel > loglvl.PanicLevel).To(BeTrue())
		Expect(loglvl.PanicLevel > loglvl.NilLevel).To(BeTrue())
	})

	DescribeTable("Logrus",
		func(l loglvl.Level, expect logrus.Level) {
			Expect(l.Logrus()).To(Equal(expect))
		},
		Entry("panic", loglvl.PanicLevel, logrus.PanicLevel),
		Entry("fatal", loglvl.FatalLevel, logrus.FatalLevel),
		Entry("error", loglvl.ErrorLevel, logrus.ErrorLevel),
		Entry("warning", loglvl.WarnLevel, logrus.WarnLevel),
		Entry("info", loglvl.InfoLevel, logrus.InfoLevel),
		Entry("debug", loglvl.DebugLevel, logrus.DebugLevel),
		Entry("nil falls back to info", loglvl.NilLevel, logrus.InfoLevel),
	)
})

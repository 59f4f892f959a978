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

package errors

// The three error kinds the failover core distinguishes, each given its own
// CodeError range so a log line's numeric code alone tells a reader which
// kind produced it.
const (
	// MinCodeTransientIO starts the range for stat/connect/read failures
	// that drive state transitions (NOCONN, retry backoff). Never surfaces
	// past the state machine as a fatal condition.
	MinCodeTransientIO = 1000

	// MinCodeProtocol starts the range for unexpected replies, unknown
	// request tags, and malformed REGISTER replies. Logged at CRITICAL and
	// either reverts the secondary to NOCONN or exits the process.
	MinCodeProtocol = 2000

	// MinCodeFatal starts the range for unresolvable configuration, such as
	// an unresolvable peer hostname or a license.fo the process cannot open.
	// Logged and the process exits 1.
	MinCodeFatal = 3000

	MinAvailable = 4000
)

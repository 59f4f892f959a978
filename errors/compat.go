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

var (
	defaultPattern      = "[Error #%d] %s"
	defaultPatternTrace = "[Error #%d] %s (%s)"
)

// SetDefaultPattern sets the fmt pattern ers.CodeError uses: 2 verbs, code
// then message.
func SetDefaultPattern(pattern string) {
	defaultPattern = pattern
}

func GetDefaultPattern() string {
	return defaultPattern
}

// SetDefaultPatternTrace sets the fmt pattern ers.CodeErrorTrace uses: 3
// verbs, code, message, then trace. main() calls this once at startup to
// prefix every ErrorReturnCodeErrorTrace-mode error string with the daemon
// name.
func SetDefaultPatternTrace(patternTrace string) {
	defaultPatternTrace = patternTrace
}

func GetDefaultPatternTrace() string {
	return defaultPatternTrace
}

// SetTracePathFilter overrides the package-root prefix filterPath strips
// from a captured frame's file path.
func SetTracePathFilter(path string) {
	filterPkg = path
}

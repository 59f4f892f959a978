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

import (
	"math"
	"sort"
	"strconv"
)

// idMsgFct maps a CodeError's floor value to the message function covering
// every code at or above it, up to the next registered floor. config/errors.go
// registers pbs-failoverd's config-validation range this way (see
// ExistInMapMessage, RegisterIdFctMessage).
var idMsgFct = make(map[CodeError]Message)

// Message generates the human text for a CodeError.
type Message func(code CodeError) (message string)

// CodeError is a uint16 error code in the HTTP-status style this package's
// Error carries alongside its message and trace.
type CodeError uint16

const (
	// UnknownError is the zero code: no CodeError was set.
	UnknownError CodeError = 0

	// UnknownMessage is the fallback text for UnknownError, or for any code
	// whose registered Message function returns an empty string.
	UnknownMessage = "unknown error"

	NullMessage = ""
)

// Uint16 returns c as a uint16.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Int returns c as an int.
func (c CodeError) Int() int {
	return int(c)
}

// String renders c as its decimal digits, used in log lines and the
// CodeError/CodeErrorTrace pattern formatting in errors.go.
func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the text registered for c, or UnknownMessage if c is
// UnknownError or nothing covers it.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[findCodeErrorInMapMessage(c)]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// Error builds an Error carrying code c, c's registered message, and p as
// parents.
func (c CodeError) Error(p ...error) Error {
	return New(c.Uint16(), c.Message(), p...)
}

// RegisterIdFctMessage registers fct as the message function covering every
// code from minCode up to the next registered floor. config/errors.go calls
// this once at init for the application's error-code range; ExistInMapMessage
// guards against a second package claiming the same floor.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}

	idMsgFct[minCode] = fct
	orderMapMessage()
}

// ExistInMapMessage reports whether code resolves to a registered, non-empty
// message; used to detect a code-range collision before RegisterIdFctMessage.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[findCodeErrorInMapMessage(code)]; ok {
		if m := f(code); m != NullMessage {
			return true
		}
	}

	return false
}

func getMapMessageKey() []CodeError {
	var (
		keys = make([]int, 0)
		res  = make([]CodeError, 0)
	)

	for k := range idMsgFct {
		keys = append(keys, int(k.Uint16()))
	}

	sort.Ints(keys)

	for _, k := range keys {
		// prevent overflow
		var i CodeError
		if k < 0 {
			i = 0
		} else if k > math.MaxUint16 {
			i = math.MaxUint16
		} else {
			i = CodeError(k)
		}

		res = append(res, i)
	}

	return res
}

func orderMapMessage() {
	var res = make(map[CodeError]Message)

	for _, k := range getMapMessageKey() {
		res[k] = idMsgFct[k]
	}

	idMsgFct = res
}

// findCodeErrorInMapMessage returns the highest registered floor at or below
// code, i.e. the floor whose range code falls in.
func findCodeErrorInMapMessage(code CodeError) CodeError {
	var res CodeError = 0

	for _, k := range getMapMessageKey() {
		if k <= code && k > res {
			res = k
		}
	}

	return res
}

func isCodeInSlice(code CodeError, slice []CodeError) bool {
	for _, c := range slice {
		if c == code {
			return true
		}
	}

	return false
}

func unicCodeSlice(slice []CodeError) []CodeError {
	var res = make([]CodeError, 0)

	for _, c := range slice {
		if !isCodeInSlice(c, res) {
			res = append(res, c)
		}
	}

	return res
}

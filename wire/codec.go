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

package wire

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// maxLineSize bounds a single framed message. Failover messages are a few
// bytes of JSON; this is generous headroom against a corrupt or hostile
// peer without risking unbounded buffering.
const maxLineSize = 64 * 1024

// Encoder writes Request/Reply values to an underlying stream as
// newline-delimited JSON, one value per line. Safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	e  *json.Encoder
}

// NewEncoder returns an Encoder writing to w. json.Encoder already
// terminates every Encode call with a single '\n', which is exactly the
// framing this protocol needs.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{e: json.NewEncoder(w)}
}

// EncodeRequest frames and writes a Request.
func (c *Encoder) EncodeRequest(r Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.e.Encode(r)
}

// EncodeReply frames and writes a Reply.
func (c *Encoder) EncodeReply(r Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.e.Encode(r)
}

// Decoder reads newline-delimited JSON Request/Reply values from an
// underlying stream. Not safe for concurrent use from more than one
// goroutine; the control channel has exactly one reader per direction.
type Decoder struct {
	s *bufio.Scanner
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 4096), maxLineSize)
	return &Decoder{s: s}
}

// DecodeRequest reads and decodes one Request. Returns io.EOF when the
// peer has closed the stream with no partial line pending; any other scan
// or unmarshal failure is returned as-is and is a decode error for the
// caller's purposes.
func (d *Decoder) DecodeRequest() (Request, error) {
	var r Request
	line, err := d.nextLine()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(line, &r)
	return r, err
}

// DecodeReply reads and decodes one Reply. Same EOF/decode-error contract
// as DecodeRequest.
func (d *Decoder) DecodeReply() (Reply, error) {
	var r Reply
	line, err := d.nextLine()
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(line, &r)
	return r, err
}

func (d *Decoder) nextLine() ([]byte, error) {
	if !d.s.Scan() {
		if err := d.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return d.s.Bytes(), nil
}

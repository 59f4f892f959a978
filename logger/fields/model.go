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

// Package fields carries the small, unordered key/value set stamped onto every
// failover log line (role, state, peer and similar context).
package fields

import "github.com/sirupsen/logrus"

type Fields map[string]interface{}

// New returns an empty Fields set.
func New() Fields {
	return make(Fields)
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	n := make(Fields, len(f))
	for k, v := range f {
		n[k] = v
	}
	return n
}

// Add sets key to val and returns the receiver for chaining.
func (f Fields) Add(key string, val interface{}) Fields {
	f[key] = val
	return f
}

// Merge overlays o's keys onto f, returning the receiver.
func (f Fields) Merge(o Fields) Fields {
	for k, v := range o {
		f[k] = v
	}
	return f
}

// Logrus converts Fields into logrus.Fields for use with a logrus.Entry.
func (f Fields) Logrus() logrus.Fields {
	return logrus.Fields(f)
}

/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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
 */

package duration

import (
	"encoding/json"
	"fmt"
)

// Duration's wire form, across every one of these codecs, is always its
// String() text ("1h2m3s", "5d"), never the raw nanosecond count: a
// secondary_delay of "30s" in the config file should look like "30s"
// wherever it gets re-serialized too, in a support bundle or a debug dump.

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(bytes []byte) error {
	return d.unmarshall(bytes)
}

func (d Duration) MarshalTOML() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalTOML(i interface{}) error {
	if b, k := i.([]byte); k {
		return d.unmarshall(b)
	}

	if b, k := i.(string); k {
		return d.parseString(b)
	}

	return fmt.Errorf("duration: value not in valid format")
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(bytes []byte) error {
	return d.unmarshall(bytes)
}

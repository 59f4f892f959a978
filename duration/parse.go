/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package duration

import (
	"strconv"
	"strings"
	"time"
)

// parseString strips stray quote characters and spaces, takes a leading
// whole-day "<n>d" component off as n*24h, and hands the rest to
// time.ParseDuration; config.ParseDelay calls through this for any
// secondary_delay value that isn't a bare integer, and a YAML/TOML loader
// occasionally leaves one quote behind depending on how the value was
// written in the config file.
func parseString(s string) (Duration, error) {
	s = strings.Replace(s, "\"", "", -1)
	s = strings.Replace(s, "'", "", -1)
	s = strings.Replace(s, " ", "", -1)

	var day time.Duration
	if i := strings.IndexByte(s, 'd'); i >= 0 {
		n, e := strconv.ParseInt(s[:i], 10, 64)
		if e != nil {
			return 0, e
		}
		day, s = time.Duration(n)*24*time.Hour, s[i+1:]
		if s == "" {
			s = "0"
		} else if day < 0 {
			s = "-" + s
		}
	}

	if v, e := time.ParseDuration(s); e != nil {
		return 0, e
	} else {
		return Duration(day + v), nil
	}
}

func (d *Duration) parseString(s string) error {
	if v, e := parseString(s); e != nil {
		return e
	} else {
		*d = v
		return nil
	}
}

func (d *Duration) unmarshall(val []byte) error {
	if tmp, err := ParseByte(val); err != nil {
		return err
	} else {
		*d = tmp
		return nil
	}
}

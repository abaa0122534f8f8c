// Copyright 2018 Rustam Gilyazov. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package maxlines

const (
	lf = '\n'
	cr = '\r'
)

// trimEOL removes a single trailing "\n" or "\r\n" from the line.  A "\r"
// without the "\n" after it is kept.
func trimEOL(line []byte) []byte {
	if len(line) == 0 || line[len(line)-1] != lf {
		return line
	}
	line = line[:len(line)-1]
	if len(line) > 0 && line[len(line)-1] == cr {
		line = line[:len(line)-1]
	}
	return line
}

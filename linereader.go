// Copyright 2018 Rustam Gilyazov. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package maxlines

import (
	"bufio"
	"bytes"
	"io"
)

// Source is the stream the Reader takes lines from.
type Source interface {
	// ReadLine appends the bytes up to and including the next '\n' to buf,
	// and returns the number of bytes appended.  The last line of the stream
	// may come without '\n'.  At the end of stream ReadLine returns 0 and a
	// nil error, and must keep doing so on subsequent calls.
	ReadLine(buf *bytes.Buffer) (int, error)
}

// SourceFunc is an adapter to use an ordinary function as a Source.
type SourceFunc func(buf *bytes.Buffer) (int, error)

// ReadLine calls f(buf).
func (f SourceFunc) ReadLine(buf *bytes.Buffer) (int, error) {
	return f(buf)
}

// NewSource returns a Source reading from r through a bufio.Reader of the
// default size.  If r is already a *bufio.Reader, it is used as is.
func NewSource(r io.Reader) Source {
	return &lnReader{r: bufio.NewReader(r)}
}

// NewSourceSize is NewSource with a buffer of at least size bytes.  The
// buffer size does not limit the line length.
func NewSourceSize(r io.Reader, size int) Source {
	return &lnReader{r: bufio.NewReaderSize(r, size)}
}

type lnReader struct {
	r *bufio.Reader
}

func (lr *lnReader) ReadLine(buf *bytes.Buffer) (int, error) {
	var n int
	for {
		chunk, err := lr.r.ReadSlice('\n')
		buf.Write(chunk)
		n += len(chunk)
		switch err {
		case nil, io.EOF:
			return n, nil
		case bufio.ErrBufferFull:
			// line is longer than the buffer, keep going
		default:
			return n, err
		}
	}
}

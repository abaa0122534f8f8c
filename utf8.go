// Copyright 2018 Rustam Gilyazov. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package maxlines

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by the ValidUTF8 source for lines that are not
// valid UTF-8.
var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// ValidUTF8 returns a Source that fails lines of src that are not valid
// UTF-8.  The bytes of the invalid line are consumed, so the next call reads
// the following line.
func ValidUTF8(src Source) Source {
	return &utf8Source{src: src}
}

type utf8Source struct {
	src Source
}

func (s *utf8Source) ReadLine(buf *bytes.Buffer) (int, error) {
	start := buf.Len()
	n, err := s.src.ReadLine(buf)
	if err != nil || n == 0 {
		return n, err
	}
	if !utf8.Valid(buf.Bytes()[start:]) {
		return n, fmt.Errorf("line of %d bytes: %w", n, ErrInvalidUTF8)
	}
	return n, nil
}

// Copyright 2018 Rustam Gilyazov. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package maxlines reads lines from a buffered stream in batches of up to N
// lines at a time.
//
// A Reader wraps a Source and hands out either a single line (Single) or a
// Batch of lines (Next).  Every line is a Line value: either the text of the
// line without its terminator, or the error the Source returned while reading
// it.  Errors do not stop the reading: a failed line takes the position in the
// batch that the line would have had, and the next call reads the next line.
//
//	r := maxlines.NewReaderSize(f, 32<<20, 1000)
//	for batch := range r.All() {
//		for _, ln := range batch {
//			if ln.Err != nil {
//				// handle
//				continue
//			}
//			insert(ln.Text)
//		}
//	}
//
// If the Source keeps failing forever (e.g. a broken pipe), the Reader keeps
// returning batches of failures and never reaches the end of stream.  Callers
// reading from such sources should stop after a number of consecutive
// failures.
//
// A Reader must not be used from more than one goroutine at a time.
package maxlines

import (
	"bytes"
	"errors"
	"io"
	"iter"
)

// Line is a single line read from the Source.  If Err is nil, Text holds the
// line without the trailing "\n" or "\r\n".
type Line struct {
	Text string
	Err  error
}

// Batch is an ordered, non-empty group of lines returned by Reader.Next.
type Batch []Line

// Reader reads lines from a Source, up to maxLines lines per batch.
type Reader struct {
	src      Source
	maxLines int

	scratch bytes.Buffer
}

// New returns a Reader that reads batches of at most maxLines lines from src.
// maxLines is not validated: if it is zero or negative, Next reports the end
// of the batch sequence on the first call.
func New(src Source, maxLines int) *Reader {
	return &Reader{src: src, maxLines: maxLines}
}

// NewReader wraps r in a buffered Source with the default buffer size.
func NewReader(r io.Reader, maxLines int) *Reader {
	return New(NewSource(r), maxLines)
}

// NewReaderSize wraps r in a buffered Source with at least size bytes of
// buffer.
func NewReaderSize(r io.Reader, size int, maxLines int) *Reader {
	return New(NewSourceSize(r, size), maxLines)
}

// MaxLines returns the batch size the Reader was created with.
func (r *Reader) MaxLines() int {
	return r.maxLines
}

// Single reads one line.  It returns false if the Source is at the end of
// stream.  A Source error is returned in Line.Err, with true, and anything
// read before the error is discarded.
func (r *Reader) Single() (Line, bool) {
	r.scratch.Reset()
	n, err := r.src.ReadLine(&r.scratch)
	if err != nil {
		return Line{Err: err}, true
	}
	if n == 0 {
		return Line{}, false
	}
	// string() copies, the scratch buffer is reused on the next call.
	return Line{Text: string(trimEOL(r.scratch.Bytes()))}, true
}

// Next reads up to MaxLines lines.  It stops early at the end of stream.  It
// returns false if no lines were read.  The batch may contain failed lines
// alongside the successful ones, callers must check each Line.Err.
func (r *Reader) Next() (Batch, bool) {
	var batch Batch
	for i := 0; i < r.maxLines; i++ {
		ln, ok := r.Single()
		if !ok {
			break
		}
		batch = append(batch, ln)
	}
	if len(batch) == 0 {
		return nil, false
	}
	return batch, true
}

// All returns an iterator over the batches, calling Next until it returns
// false.
func (r *Reader) All() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		for {
			batch, ok := r.Next()
			if !ok || !yield(batch) {
				return
			}
		}
	}
}

// Lines returns an iterator over single lines, calling Single until the end
// of stream.
func (r *Reader) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			ln, ok := r.Single()
			if !ok || !yield(ln.Text, ln.Err) {
				return
			}
		}
	}
}

// Texts returns the text of the successfully read lines in the batch.
func (b Batch) Texts() []string {
	texts := make([]string, 0, len(b))
	for _, ln := range b {
		if ln.Err == nil {
			texts = append(texts, ln.Text)
		}
	}
	return texts
}

// Failed returns the number of lines in the batch that failed to read.
func (b Batch) Failed() int {
	var n int
	for _, ln := range b {
		if ln.Err != nil {
			n++
		}
	}
	return n
}

// Err returns all line errors of the batch joined together, or nil.
func (b Batch) Err() error {
	var errs []error
	for _, ln := range b {
		if ln.Err != nil {
			errs = append(errs, ln.Err)
		}
	}
	return errors.Join(errs...)
}

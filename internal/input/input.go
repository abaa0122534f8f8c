// Package input opens the inputs of the maxlines command: files or stdin,
// optionally compressed and in a text encoding other than UTF-8.
package input

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/zstd"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stdin is the input name that stands for the standard input.
const Stdin = "-"

// Compression values.
const (
	CompressionAuto = "auto"
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
)

var (
	ErrNotFile            = errors.New("not a file")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrUnknownEncoding    = errors.New("unknown encoding")
)

// Options control how the input is decoded.
type Options struct {
	// Compression is one of the Compression values, empty means
	// CompressionAuto.
	Compression string
	// Encoding is a WHATWG encoding label, i.e. "windows-1251" or
	// "utf-16le".  Empty means UTF-8.
	Encoding string
	// Stdin is read for the Stdin input name, os.Stdin if nil.
	Stdin io.Reader
}

// Open opens the named input.  Closing the returned reader closes all
// layers, but never the standard input.
func Open(name string, opts Options) (io.ReadCloser, error) {
	comp, err := compression(name, opts.Compression)
	if err != nil {
		return nil, err
	}
	// resolve the encoding before touching the file
	if _, err := decoder(opts.Encoding); err != nil {
		return nil, err
	}

	var s stack
	if name == Stdin {
		s.r = opts.Stdin
		if s.r == nil {
			s.r = os.Stdin
		}
	} else {
		f, err := openFile(name)
		if err != nil {
			return nil, err
		}
		s.push(f, f)
	}

	switch comp {
	case CompressionZstd:
		zr := zstd.NewReader(s.r)
		s.push(zr, zr)
	case CompressionGzip:
		gr, err := gzip.NewReader(s.r)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		s.push(gr, gr)
	}

	if err := s.decode(opts.Encoding); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &s, nil
}

func openFile(name string) (*os.File, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFile)
	}
	return os.Open(name)
}

// compression resolves the compression for the input name.
func compression(name, comp string) (string, error) {
	switch strings.ToLower(comp) {
	case "", CompressionAuto:
	case CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	case CompressionGzip:
		return CompressionGzip, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, comp)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		return CompressionZstd, nil
	case ".gz":
		return CompressionGzip, nil
	}
	return CompressionNone, nil
}

// decoder returns the decoder for the label, or nil for UTF-8.
func decoder(label string) (transform.Transformer, error) {
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil, nil
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// stack is the chain of readers of an input, the last one on top.
type stack struct {
	r       io.Reader
	closers []io.Closer
}

func (s *stack) push(r io.Reader, c io.Closer) {
	s.r = r
	s.closers = append(s.closers, c)
}

func (s *stack) decode(label string) error {
	dec, err := decoder(label)
	if err != nil {
		return err
	}
	if dec != nil {
		s.r = transform.NewReader(s.r, dec)
		return nil
	}
	r, err := skipBOM(s.r)
	if err != nil {
		return err
	}
	s.r = r
	return nil
}

func (s *stack) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Close closes the layers top to bottom and returns all errors.
func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

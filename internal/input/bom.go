package input

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// bom is Unicode BOM
var bom = [3]byte{0xef, 0xbb, 0xbf}

// hasBOM checks the provided line for BOM signature, and returns
// the length of the signature (offset of the text)
func hasBOM(line []byte) (bool, int) {
	if len(line) < len(bom) {
		return false, 0
	}
	if bytes.Equal(bom[:], line[:len(bom)]) {
		return true, len(bom)
	}
	return false, 0
}

// skipBOM returns a reader that skips the UTF-8 BOM at the start of r, if
// there is one.
func skipBOM(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(bom))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if ok, offset := hasBOM(head); ok {
		if _, err := br.Discard(offset); err != nil {
			return nil, err
		}
	}
	return br, nil
}

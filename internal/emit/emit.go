// Package emit writes batches read by maxlines to an output stream.
package emit

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rusq/maxlines"
)

// Emitter writes records.  Implementations are safe for concurrent use.
type Emitter interface {
	Emit(rec Record) error
}

// Record is one batch of one input.
type Record struct {
	ID     ulid.ULID   `json:"id"`
	Input  string      `json:"input"`
	Seq    int         `json:"seq"`
	Lines  []string    `json:"lines"`
	Errors []LineError `json:"errors,omitempty"`
}

// LineError is a line of the batch that failed to read.  Pos is the
// 0-based position of the line within the batch.
type LineError struct {
	Pos int    `json:"pos"`
	Msg string `json:"error"`
}

// NewRecord makes a record out of the seq-th batch of the input.  The ID is
// assigned by the Emitter.
func NewRecord(input string, seq int, b maxlines.Batch) Record {
	rec := Record{
		Input: input,
		Seq:   seq,
		Lines: b.Texts(),
	}
	for i, ln := range b {
		if ln.Err != nil {
			rec.Errors = append(rec.Errors, LineError{Pos: i, Msg: ln.Err.Error()})
		}
	}
	return rec
}

// NDJSON writes each record as a JSON object on its own line.
type NDJSON struct {
	mu      sync.Mutex
	enc     *json.Encoder
	entropy io.Reader
	now     func() time.Time
}

// NewNDJSON returns an NDJSON emitter writing to w.
func NewNDJSON(w io.Writer) *NDJSON {
	return &NDJSON{
		enc:     json.NewEncoder(w),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Emit assigns the record a new ULID and writes it.
func (e *NDJSON) Emit(rec Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(e.now()), e.entropy)
	if err != nil {
		return err
	}
	rec.ID = id
	return e.enc.Encode(rec)
}

// Text writes the lines of each record, one per line.  Failed lines are
// skipped.
type Text struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewText returns a Text emitter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: bufio.NewWriter(w)}
}

// Emit writes the lines of the record.
func (e *Text) Emit(rec Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, line := range rec.Lines {
		e.w.WriteString(line)
		e.w.WriteByte('\n')
	}
	return e.w.Flush()
}

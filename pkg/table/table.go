package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// Delimiter separates fields within a record.
const Delimiter = ';'

// ErrArity is returned when a record's field count differs from the header's.
var ErrArity = errors.New("record has wrong number of fields")

// ArityError describes a record whose field count differs from the header's.
type ArityError struct {
	Line int // One-based line where the record starts.
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("line %d: %v: want %d, got %d", e.Line, ErrArity, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error {
	return ErrArity
}

// Document is a header row followed by a lazy sequence of records. Records
// can only be iterated once.
type Document struct {
	r       *csv.Reader
	counter *countingReader
	closer  io.Closer
	headers []string
}

// NewDocument reads the header row from r. An empty input is a document with
// no headers and no records.
func NewDocument(r io.Reader) (*Document, error) {
	counter := &countingReader{r: r}

	cr := csv.NewReader(counter)
	cr.Comma = Delimiter
	// Arity is checked against the header rather than the first record.
	cr.FieldsPerRecord = -1
	// Bare quotes inside unquoted cells are literal text.
	cr.LazyQuotes = true

	d := &Document{r: cr, counter: counter}

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return d, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	d.headers = headers

	return d, nil
}

// Open opens the document at path. The caller must call [Document.Close].
func Open(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // G304: Input paths are user input.
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	d, err := NewDocument(f)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	d.closer = f

	return d, nil
}

// Headers returns the header row.
func (d *Document) Headers() []string {
	return d.headers
}

// Records yields each record after the header. Iteration stops after the
// first error.
func (d *Document) Records() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		if d.headers == nil {
			return
		}

		for {
			rec, err := d.r.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, fmt.Errorf("read record: %w", err))

				return
			}

			if len(rec) != len(d.headers) {
				line, _ := d.r.FieldPos(0)
				yield(nil, &ArityError{Line: line, Want: len(d.headers), Got: len(rec)})

				return
			}

			if !yield(rec, nil) {
				return
			}
		}
	}
}

// BytesRead returns the number of bytes consumed from the underlying reader.
func (d *Document) BytesRead() int64 {
	return d.counter.n
}

// Close closes the underlying file, if any.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}

	err := d.closer.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err //nolint:wrapcheck // Must return io.EOF unwrapped.
}

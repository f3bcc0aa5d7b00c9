package ntriples

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/roach88/blabel/internal/rdf"
)

// Write emits one statement per line.
func Write(w io.Writer, triples []rdf.Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Format renders triples as N-Triples text.
func Format(triples []rdf.Triple) string {
	var b []byte
	for _, t := range triples {
		b = append(b, t.String()...)
		b = append(b, '\n')
	}
	return string(b)
}

// NewReader wraps r in a gzip decoder when gz is set.
func NewReader(r io.Reader, gz bool) (io.ReadCloser, error) {
	if !gz {
		return io.NopCloser(r), nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return zr, nil
}

// NewWriter wraps w in a gzip encoder when gz is set. Closing the returned
// writer flushes the encoder but does not close w.
func NewWriter(w io.Writer, gz bool) io.WriteCloser {
	if !gz {
		return nopWriteCloser{w}
	}
	return gzip.NewWriter(w)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// ReadFile parses a file, or stdin when path is "-".
func ReadFile(path string, gz bool) ([]rdf.Triple, error) {
	var src io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		src = f
	}
	r, err := NewReader(src, gz)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

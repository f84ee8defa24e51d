package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrClosed is returned when reading from a reader that was already released
var ErrClosed = errors.New("prompt: reader closed")

// LineReader asks a question and reads one line of operator input. Input is
// read a byte at a time so nothing past the answer is consumed from a stdin
// shared with child processes. It must be released with Close once the caller
// is done with it.
type LineReader struct {
	in     io.Reader
	out    io.Writer
	closed bool
}

// NewLineReader creates a LineReader that reads from in and writes prompts to out
func NewLineReader(in io.Reader, out io.Writer) *LineReader {
	return &LineReader{
		in:  in,
		out: out,
	}
}

// Question writes the prompt and returns the line typed by the operator
// without its line terminator. Surrounding whitespace is preserved.
func (r *LineReader) Question(prompt string) (string, error) {
	if r.closed {
		return "", ErrClosed
	}

	if _, err := io.WriteString(r.out, prompt); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input closed before an answer was given")
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// readLine reads up to and including the next newline
func (r *LineReader) readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.in.Read(buf)
		if n > 0 {
			sb.WriteByte(buf[0])
			if buf[0] == '\n' {
				return sb.String(), nil
			}
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

// Close releases the reader. The underlying stream is left open since it is
// usually the process stdin. Closing twice is a no-op.
func (r *LineReader) Close() error {
	r.closed = true
	return nil
}

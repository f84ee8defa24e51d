package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("tty gone")
}

func TestQuestion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "2\n", "2"},
		{"crlf", "3\r\n", "3"},
		{"empty line", "\n", ""},
		{"whitespace kept", "  1 \n", "  1 "},
		{"no trailing newline", "1", "1"},
		{"only first line", "2\n3\n", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := NewLineReader(strings.NewReader(tt.input), &out)
			defer r.Close()

			got, err := r.Question("Choose: ")
			if err != nil {
				t.Fatalf("Question failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Question = %q, want %q", got, tt.want)
			}
			if out.String() != "Choose: " {
				t.Errorf("prompt written = %q, want %q", out.String(), "Choose: ")
			}
		})
	}
}

func TestQuestionEOF(t *testing.T) {
	r := NewLineReader(strings.NewReader(""), &bytes.Buffer{})
	defer r.Close()

	_, err := r.Question("Choose: ")
	if err == nil {
		t.Fatal("Question should fail when input is closed")
	}
	if !strings.Contains(err.Error(), "input closed") {
		t.Errorf("Expected 'input closed' error, got: %v", err)
	}
}

func TestQuestionReadError(t *testing.T) {
	r := NewLineReader(failingReader{}, &bytes.Buffer{})
	defer r.Close()

	_, err := r.Question("Choose: ")
	if err == nil {
		t.Fatal("Question should fail when the reader fails")
	}
	if !strings.Contains(err.Error(), "tty gone") {
		t.Errorf("Expected wrapped read error, got: %v", err)
	}
}

func TestQuestionAfterClose(t *testing.T) {
	r := NewLineReader(strings.NewReader("1\n"), &bytes.Buffer{})
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err := r.Question("Choose: ")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got: %v", err)
	}
}

func TestQuestionLeavesRestOfInput(t *testing.T) {
	in := strings.NewReader("2\nnext command\n")
	r := NewLineReader(in, &bytes.Buffer{})
	defer r.Close()

	got, err := r.Question("Choose: ")
	if err != nil {
		t.Fatalf("Question failed: %v", err)
	}
	if got != "2" {
		t.Errorf("Question = %q, want %q", got, "2")
	}

	rest, err := io.ReadAll(in)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(rest) != "next command\n" {
		t.Errorf("remaining input = %q, want %q", rest, "next command\n")
	}
}

package printer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	bold      = color.New(color.Bold).Sprint
	boldRed   = color.New(color.Bold, color.FgRed).Sprint
	boldGreen = color.New(color.Bold, color.FgGreen).Sprint
	cyan      = color.New(color.FgCyan).Sprint
)

// Printer writes installer messages with the two-space indent used across
// all console output
type Printer struct {
	w io.Writer
}

// New creates a Printer for w (usually stdout or stderr)
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Blank prints an empty line
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Println prints an indented message
func (p *Printer) Println(msg string) {
	fmt.Fprintf(p.w, "  %s\n", msg)
}

// Title prints msg in bold
func (p *Printer) Title(msg string) {
	fmt.Fprintf(p.w, "  %s\n", bold(msg))
}

// Successln prints msg prefixed with a green check mark
func (p *Printer) Successln(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", boldGreen("✓"), msg)
}

// Errorln prints msg prefixed with a red cross
func (p *Printer) Errorln(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", boldRed("✗"), msg)
}

// Arrowln prints msg prefixed with an arrow, indented by extra spaces
func (p *Printer) Arrowln(indent int, msg string) {
	fmt.Fprintf(p.w, "  %*s%s %s\n", indent, "", cyan("→"), msg)
}

package kicadsexp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxInlineWidth is the longest list the writer keeps on one line
const maxInlineWidth = 99

// Writer emits S-expressions in the layout KiCad itself uses: shallow lists
// stay on one line, deeper ones put each child list on its own line indented
// by two spaces.
type Writer struct {
	w      *bufio.Writer
	indent string
}

// NewWriter returns a writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), indent: "  "}
}

// Write writes s followed by a newline and flushes
func (w *Writer) Write(s Sexp) error {
	w.write(s, 0)
	w.w.WriteByte('\n')
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("write s-expression: %w", err)
	}
	return nil
}

func (w *Writer) write(s Sexp, depth int) {
	l, ok := s.(*List)
	if !ok {
		w.w.WriteString(s.String())
		return
	}
	if inline(l) {
		w.w.WriteString(l.String())
		return
	}

	// leading atoms share the opening line
	w.w.WriteByte('(')
	i := 0
	for ; i < len(l.elements) && l.elements[i].IsLeaf(); i++ {
		if i > 0 {
			w.w.WriteByte(' ')
		}
		w.w.WriteString(l.elements[i].String())
	}

	pad := strings.Repeat(w.indent, depth+1)
	for ; i < len(l.elements); i++ {
		w.w.WriteByte('\n')
		w.w.WriteString(pad)
		w.write(l.elements[i], depth+1)
	}
	w.w.WriteByte('\n')
	w.w.WriteString(strings.Repeat(w.indent, depth))
	w.w.WriteByte(')')
}

// inline reports whether l is flat enough for a single line: no grandchild
// lists and short enough to read
func inline(l *List) bool {
	width := 2
	for _, e := range l.elements {
		if c, ok := e.(*List); ok {
			for _, g := range c.elements {
				if !g.IsLeaf() {
					return false
				}
			}
		}
		width += len(e.String()) + 1
		if width > maxInlineWidth {
			return false
		}
	}
	return true
}

// Write writes s to w in KiCad layout
func Write(w io.Writer, s Sexp) error {
	return NewWriter(w).Write(s)
}

// Format returns s in KiCad layout
func Format(s Sexp) string {
	var b strings.Builder
	_ = Write(&b, s)
	return b.String()
}

package kicadsexp

import (
	"fmt"
	"io"
)

// Decoder reads top-level expressions from a stream one at a time. Lists are
// built on an explicit stack, so nesting depth is bounded by memory only.
type Decoder struct {
	s *scanner
}

// NewDecoder returns a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{s: newScanner(r)}
}

// Decode returns the next top-level expression, or io.EOF once the input is
// exhausted
func (d *Decoder) Decode() (Sexp, error) {
	// open lists, innermost last, with the position of their '('
	type frame struct {
		list      *List
		line, col int
	}
	var stack []frame

	for {
		tok, err := d.s.token()
		if err != nil {
			return nil, err
		}

		var atom Sexp
		switch tok.kind {
		case tokEOF:
			if len(stack) == 0 {
				return nil, io.EOF
			}
			open := stack[len(stack)-1]
			return nil, &SyntaxError{Line: tok.line, Col: tok.col,
				Msg: fmt.Sprintf("unexpected end of input, list opened at line %d is not closed", open.line)}
		case tokOpen:
			stack = append(stack, frame{list: NewList(), line: tok.line, col: tok.col})
			continue
		case tokClose:
			if len(stack) == 0 {
				return nil, &SyntaxError{Line: tok.line, Col: tok.col, Msg: "unexpected ')'"}
			}
			atom = stack[len(stack)-1].list
			stack = stack[:len(stack)-1]
		case tokSymbol:
			atom = Symbol(tok.text)
		case tokString:
			atom = Quoted(tok.text)
		}

		if len(stack) == 0 {
			return atom, nil
		}
		stack[len(stack)-1].list.Append(atom)
	}
}

package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError is a malformed input at a 1-based line and column
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokSymbol
	tokString
)

// token is one lexeme and where it starts
type token struct {
	kind      tokenKind
	text      string
	line, col int
}

// scanner splits a board file into tokens, one rune of lookahead at a time
type scanner struct {
	r         *bufio.Reader
	line, col int
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r), line: 1}
}

func (s *scanner) errorf(line, col int, format string, args ...interface{}) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// next reads a rune and advances the position
func (s *scanner) next() (rune, error) {
	r, _, err := s.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		s.line, s.col = s.line+1, 0
	} else {
		s.col++
	}
	return r, nil
}

// peek returns the next rune without consuming it
func (s *scanner) peek() (rune, error) {
	r, _, err := s.r.ReadRune()
	if err != nil {
		return 0, err
	}
	return r, s.r.UnreadRune()
}

func (s *scanner) token() (token, error) {
	for {
		r, err := s.peek()
		if errors.Is(err, io.EOF) {
			return token{kind: tokEOF, line: s.line, col: s.col + 1}, nil
		}
		if err != nil {
			return token{}, err
		}
		if !unicode.IsSpace(r) {
			break
		}
		s.next()
	}

	line, col := s.line, s.col+1
	r, _ := s.peek()
	switch r {
	case '(':
		s.next()
		return token{kind: tokOpen, line: line, col: col}, nil
	case ')':
		s.next()
		return token{kind: tokClose, line: line, col: col}, nil
	case '"':
		s.next()
		text, err := s.quoted(line, col)
		return token{kind: tokString, text: text, line: line, col: col}, err
	}
	return token{kind: tokSymbol, text: s.symbol(), line: line, col: col}, nil
}

// quoted reads the rest of a string whose opening quote is consumed
func (s *scanner) quoted(line, col int) (string, error) {
	var b strings.Builder
	for {
		r, err := s.next()
		if errors.Is(err, io.EOF) {
			return "", s.errorf(line, col, "unterminated string")
		}
		if err != nil {
			return "", err
		}
		switch r {
		case '"':
			return b.String(), nil
		case '\\':
			esc, err := s.next()
			if err != nil {
				return "", s.errorf(line, col, "unterminated string")
			}
			b.WriteRune(unescape(esc))
		default:
			b.WriteRune(r)
		}
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	// \" \\ and unknown escapes keep the escaped rune
	return r
}

// symbol reads a bare atom up to the next delimiter
func (s *scanner) symbol() string {
	var b strings.Builder
	for {
		r, err := s.peek()
		if err != nil || unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' {
			return b.String()
		}
		s.next()
		b.WriteRune(r)
	}
}

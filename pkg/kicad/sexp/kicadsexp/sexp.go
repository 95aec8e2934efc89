// Package kicadsexp provides a lightweight streaming S-expression parser
// and writer for KiCad board and footprint files. Quoted strings stay
// distinguishable from bare symbols so a parsed tree can be written back
// without changing its meaning.
package kicadsexp

import (
	"errors"
	"io"
	"slices"
	"strings"
)

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list (the atom itself for atoms)
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the string representation as it would be written
	String() string
}

// Symbol represents a bare atom (keyword, number, identifier)
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Quoted represents a double-quoted string atom. The value is stored
// unescaped; String returns the escaped, quoted form.
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) LeafCount() int { return 1 }
func (q Quoted) Head() Sexp     { return q }
func (q Quoted) Tail() Sexp     { return nil }

func (q Quoted) String() string {
	var b strings.Builder
	b.Grow(len(q) + 2)
	b.WriteByte('"')
	for _, r := range string(q) {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Value returns the text of any atom without quoting. Lists yield "".
func Value(s Sexp) string {
	switch v := s.(type) {
	case Symbol:
		return string(v)
	case Quoted:
		return string(v)
	}
	return ""
}

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

// NewList returns a list holding items
func NewList(items ...Sexp) *List {
	return &List{elements: items}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Elements returns the list's elements. The slice is shared with the list;
// use the mutation methods to change it.
func (l *List) Elements() []Sexp {
	return l.elements
}

// Key returns the list's leading symbol, "" when it has none
func (l *List) Key() string {
	if sym, ok := l.Head().(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Append adds items to the end of the list
func (l *List) Append(items ...Sexp) {
	l.elements = append(l.elements, items...)
}

// Set replaces the element at index. It reports false when index is out of
// range.
func (l *List) Set(index int, item Sexp) bool {
	if index < 0 || index >= len(l.elements) {
		return false
	}
	l.elements[index] = item
	return true
}

// Insert places item before index; an index past the end appends
func (l *List) Insert(index int, item Sexp) {
	if index < 0 {
		index = 0
	}
	if index > len(l.elements) {
		index = len(l.elements)
	}
	l.elements = slices.Insert(l.elements, index, item)
}

// RemoveFunc drops every element for which drop returns true and reports
// how many were removed
func (l *List) RemoveFunc(drop func(Sexp) bool) int {
	before := len(l.elements)
	l.elements = slices.DeleteFunc(l.elements, drop)
	return before - len(l.elements)
}

// Clone returns a deep copy of s. Atoms are values and are shared.
func Clone(s Sexp) Sexp {
	l, ok := s.(*List)
	if !ok {
		return s
	}
	out := &List{elements: make([]Sexp, len(l.elements))}
	for i, e := range l.elements {
		out.elements[i] = Clone(e)
	}
	return out
}

// Parse parses every top-level S-expression in r
func Parse(r io.Reader) ([]Sexp, error) {
	var out []Sexp
	dec := NewDecoder(r)
	for {
		expr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
}

// ParseString parses S-expressions from a string (convenience function)
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

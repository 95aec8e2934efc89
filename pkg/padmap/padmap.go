// Package padmap describes how one footprint's pads feed the next footprint
// in a daisy chain. A map is written as a comma separated list of
// "source->destination" pairs, for example "2->5, 3->4": pad 2 of the
// previous node is wired to pad 5 of the next one, and so on.
package padmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DefaultText is the wiring of the APA102-2020 chain: data and clock out
// feed data and clock in
const DefaultText = "2->5, 3->4"

var (
	// ErrDuplicatePad is returned when a pad is used twice on the same side
	ErrDuplicatePad = errors.New("pad mapped more than once")
	// ErrSelfLoop is returned for an entry wiring a pad name to itself
	ErrSelfLoop = errors.New("pad mapped to itself")
)

// Entry wires pad From of the previous node to pad To of the next node
type Entry struct {
	From string
	To   string
}

func (e Entry) String() string {
	return e.From + "->" + e.To
}

// Map is an ordered pad translation table. Order matters: traces are
// emitted in table order.
type Map []Entry

// Default returns the chain wiring used when nothing else is configured
func Default() Map {
	return Map{{From: "2", To: "5"}, {From: "3", To: "4"}}
}

// Lookup returns the destination pad for src
func (m Map) Lookup(src string) (string, bool) {
	for _, e := range m {
		if e.From == src {
			return e.To, true
		}
	}
	return "", false
}

// Sources returns the source pad names in table order
func (m Map) Sources() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.From
	}
	return out
}

func (m Map) String() string {
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Validate rejects tables that would wire a pad twice
func (m Map) Validate() error {
	from := make(map[string]bool, len(m))
	to := make(map[string]bool, len(m))
	for _, e := range m {
		if e.From == e.To {
			return fmt.Errorf("%w: %s", ErrSelfLoop, e)
		}
		if from[e.From] {
			return fmt.Errorf("%w: source pad %q", ErrDuplicatePad, e.From)
		}
		if to[e.To] {
			return fmt.Errorf("%w: destination pad %q", ErrDuplicatePad, e.To)
		}
		from[e.From] = true
		to[e.To] = true
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (m Map) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so a map can be read
// straight out of a config file
func (m *Map) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var mapLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Comma", Pattern: `,`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Pad", Pattern: `[A-Za-z0-9_]+`},
})

type mapAST struct {
	Entries []*entryAST `parser:"( @@ ( ',' @@ )* )?"`
}

type entryAST struct {
	Pos  lexer.Position
	From string `parser:"( @Pad | @String ) '->'"`
	To   string `parser:"( @Pad | @String )"`
}

var mapParser = participle.MustBuild[mapAST](
	participle.Lexer(mapLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// Parse reads a pad map. An empty string is an empty map: nodes are placed
// but not wired to each other.
func Parse(text string) (Map, error) {
	ast, err := mapParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("parse pad map %q: %w", text, err)
	}

	m := make(Map, 0, len(ast.Entries))
	for _, e := range ast.Entries {
		m = append(m, Entry{From: e.From, To: e.To})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustParse is like Parse but panics on error
func MustParse(text string) Map {
	m, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return m
}

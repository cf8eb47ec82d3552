package parser

import (
	"fmt"
	"os"
	"unicode"

	"logo_go/pkg/ast"
)

// Result represents the outcome of applying one grammar rule at a position
type Result struct {
	Success bool      // Whether the rule matched
	Node    *ast.Node // The folded AST node
	Pos     int       // Position after match, or failure position
	Rule    string    // Rule that failed
	Err     string    // Error message if failed
}

// MemoKey for memoization
type MemoKey struct {
	Rule string
	Pos  int
}

// Signatures maps callee names to the number of arguments the grammar
// collects for them.
type Signatures map[string]int

// Parser is a memoizing PEG parser over a rune slice. Rules are looked up
// by name in RuleMap and their results cached per (rule, position).
type Parser struct {
	Input   []rune
	Memo    map[MemoKey]Result
	RuleMap map[string]func(int) Result

	sigs     Signatures
	furthest Result
}

// Option configures a Parser
type Option func(*Parser)

// WithSignatures registers callee arities (normally the builtin table).
// Procedures defined with `to` in the source are added automatically.
func WithSignatures(sigs Signatures) Option {
	return func(p *Parser) {
		for name, n := range sigs {
			p.sigs[name] = n
		}
	}
}

// New creates a parser for input
func New(input string, opts ...Option) *Parser {
	p := &Parser{
		Input: []rune(input),
		Memo:  make(map[MemoKey]Result),
		sigs:  make(Signatures),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scanDefinitions()
	p.initRules()
	return p
}

// Parse parses src as a whole program
func Parse(src string, opts ...Option) (*ast.Node, error) {
	return New(src, opts...).Parse()
}

// ParseFile reads and parses a program file
func ParseFile(path string, opts ...Option) (*ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data), opts...)
}

// Parse parses the input from position 0. The result is always a block.
func (p *Parser) Parse() (*ast.Node, error) {
	result := p.memoized("program", 0)
	if !result.Success {
		fail := result
		if p.furthest.Pos > fail.Pos {
			fail = p.furthest
		}
		return nil, p.newError(fail)
	}
	return result.Node, nil
}

// Arity reports the signature known for name, including procedures
// discovered in the source.
func (p *Parser) Arity(name string) (int, bool) {
	n, ok := p.sigs[name]
	return n, ok
}

// memoized applies memoization to a rule
func (p *Parser) memoized(rule string, pos int) Result {
	key := MemoKey{Rule: rule, Pos: pos}
	if result, ok := p.Memo[key]; ok {
		return result
	}

	fn, ok := p.RuleMap[rule]
	if !ok {
		panic(fmt.Sprintf("parser: unknown rule %q", rule))
	}

	result := fn(pos)
	p.Memo[key] = result
	return result
}

// fail creates a failed result and remembers the furthest failure seen,
// which is what gets reported when the whole parse fails.
func (p *Parser) fail(rule string, pos int, msg string) Result {
	r := Result{Success: false, Pos: pos, Rule: rule, Err: msg}
	if pos >= p.furthest.Pos || p.furthest.Rule == "" {
		p.furthest = r
	}
	return r
}

func succeeded(n *ast.Node, pos int) Result {
	return Result{Success: true, Node: n, Pos: pos}
}

// scanDefinitions walks the raw input looking for `to name :a :b` headers
// so calls to procedures defined later in the file get the right arity.
// Names that already have a signature keep it; a redefinition takes effect
// from its own header onwards (see parseProcDef).
func (p *Parser) scanDefinitions() {
	pos := p.skipWhitespace(0)
	for pos < len(p.Input) {
		ch := p.Input[pos]
		switch {
		case isWordStart(ch):
			word, end := p.readWord(pos)
			pos = end
			if word != "to" {
				break
			}
			pos = p.skipWhitespace(pos)
			if pos >= len(p.Input) || !isWordStart(p.Input[pos]) {
				break
			}
			name, end := p.readWord(pos)
			pos = end
			params := 0
			for {
				next := p.skipWhitespace(pos)
				if next >= len(p.Input) || p.Input[next] != ':' {
					break
				}
				_, end := p.readWord(next + 1)
				if end == next+1 {
					break
				}
				params++
				pos = end
			}
			if _, known := p.sigs[name]; !known {
				p.sigs[name] = params
			}
		case ch == '"':
			pos = p.skipQuoted(pos)
		default:
			pos++
		}
		pos = p.skipWhitespace(pos)
	}
}

// Helper methods

func (p *Parser) skipWhitespace(pos int) int {
	for pos < len(p.Input) {
		ch := p.Input[pos]
		if unicode.IsSpace(ch) {
			pos++
		} else if ch == ';' {
			// Skip comment
			for pos < len(p.Input) && p.Input[pos] != '\n' {
				pos++
			}
		} else {
			break
		}
	}
	return pos
}

// readWord reads a bare word starting at pos. It returns the empty string
// and pos unchanged if no word starts there.
func (p *Parser) readWord(pos int) (string, int) {
	start := pos
	if pos >= len(p.Input) || !isWordStart(p.Input[pos]) {
		return "", pos
	}
	pos++
	for pos < len(p.Input) && isWordChar(p.Input[pos]) {
		pos++
	}
	return string(p.Input[start:pos]), pos
}

// skipQuoted moves past a "word token, which ends at whitespace or a
// closing bracket.
func (p *Parser) skipQuoted(pos int) int {
	pos++
	for pos < len(p.Input) && !isDelimiter(p.Input[pos]) {
		pos++
	}
	return pos
}

func (p *Parser) peekWord(pos int) string {
	w, _ := p.readWord(p.skipWhitespace(pos))
	return w
}

func (p *Parser) isDigitStart(pos int) bool {
	if pos >= len(p.Input) {
		return false
	}
	ch := p.Input[pos]
	if unicode.IsDigit(ch) {
		return true
	}
	if ch == '.' && pos+1 < len(p.Input) && unicode.IsDigit(p.Input[pos+1]) {
		return true
	}
	if ch == '-' && pos+1 < len(p.Input) {
		return unicode.IsDigit(p.Input[pos+1]) ||
			(p.Input[pos+1] == '.' && pos+2 < len(p.Input) && unicode.IsDigit(p.Input[pos+2]))
	}
	return false
}

func isWordStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isWordChar(ch rune) bool {
	return isWordStart(ch) || unicode.IsDigit(ch) || ch == '.' || ch == '?' || ch == '!'
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '[' || ch == ']' || ch == '(' || ch == ')'
}

package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports the grammar rule and source position at which
// matching failed. Line and Col are 1-based; Pos is a rune offset.
type ParseError struct {
	Rule string
	Pos  int
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d (%s): %s", e.Line, e.Col, e.Rule, e.Msg)
}

func (p *Parser) newError(r Result) *ParseError {
	line, col := 1, 1
	for i := 0; i < r.Pos && i < len(p.Input); i++ {
		if p.Input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{Rule: r.Rule, Pos: r.Pos, Line: line, Col: col, Msg: r.Err}
}

// Snippet renders a parse error with the offending source line and a caret
// under the failing column. Other errors are formatted unchanged.
//
//	parse error at 2:9 (body): expected ']'
//	   1 | to square :n
//	   2 |   repeat 4 fd :n
//	     |          ^
func Snippet(err error, src string) string {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	lines := strings.Split(src, "\n")
	line := pe.Line
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	b.WriteString(pe.Error())
	width := len(fmt.Sprint(line + 1))
	if line > 1 {
		fmt.Fprintf(&b, "\n %*d | %s", width, line-1, lines[line-2])
	}
	if line >= 1 {
		fmt.Fprintf(&b, "\n %*d | %s", width, line, lines[line-1])
	}
	fmt.Fprintf(&b, "\n %*s | %s^", width, "", strings.Repeat(" ", max(pe.Col-1, 0)))
	return b.String()
}

// IsIncomplete reports whether err is a parse failure at the very end of
// src, meaning more input could still complete the program.
func IsIncomplete(err error, src string) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Pos >= len([]rune(src))
}

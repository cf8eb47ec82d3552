package parser

import (
	"strconv"
	"unicode"

	"logo_go/pkg/ast"
)

// Reserved words never act as callees or bare-word literals.
var keywords = map[string]bool{
	"to":     true,
	"end":    true,
	"if":     true,
	"repeat": true,
	"and":    true,
	"or":     true,
}

// Operator tokens per precedence level, lowest first. Longer tokens are
// listed before their prefixes.
var precedence = []struct {
	rule string
	ops  []string
}{
	{"logic", []string{"and", "or"}},
	{"comp", []string{"<=", ">=", "==", "<", ">"}},
	{"add", []string{"+", "-"}},
	{"mult", []string{"*", "/"}},
}

// itemPrefix marks the expression rules used inside list literals, where
// bare words are always data and never calls.
const itemPrefix = "item."

// initRules initializes the grammar rules
//
//	program   = block EOI
//	block     = statement*
//	statement = "[" block "]" | "(" call ")" | proc_def | cond | repeat | call
//	proc_def  = "to" word variable* block "end"
//	cond      = "if" expr "[" block "]"
//	repeat    = "repeat" expr "[" block "]"
//	call      = word expr{arity}
//	expr      = logic
//	logic     = comp (("and" | "or") comp)*
//	comp      = add (("<" | "<=" | ">" | ">=" | "==") add)*
//	add       = mult (("+" | "-") mult)*
//	mult      = primary (("*" | "/") primary)*
//	primary   = number | string | variable | list | "(" expr ")" | call | word
//	list      = "[" item* "]"
func (p *Parser) initRules() {
	p.RuleMap = map[string]func(int) Result{
		"program":   p.parseProgram,
		"block":     p.parseBlock,
		"statement": p.parseStatement,
		"proc_def":  p.parseProcDef,
		"cond":      p.parseCond,
		"repeat":    p.parseRepeat,
		"body":      p.parseBody,
		"number":    p.parseNumber,
		"string":    p.parseString,
		"variable":  p.parseVariable,
		"list":      p.parseList,
		"primary":   func(pos int) Result { return p.parsePrimary(pos, false) },
		"expr":      func(pos int) Result { return p.memoized("logic", pos) },
		"item":      func(pos int) Result { return p.memoized(itemPrefix+"logic", pos) },

		itemPrefix + "primary": func(pos int) Result { return p.parsePrimary(pos, true) },
	}

	for i, level := range precedence {
		next := "primary"
		if i+1 < len(precedence) {
			next = precedence[i+1].rule
		}
		p.RuleMap[level.rule] = p.binaryRule(next, level.ops)
		p.RuleMap[itemPrefix+level.rule] = p.binaryRule(itemPrefix+next, level.ops)
	}
}

// parseProgram parses a block followed by end of input
func (p *Parser) parseProgram(pos int) Result {
	result := p.memoized("block", pos)
	if !result.Success {
		return result
	}
	end := p.skipWhitespace(result.Pos)
	if end < len(p.Input) {
		return p.fail("program", end, "expected end of input")
	}
	return succeeded(result.Node, end)
}

// parseBlock parses statements until a closing bracket, `end` or EOI
func (p *Parser) parseBlock(pos int) Result {
	var stmts []*ast.Node
	for {
		pos = p.skipWhitespace(pos)
		if p.atBlockEnd(pos) {
			return succeeded(ast.NewBlock(stmts), pos)
		}
		result := p.memoized("statement", pos)
		if !result.Success {
			return result
		}
		stmts = append(stmts, result.Node)
		pos = result.Pos
	}
}

func (p *Parser) atBlockEnd(pos int) bool {
	if pos >= len(p.Input) {
		return true
	}
	switch p.Input[pos] {
	case ']', ')':
		return true
	}
	w, _ := p.readWord(pos)
	return w == "end"
}

// parseStatement parses one command
func (p *Parser) parseStatement(pos int) Result {
	pos = p.skipWhitespace(pos)
	if pos >= len(p.Input) {
		return p.fail("statement", pos, "unexpected end of input")
	}

	switch p.Input[pos] {
	case '[':
		return p.memoized("body", pos)
	case '(':
		return p.parseParenCall(pos, "statement")
	}

	word, end := p.readWord(pos)
	if word == "" {
		return p.fail("statement", pos, "expected statement")
	}
	switch word {
	case "to":
		return p.memoized("proc_def", pos)
	case "if":
		return p.memoized("cond", pos)
	case "repeat":
		return p.memoized("repeat", pos)
	}
	if keywords[word] {
		return p.fail("statement", pos, "unexpected keyword '"+word+"'")
	}
	return p.parseCallArgs(word, end)
}

// parseCallArgs collects arguments for callee name. Known callees take
// exactly their arity; unknown ones take every expression that follows
// until something that cannot start an argument.
func (p *Parser) parseCallArgs(name string, pos int) Result {
	var args []*ast.Node
	if n, ok := p.sigs[name]; ok {
		for i := 0; i < n; i++ {
			arg := p.memoized("expr", pos)
			if !arg.Success {
				return arg
			}
			args = append(args, arg.Node)
			pos = arg.Pos
		}
		return succeeded(ast.NewCall(ast.NewVariable(name), args), pos)
	}
	for p.canStartArg(pos) {
		arg := p.memoized("expr", pos)
		if !arg.Success {
			return arg
		}
		args = append(args, arg.Node)
		pos = arg.Pos
	}
	return succeeded(ast.NewCall(ast.NewVariable(name), args), pos)
}

func (p *Parser) canStartArg(pos int) bool {
	pos = p.skipWhitespace(pos)
	if pos >= len(p.Input) {
		return false
	}
	ch := p.Input[pos]
	switch {
	case ch == '[' || ch == '(' || ch == '"' || ch == ':':
		return true
	case p.isDigitStart(pos):
		return true
	case isWordStart(ch):
		w, _ := p.readWord(pos)
		if keywords[w] {
			return false
		}
		_, known := p.sigs[w]
		return !known
	}
	return false
}

// parseParenCall parses "(" name args* ")", where every argument up to the
// closing parenthesis belongs to the call.
func (p *Parser) parseParenCall(pos int, rule string) Result {
	start := pos
	pos = p.skipWhitespace(pos + 1)
	name, end := p.readWord(pos)
	if name == "" || keywords[name] {
		return p.fail(rule, pos, "expected procedure name after '('")
	}
	pos = end
	var args []*ast.Node
	for {
		pos = p.skipWhitespace(pos)
		if pos >= len(p.Input) {
			return p.fail(rule, start, "unclosed '('")
		}
		if p.Input[pos] == ')' {
			return succeeded(ast.NewCall(ast.NewVariable(name), args), pos+1)
		}
		arg := p.memoized("expr", pos)
		if !arg.Success {
			return arg
		}
		args = append(args, arg.Node)
		pos = arg.Pos
	}
}

// parseProcDef parses `to name :param... statements end`. The body is the
// last sub-term; everything between the name and the body is a parameter.
func (p *Parser) parseProcDef(pos int) Result {
	_, pos = p.readWord(pos)
	pos = p.skipWhitespace(pos)
	name, end := p.readWord(pos)
	if name == "" || keywords[name] {
		return p.fail("proc_def", pos, "expected procedure name")
	}
	pos = end

	var params []string
	for {
		next := p.skipWhitespace(pos)
		if next >= len(p.Input) || p.Input[next] != ':' {
			break
		}
		v := p.memoized("variable", next)
		if !v.Success {
			return v
		}
		params = append(params, v.Node.Str)
		pos = v.Pos
	}
	p.sigs[name] = len(params)

	body := p.memoized("block", pos)
	if !body.Success {
		return body
	}
	pos = p.skipWhitespace(body.Pos)
	if w, end := p.readWord(pos); w == "end" {
		return succeeded(ast.NewProcDef(name, params, body.Node), end)
	}
	return p.fail("proc_def", pos, "expected 'end' to close procedure '"+name+"'")
}

// parseCond parses `if expr [ block ]`
func (p *Parser) parseCond(pos int) Result {
	_, pos = p.readWord(pos)
	cond := p.memoized("expr", pos)
	if !cond.Success {
		return cond
	}
	body := p.memoized("body", p.skipWhitespace(cond.Pos))
	if !body.Success {
		return body
	}
	return succeeded(ast.NewIf(cond.Node, body.Node), body.Pos)
}

// parseRepeat parses `repeat expr [ block ]`
func (p *Parser) parseRepeat(pos int) Result {
	_, pos = p.readWord(pos)
	count := p.memoized("expr", pos)
	if !count.Success {
		return count
	}
	body := p.memoized("body", p.skipWhitespace(count.Pos))
	if !body.Success {
		return body
	}
	return succeeded(ast.NewLoop(count.Node, body.Node), body.Pos)
}

// parseBody parses a bracketed block `[ statement* ]`
func (p *Parser) parseBody(pos int) Result {
	if pos >= len(p.Input) || p.Input[pos] != '[' {
		return p.fail("body", pos, "expected '['")
	}
	block := p.memoized("block", pos+1)
	if !block.Success {
		return block
	}
	end := p.skipWhitespace(block.Pos)
	if end >= len(p.Input) || p.Input[end] != ']' {
		return p.fail("body", end, "expected ']'")
	}
	return succeeded(block.Node, end+1)
}

// binaryRule builds one precedence level: an operand optionally followed
// by operator/operand pairs, folded to the left. A lone operand is
// returned as is.
func (p *Parser) binaryRule(next string, ops []string) func(int) Result {
	return func(pos int) Result {
		left := p.memoized(next, pos)
		if !left.Success {
			return left
		}
		node, pos := left.Node, left.Pos
		for {
			opPos := p.skipWhitespace(pos)
			op, after, ok := p.matchOp(opPos, ops)
			if !ok {
				return succeeded(node, pos)
			}
			right := p.memoized(next, after)
			if !right.Success {
				return right
			}
			node = ast.NewBinop(node, op, right.Node)
			pos = right.Pos
		}
	}
}

func (p *Parser) matchOp(pos int, ops []string) (ast.Op, int, bool) {
	for _, tok := range ops {
		end := pos + len([]rune(tok))
		if end > len(p.Input) || string(p.Input[pos:end]) != tok {
			continue
		}
		if isWordStart([]rune(tok)[0]) && end < len(p.Input) && isWordChar(p.Input[end]) {
			continue
		}
		op, ok := ast.LookupOp(tok)
		if !ok {
			panic("parser: operator token without tag: " + tok)
		}
		return op, end, true
	}
	return 0, pos, false
}

// parsePrimary parses the highest-precedence forms
func (p *Parser) parsePrimary(pos int, item bool) Result {
	rule := "primary"
	if item {
		rule = itemPrefix + rule
	}
	pos = p.skipWhitespace(pos)
	if pos >= len(p.Input) {
		return p.fail(rule, pos, "unexpected end of input")
	}

	ch := p.Input[pos]
	switch {
	case p.isDigitStart(pos):
		return p.memoized("number", pos)
	case ch == '"':
		return p.memoized("string", pos)
	case ch == ':':
		return p.memoized("variable", pos)
	case ch == '[':
		return p.memoized("list", pos)
	case ch == '(':
		return p.parseParen(pos, item)
	case isWordStart(ch):
		word, end := p.readWord(pos)
		if keywords[word] {
			return p.fail(rule, pos, "unexpected keyword '"+word+"'")
		}
		if _, known := p.sigs[word]; known && !item {
			return p.parseCallArgs(word, end)
		}
		return succeeded(ast.NewString(word), end)
	}
	return p.fail(rule, pos, "expected expression")
}

// parseParen parses a grouped expression, or a parenthesized call when the
// first word is a known callee.
func (p *Parser) parseParen(pos int, item bool) Result {
	if w := p.peekWord(pos + 1); w != "" && !item {
		if _, known := p.sigs[w]; known {
			return p.parseParenCall(pos, "primary")
		}
	}
	next := "expr"
	if item {
		next = "item"
	}
	inner := p.memoized(next, pos+1)
	if !inner.Success {
		return inner
	}
	end := p.skipWhitespace(inner.Pos)
	if end >= len(p.Input) || p.Input[end] != ')' {
		return p.fail("primary", end, "expected ')'")
	}
	return succeeded(inner.Node, end+1)
}

// parseNumber parses a decimal number with optional sign and fraction
func (p *Parser) parseNumber(pos int) Result {
	start := pos
	if pos < len(p.Input) && p.Input[pos] == '-' {
		pos++
	}
	for pos < len(p.Input) && unicode.IsDigit(p.Input[pos]) {
		pos++
	}
	if pos < len(p.Input) && p.Input[pos] == '.' {
		pos++
		for pos < len(p.Input) && unicode.IsDigit(p.Input[pos]) {
			pos++
		}
	}
	val, err := strconv.ParseFloat(string(p.Input[start:pos]), 64)
	if err != nil {
		return p.fail("number", start, "invalid number")
	}
	return succeeded(ast.NewNumber(val), pos)
}

// parseString parses a quoted word: `"red` is the string "red"
func (p *Parser) parseString(pos int) Result {
	if pos >= len(p.Input) || p.Input[pos] != '"' {
		return p.fail("string", pos, "expected string")
	}
	end := p.skipQuoted(pos)
	return succeeded(ast.NewString(string(p.Input[pos+1:end])), end)
}

// parseVariable parses `:name`, dropping the sigil
func (p *Parser) parseVariable(pos int) Result {
	if pos >= len(p.Input) || p.Input[pos] != ':' {
		return p.fail("variable", pos, "expected variable")
	}
	name, end := p.readWord(pos + 1)
	if name == "" {
		return p.fail("variable", pos+1, "expected variable name after ':'")
	}
	return succeeded(ast.NewVariable(name), end)
}

// parseList parses a list literal with []
func (p *Parser) parseList(pos int) Result {
	if pos >= len(p.Input) || p.Input[pos] != '[' {
		return p.fail("list", pos, "expected '['")
	}
	pos++

	elements := []*ast.Node{}
	for {
		pos = p.skipWhitespace(pos)
		if pos >= len(p.Input) {
			return p.fail("list", pos, "expected ']'")
		}
		if p.Input[pos] == ']' {
			return succeeded(ast.NewList(elements), pos+1)
		}
		result := p.memoized("item", pos)
		if !result.Success {
			return result
		}
		elements = append(elements, result.Node)
		pos = result.Pos
	}
}

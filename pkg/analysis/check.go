// Package analysis checks a parsed program without running it.
package analysis

import (
	"fmt"

	"logo_go/pkg/ast"
	"logo_go/pkg/eval"
)

// Severity ranks a diagnostic
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one finding. Proc names the enclosing procedure, empty at
// top level.
type Diagnostic struct {
	Severity Severity
	Proc     string
	Msg      string
}

func (d Diagnostic) String() string {
	if d.Proc == "" {
		return d.Severity.String() + ": " + d.Msg
	}
	return fmt.Sprintf("%s: in %s: %s", d.Severity, d.Proc, d.Msg)
}

// HasErrors reports whether any diagnostic is an error
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Checker walks a program looking for calls that would fail at run time
type Checker struct {
	builtins map[string]int
	procs    map[string]*ast.Node
	scopes   *ScopeContext
	proc     string
	diags    []Diagnostic
}

// NewChecker creates a checker. A nil builtins map means the standard
// builtin table.
func NewChecker(builtins map[string]int) *Checker {
	if builtins == nil {
		builtins = eval.Signatures()
	}
	return &Checker{
		builtins: builtins,
		procs:    make(map[string]*ast.Node),
		scopes:   NewScopeContext(),
	}
}

// Check runs every check over prog with the standard builtins
func Check(prog *ast.Node) []Diagnostic {
	return NewChecker(nil).Check(prog)
}

// Check reports undefined procedures, argument-count mismatches, variables
// that nothing can bind, unused parameters and nested definitions
func (c *Checker) Check(prog *ast.Node) []Diagnostic {
	c.diags = nil
	c.collectProcs(prog)
	c.analyze(prog)
	return c.diags
}

func (c *Checker) report(sev Severity, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: sev, Proc: c.proc, Msg: fmt.Sprintf(format, args...)})
}

// collectProcs records every definition up front; definitions are global
// wherever they appear.
func (c *Checker) collectProcs(prog *ast.Node) {
	ast.Walk(prog, func(n *ast.Node) bool {
		if n.Kind != ast.KProcDef {
			return true
		}
		if _, dup := c.procs[n.Str]; dup {
			c.report(Warning, "procedure %s is defined more than once; the last definition run wins", n.Str)
		} else if _, builtin := c.builtins[n.Str]; builtin {
			c.report(Warning, "procedure %s replaces the builtin of the same name", n.Str)
		}
		c.procs[n.Str] = n
		return true
	})
}

func (c *Checker) arity(name string) (int, bool) {
	if def, ok := c.procs[name]; ok {
		return len(def.Params), true
	}
	n, ok := c.builtins[name]
	return n, ok
}

func (c *Checker) analyze(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KVariable:
		// inside a procedure, free variables are reported once per name by
		// the KProcDef case
		if !c.scopes.RecordUse(n.Str) && c.proc == "" {
			c.report(Error, "variable :%s is never bound", n.Str)
		}

	case ast.KCall:
		name := n.Callee.Str
		if want, ok := c.arity(name); !ok {
			c.report(Error, "undefined procedure %s", name)
		} else if want != len(n.Items) {
			c.report(Error, "%s expects %d argument(s), got %d", name, want, len(n.Items))
		}
		for _, a := range n.Items {
			c.analyze(a)
		}

	case ast.KBinop:
		c.analyze(n.Left)
		c.analyze(n.Right)

	case ast.KList, ast.KBlock:
		for _, s := range n.Items {
			c.analyze(s)
		}

	case ast.KIf:
		c.analyze(n.Cond)
		c.analyze(n.Body)

	case ast.KLoop:
		c.analyze(n.Cond)
		c.scopes.Enter(eval.RepCount)
		c.analyze(n.Body)
		c.scopes.Exit()

	case ast.KProcDef:
		if c.scopes.Depth() > 0 {
			c.report(Warning, "procedure %s is defined inside a block; it exists only once that block runs", n.Str)
		}
		saved := c.proc
		c.proc = n.Str
		for _, name := range FindFreeVars(n, nil) {
			c.report(Warning, "variable :%s is not a parameter; it must come from a caller", name)
		}
		c.scopes.Enter(n.Params...)
		c.analyze(n.Body)
		for _, u := range c.scopes.Exit() {
			if u.UseCount == 0 {
				c.report(Warning, "parameter :%s is never used", u.Name)
			}
		}
		c.proc = saved
	}
}

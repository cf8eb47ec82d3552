package analysis

import (
	"logo_go/pkg/ast"
	"logo_go/pkg/eval"
)

// VarUsage tracks how often a bound name is read
type VarUsage struct {
	Name     string
	UseCount int
}

// bindingSite is one procedure's parameter list or one loop's counter
type bindingSite struct {
	vars  map[string]*VarUsage
	order []string
}

// ScopeContext holds the binding sites enclosing the node under analysis
type ScopeContext struct {
	sites []*bindingSite
}

// NewScopeContext creates a context with no enclosing binding sites
func NewScopeContext() *ScopeContext {
	return &ScopeContext{}
}

// Enter opens a binding site for names
func (ctx *ScopeContext) Enter(names ...string) {
	site := &bindingSite{vars: make(map[string]*VarUsage, len(names))}
	for _, name := range names {
		if _, dup := site.vars[name]; dup {
			continue
		}
		site.vars[name] = &VarUsage{Name: name}
		site.order = append(site.order, name)
	}
	ctx.sites = append(ctx.sites, site)
}

// Exit closes the innermost binding site and returns its usage counts in
// declaration order
func (ctx *ScopeContext) Exit() []*VarUsage {
	site := ctx.sites[len(ctx.sites)-1]
	ctx.sites = ctx.sites[:len(ctx.sites)-1]
	usages := make([]*VarUsage, len(site.order))
	for i, name := range site.order {
		usages[i] = site.vars[name]
	}
	return usages
}

// RecordUse records a read of name against the innermost site binding it.
// It reports whether any enclosing site binds name.
func (ctx *ScopeContext) RecordUse(name string) bool {
	for i := len(ctx.sites) - 1; i >= 0; i-- {
		if v, ok := ctx.sites[i].vars[name]; ok {
			v.UseCount++
			return true
		}
	}
	return false
}

// Depth returns the number of open binding sites
func (ctx *ScopeContext) Depth() int {
	return len(ctx.sites)
}

// FindFreeVars finds the variables read in n that no enclosing procedure
// parameter or loop counter binds, in order of first use. Callee names are
// not variable reads.
func FindFreeVars(n *ast.Node, bound map[string]bool) []string {
	var freeVars []string
	seen := make(map[string]bool)

	var find func(e *ast.Node, b map[string]bool)
	find = func(e *ast.Node, b map[string]bool) {
		if e == nil {
			return
		}
		switch e.Kind {
		case ast.KVariable:
			if !b[e.Str] && !seen[e.Str] {
				freeVars = append(freeVars, e.Str)
				seen[e.Str] = true
			}
		case ast.KCall:
			for _, a := range e.Items {
				find(a, b)
			}
		case ast.KBinop:
			find(e.Left, b)
			find(e.Right, b)
		case ast.KList, ast.KBlock:
			for _, s := range e.Items {
				find(s, b)
			}
		case ast.KIf:
			find(e.Cond, b)
			find(e.Body, b)
		case ast.KLoop:
			find(e.Cond, b)
			inner := copyMap(b)
			inner[eval.RepCount] = true
			find(e.Body, inner)
		case ast.KProcDef:
			inner := copyMap(b)
			for _, p := range e.Params {
				inner[p] = true
			}
			find(e.Body, inner)
		}
	}

	find(n, bound)
	return freeVars
}

func copyMap(m map[string]bool) map[string]bool {
	result := make(map[string]bool, len(m)+1)
	for k, v := range m {
		result[k] = v
	}
	return result
}

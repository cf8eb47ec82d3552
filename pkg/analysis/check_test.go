package analysis

import (
	"slices"
	"strings"
	"testing"

	"logo_go/pkg/ast"
	"logo_go/pkg/eval"
	"logo_go/pkg/parser"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	prog, err := parser.Parse(src, parser.WithSignatures(eval.Signatures()))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

func TestCheckClean(t *testing.T) {
	srcs := []string{
		"repeat 4 [ fd 100 rt 90 ]",
		"to sq :n repeat 4 [ fd :n rt 90 ] end sq 10",
		"repeat 3 [ fd :repcount ]",
		"to proc :x if :x < 1 [ stop ] fd 1 end proc 0",
		"sq 1 to sq :n fd :n end",
	}
	for _, src := range srcs {
		if diags := Check(parse(t, src)); len(diags) != 0 {
			t.Errorf("Check(%q) = %v, want nothing", src, messages(diags))
		}
	}
}

func TestCheckFindings(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"foo 1", []string{"error: undefined procedure foo"}},
		{"fd :size", []string{"error: variable :size is never bound"}},
		{"(fd 1 2)", []string{"error: fd expects 1 argument(s), got 2"}},
		{"to sq :n fd :n end (sq 1 2)", []string{"error: sq expects 1 argument(s), got 2"}},
		{"fd 1 fd :repcount", []string{"error: variable :repcount is never bound"}},
		{"to show fd :size end", []string{"warning: in show: variable :size is not a parameter; it must come from a caller"}},
		{"to show fd :size rt :size fd :step end", []string{
			"warning: in show: variable :size is not a parameter; it must come from a caller",
			"warning: in show: variable :step is not a parameter; it must come from a caller",
		}},
		{"repeat 2 [ to p fd 1 end ] p", []string{
			"warning: procedure p is defined inside a block; it exists only once that block runs",
		}},
		{"to p :a :b fd :a end", []string{"warning: in p: parameter :b is never used"}},
		{"to p fd 1 end to p fd 2 end", []string{"warning: procedure p is defined more than once; the last definition run wins"}},
		{"to fd :n end", []string{
			"warning: procedure fd replaces the builtin of the same name",
			"warning: in fd: parameter :n is never used",
		}},
	}

	for _, tt := range tests {
		got := messages(Check(parse(t, tt.src)))
		if !slices.Equal(got, tt.want) {
			t.Errorf("Check(%q) =\n  %s\nwant\n  %s", tt.src, strings.Join(got, "\n  "), strings.Join(tt.want, "\n  "))
		}
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors(Check(parse(t, "to p :a end"))) {
		t.Error("warnings reported as errors")
	}
	if !HasErrors(Check(parse(t, "nope"))) {
		t.Error("undefined procedure not an error")
	}
}

func TestCustomBuiltins(t *testing.T) {
	prog := parse(t, "fd 1")
	diags := NewChecker(map[string]int{"forward": 1}).Check(prog)
	if len(diags) != 1 || diags[0].Severity != Error {
		t.Errorf("diags = %v", messages(diags))
	}
}

func TestFindFreeVars(t *testing.T) {
	prog := parse(t, "to p :a fd :a + :b end repeat 2 [ fd :repcount rt :c ] fd :b")
	got := FindFreeVars(prog, nil)
	want := []string{"b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("FindFreeVars = %v, want %v", got, want)
	}

	got = FindFreeVars(prog, map[string]bool{"b": true})
	if !slices.Equal(got, []string{"c"}) {
		t.Errorf("with b bound: %v", got)
	}
}

func TestScopeContext(t *testing.T) {
	ctx := NewScopeContext()
	ctx.Enter("x", "y", "x")
	ctx.Enter("y")
	if !ctx.RecordUse("y") || !ctx.RecordUse("x") || ctx.RecordUse("z") {
		t.Fatal("RecordUse resolved wrongly")
	}
	if ctx.Depth() != 2 {
		t.Errorf("Depth() = %d", ctx.Depth())
	}

	inner := ctx.Exit()
	if len(inner) != 1 || inner[0].UseCount != 1 {
		t.Errorf("inner = %+v", inner)
	}
	outer := ctx.Exit()
	if len(outer) != 2 || outer[0].Name != "x" || outer[0].UseCount != 1 || outer[1].UseCount != 0 {
		t.Errorf("outer = %+v", outer)
	}
}

package eval

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"logo_go/pkg/ast"
	"logo_go/pkg/draw"
	"logo_go/pkg/parser"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func runString(t *testing.T, input string) ([]draw.Command, error) {
	t.Helper()
	prog, err := parser.Parse(input, parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return Evaluate(prog, DefaultEnv(), Options{Rand: seeded(), Palette: DefaultPalette})
}

func mustRun(t *testing.T, input string) []draw.Command {
	t.Helper()
	cmds, err := runString(t, input)
	if err != nil {
		t.Fatalf("run %q: %v", input, err)
	}
	return cmds
}

func TestForwardSum(t *testing.T) {
	tests := []struct {
		a, b float64
	}{
		{1, 2},
		{0, 0},
		{-3.5, 10},
		{100, 0.25},
	}

	for _, tt := range tests {
		prog := ast.NewBlock([]*ast.Node{
			ast.NewCall(ast.NewVariable("forward"), []*ast.Node{
				ast.Add(ast.NewNumber(tt.a), ast.NewNumber(tt.b)),
			}),
		})
		cmds, err := Run(prog)
		if err != nil {
			t.Fatalf("forward %v + %v: %v", tt.a, tt.b, err)
		}
		want := []draw.Command{draw.Forward(tt.a + tt.b)}
		if !slices.Equal(cmds, want) {
			t.Errorf("forward %v + %v = %v, want %v", tt.a, tt.b, cmds, want)
		}
	}
}

func TestRepeat(t *testing.T) {
	for _, k := range []int{0, 1, 4, 36} {
		prog := ast.NewBlock([]*ast.Node{
			ast.NewLoop(ast.NewNumber(float64(k)), ast.NewBlock([]*ast.Node{
				ast.NewCall(ast.NewVariable("fd"), []*ast.Node{ast.NewNumber(7)}),
			})),
		})
		cmds, err := Run(prog)
		if err != nil {
			t.Fatalf("repeat %d: %v", k, err)
		}
		if len(cmds) != k {
			t.Fatalf("repeat %d produced %d commands", k, len(cmds))
		}
		for i, c := range cmds {
			if c != draw.Forward(7) {
				t.Errorf("repeat %d: command %d = %v", k, i, c)
			}
		}
	}
}

func TestRepeatTruncatesCount(t *testing.T) {
	cmds := mustRun(t, "repeat 2.9 [ fd 1 ]")
	if len(cmds) != 2 {
		t.Errorf("repeat 2.9 produced %d commands, want 2", len(cmds))
	}
	cmds = mustRun(t, "repeat -3 [ fd 1 ]")
	if len(cmds) != 0 {
		t.Errorf("repeat -3 produced %d commands, want 0", len(cmds))
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		input string
		want  []draw.Command
	}{
		{"fd 10 bk 5", []draw.Command{draw.Forward(10), draw.Back(5)}},
		{"forward 1 back 2 left 3 right 4", []draw.Command{
			draw.Forward(1), draw.Back(2), draw.Left(3), draw.Right(4),
		}},
		{"lt 90 rt 45", []draw.Command{draw.Left(90), draw.Right(45)}},
		{`setcolor "red`, []draw.Command{draw.SetColor("red")}},
		{"cs pu pd", []draw.Command{draw.ClearScreen(), draw.PenUp(), draw.PenDown()}},
		{"clearscreen penup pendown", []draw.Command{draw.ClearScreen(), draw.PenUp(), draw.PenDown()}},
		{`label "hello`, []draw.Command{draw.Label("hello")}},
		{"setfontsize 24", []draw.Command{draw.SetFontSize(24)}},
		{"setturtle 2.7", []draw.Command{draw.SetTurtle(2)}},
		{"fd 10 / 4", []draw.Command{draw.Forward(2.5)}},
		{"fd 2 * 3 + 1", []draw.Command{draw.Forward(7)}},
		{"fd 1 - 2 - 3", []draw.Command{draw.Forward(-4)}},
	}

	for _, tt := range tests {
		got := mustRun(t, tt.input)
		if !slices.Equal(got, tt.want) {
			t.Errorf("%q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	cmds := mustRun(t, "fd 1 / 0")
	if len(cmds) != 1 || !math.IsInf(cmds[0].Num, 1) {
		t.Errorf("fd 1 / 0 = %v, want +Inf", cmds)
	}
}

func TestEarlyReturn(t *testing.T) {
	cmds := mustRun(t, "to proc :x if :x < 1 [ stop ] fd 1 end proc 0")
	if len(cmds) != 0 {
		t.Errorf("stop did not cut the body short: %v", cmds)
	}
	cmds = mustRun(t, "to proc :x if :x < 1 [ stop ] fd 1 end proc 5")
	if !slices.Equal(cmds, []draw.Command{draw.Forward(1)}) {
		t.Errorf("proc 5 = %v", cmds)
	}
}

func TestStopInLoop(t *testing.T) {
	tests := []struct {
		src  string
		want []draw.Command
	}{
		{
			"to walk repeat 10 [ if :repcount > 3 [ stop ] fd :repcount ] fd 99 end walk fd 5",
			[]draw.Command{draw.Forward(1), draw.Forward(2), draw.Forward(3), draw.Forward(99), draw.Forward(5)},
		},
		{
			"repeat 3 [ fd 1 stop fd 7 ] fd 2",
			[]draw.Command{draw.Forward(1), draw.Forward(1), draw.Forward(1), draw.Forward(2)},
		},
		{
			"to p repeat 3 [ fd 1 stop ] fd 2 end p",
			[]draw.Command{draw.Forward(1), draw.Forward(1), draw.Forward(1), draw.Forward(2)},
		},
	}
	for _, tt := range tests {
		if got := mustRun(t, tt.src); !slices.Equal(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestLoopYieldsNothing(t *testing.T) {
	it := NewInterpreter(Options{})
	prog, err := parser.Parse("repeat 2 [ stop ]", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	v, err := it.Eval(prog)
	if err != nil {
		t.Fatal(err)
	}
	if !IsNothing(v) {
		t.Errorf("repeat yielded %v, want nothing", v)
	}
}

func TestRecursion(t *testing.T) {
	src := `
to spiral :n
  if :n < 1 [ stop ]
  fd :n rt 90
  spiral :n - 1
end
spiral 3`
	want := []draw.Command{
		draw.Forward(3), draw.Right(90),
		draw.Forward(2), draw.Right(90),
		draw.Forward(1), draw.Right(90),
	}
	if got := mustRun(t, src); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParameterRestored(t *testing.T) {
	src := `
to inner :x fd :x end
to outer :x inner :x * 2 fd :x end
outer 3`
	want := []draw.Command{draw.Forward(6), draw.Forward(3)}
	if got := mustRun(t, src); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	prog, err := parser.Parse("to p :x fd :x end p 1", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	env := DefaultEnv()
	if _, err := Evaluate(prog, env, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Get("x"); ok {
		t.Error("parameter x still bound after the call")
	}
	if env.Depth() != 0 {
		t.Errorf("frames left on the stack: %d", env.Depth())
	}
}

func TestParameterRestoredAfterError(t *testing.T) {
	prog, err := parser.Parse("to p :x fd :missing end p 1", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	env := DefaultEnv()
	if _, err := Evaluate(prog, env, Options{}); KindOf(err) != UnboundVariable {
		t.Fatalf("err = %v, want unbound variable", err)
	}
	if env.Depth() != 0 {
		t.Errorf("frames left on the stack after error: %d", env.Depth())
	}
}

func TestDynamicScope(t *testing.T) {
	src := `
to show fd :size end
to caller :size show end
caller 42`
	if got := mustRun(t, src); !slices.Equal(got, []draw.Command{draw.Forward(42)}) {
		t.Errorf("callee did not see caller's binding: %v", got)
	}
}

func TestNestedRepcount(t *testing.T) {
	src := "repeat 2 [ fd :repcount repeat 3 [ rt :repcount ] fd :repcount ]"
	want := []draw.Command{
		draw.Forward(1), draw.Right(1), draw.Right(2), draw.Right(3), draw.Forward(1),
		draw.Forward(2), draw.Right(1), draw.Right(2), draw.Right(3), draw.Forward(2),
	}
	if got := mustRun(t, src); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := runString(t, "repeat 1 [ fd 1 ] fd :repcount"); KindOf(err) != UnboundVariable {
		t.Errorf("repcount visible after loop: err = %v", err)
	}
}

func TestPick(t *testing.T) {
	members := map[string]bool{"red": true, "green": true, "blue": true}
	prog, err := parser.Parse("repeat 50 [ setcolor pick [red green blue] ]", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := Evaluate(prog, DefaultEnv(), Options{Rand: seeded()})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 50 {
		t.Fatalf("got %d commands", len(cmds))
	}
	for _, c := range cmds {
		if !members[c.Str] {
			t.Errorf("pick returned %q, not a member", c.Str)
		}
	}

	if _, err := runString(t, "setcolor pick []"); KindOf(err) != EmptyListPick {
		t.Errorf("pick [] err = %v, want empty list pick", err)
	}
}

func TestPickDeterministic(t *testing.T) {
	src := "repeat 20 [ fd pick [1 2 3 4 5 6 7 8 9] ]"
	a := mustRun(t, src)
	b := mustRun(t, src)
	if !slices.Equal(a, b) {
		t.Error("same seed gave different sequences")
	}
}

func TestRandom(t *testing.T) {
	for _, n := range []int{1, 2, 10, 360} {
		it := NewInterpreter(Options{Rand: seeded()})
		fn, _ := it.Env().Get("random")
		for range 200 {
			v, err := fn.Fn.Invoke(it, []*Value{NewNumber(float64(n))})
			if err != nil {
				t.Fatalf("random %d: %v", n, err)
			}
			if v.Num != math.Trunc(v.Num) || v.Num < 0 || v.Num >= float64(n) {
				t.Fatalf("random %d = %v", n, v.Num)
			}
		}
	}

	for _, src := range []string{"fd random 0", "fd random -4", "fd random 0.5"} {
		if _, err := runString(t, src); KindOf(err) != InvalidArgument {
			t.Errorf("%q err = %v, want invalid argument", src, err)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  ErrorKind
	}{
		{"fd :nope", UnboundVariable},
		{`fd "ten`, TypeMismatch},
		{`fd 1 + "a`, TypeMismatch},
		{"if 1 < 2 and 3 [ fd 1 ]", TypeMismatch},
		{"if 1 [ fd 1 ]", NonBooleanGuard},
		{`if "yes [ fd 1 ]`, NonBooleanGuard},
		{`repeat "four [ fd 1 ]`, NonNumericRepeatCount},
		{"repeat 1 < 2 [ fd 1 ]", NonNumericRepeatCount},
		{"to sq :n fd :n end (sq 1 2)", ArityMismatch},
		{"(fd 1 2)", ArityMismatch},
		{"repeat 1 [ repcount ]", NotCallable},
		{`setcolor "chartreuse`, InvalidArgument},
		{"setturtle 1 / 0", InvalidArgument},
		{"pick [1 2]", 0},
	}

	for _, tt := range tests {
		_, err := runString(t, tt.input)
		if tt.kind == 0 {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tt.input, err)
			}
			continue
		}
		if got := KindOf(err); got != tt.kind {
			t.Errorf("%q: kind = %v (%v), want %v", tt.input, got, err, tt.kind)
		}
	}
}

func TestPartialOutputDiscarded(t *testing.T) {
	cmds, err := runString(t, "fd 1 fd 2 fd :missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if cmds != nil {
		t.Errorf("partial output returned: %v", cmds)
	}
}

func TestDepthGuard(t *testing.T) {
	prog, err := parser.Parse("to loop :n loop :n + 1 end loop 0", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	env := DefaultEnv()
	_, err = Evaluate(prog, env, Options{MaxDepth: 50})
	if KindOf(err) != DepthExceeded {
		t.Fatalf("err = %v, want depth exceeded", err)
	}
	if env.Depth() != 0 {
		t.Errorf("frames left after depth error: %d", env.Depth())
	}
}

func TestDefaultPaletteColors(t *testing.T) {
	colors := []string{
		"black", "blue", "green", "cyan", "red", "magenta", "yellow", "white",
		"brown", "tan", "aqua", "salmon", "purple", "orange", "gray", "violet",
	}
	for _, c := range colors {
		cmds, err := runString(t, `setcolor "`+c)
		if err != nil {
			t.Errorf("setcolor %q: %v", c, err)
			continue
		}
		if !slices.Equal(cmds, []draw.Command{draw.SetColor(c)}) {
			t.Errorf("setcolor %q = %v", c, cmds)
		}
	}
	if len(DefaultPalette) != len(colors) {
		t.Errorf("DefaultPalette has %d colors, want %d", len(DefaultPalette), len(colors))
	}
}

func TestPaletteOption(t *testing.T) {
	prog, err := parser.Parse(`setcolor "chartreuse`, parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := Evaluate(prog, DefaultEnv(), Options{Palette: []string{"chartreuse"}})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cmds, []draw.Command{draw.SetColor("chartreuse")}) {
		t.Errorf("got %v", cmds)
	}
}

func TestPrint(t *testing.T) {
	prog, err := parser.Parse(`print 1 + 2 print [a 3 [b]] print "word print 2 < 3`, parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := Evaluate(prog, DefaultEnv(), Options{Stdout: &out}); err != nil {
		t.Fatal(err)
	}
	want := "3\n[a 3 [b]]\nword\ntrue\n"
	if out.String() != want {
		t.Errorf("print output = %q, want %q", out.String(), want)
	}
}

func TestOnEmitAborts(t *testing.T) {
	budget := errors.New("budget exhausted")
	n := 0
	prog, err := parser.Parse("repeat 100 [ fd 1 ]", parser.WithSignatures(Signatures()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Evaluate(prog, DefaultEnv(), Options{OnEmit: func(draw.Command) error {
		n++
		if n > 10 {
			return budget
		}
		return nil
	}})
	if !errors.Is(err, budget) {
		t.Errorf("err = %v, want budget error", err)
	}
}

func TestProcDefIsGlobal(t *testing.T) {
	src := "repeat 1 [ to tri repeat 3 [ fd 1 rt 120 ] end ] tri"
	cmds := mustRun(t, src)
	if len(cmds) != 6 {
		t.Errorf("got %d commands, want 6", len(cmds))
	}
}

func TestBooleanOperators(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"if 1 < 2 and 2 < 3 [ fd 1 ]", 1},
		{"if 1 > 2 and 2 < 3 [ fd 1 ]", 0},
		{"if 1 > 2 or 2 < 3 [ fd 1 ]", 1},
		{"if 1 == 1 [ fd 1 ]", 1},
		{"if 1 >= 2 [ fd 1 ]", 0},
		{"if 2 <= 2 [ fd 1 ]", 1},
	}

	for _, tt := range tests {
		if got := len(mustRun(t, tt.input)); got != tt.want {
			t.Errorf("%q produced %d commands, want %d", tt.input, got, tt.want)
		}
	}
}

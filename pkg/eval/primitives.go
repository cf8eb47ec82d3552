package eval

import (
	"fmt"
	"math"

	"logo_go/pkg/draw"
)

// DefaultPalette is the set of color names setcolor accepts by default
var DefaultPalette = []string{
	"black", "blue", "green", "cyan", "red", "magenta", "yellow", "white",
	"brown", "tan", "aqua", "salmon", "purple", "orange", "gray", "violet",
}

// Builtins returns a fresh copy of the builtin table. Aliases share one
// NativeFn.
func Builtins() []*NativeFn {
	return []*NativeFn{
		{Names: []string{"forward", "fd"}, NArgs: 1, Fn: emitNumber(draw.Forward)},
		{Names: []string{"back", "bk"}, NArgs: 1, Fn: emitNumber(draw.Back)},
		{Names: []string{"left", "lt"}, NArgs: 1, Fn: emitNumber(draw.Left)},
		{Names: []string{"right", "rt"}, NArgs: 1, Fn: emitNumber(draw.Right)},
		{Names: []string{"setcolor"}, NArgs: 1, Fn: primSetColor},
		{Names: []string{"clearscreen", "cs"}, NArgs: 0, Fn: emitFixed(draw.ClearScreen())},
		{Names: []string{"penup", "pu"}, NArgs: 0, Fn: emitFixed(draw.PenUp())},
		{Names: []string{"pendown", "pd"}, NArgs: 0, Fn: emitFixed(draw.PenDown())},
		{Names: []string{"label"}, NArgs: 1, Fn: primLabel},
		{Names: []string{"setfontsize"}, NArgs: 1, Fn: emitNumber(draw.SetFontSize)},
		{Names: []string{"setturtle"}, NArgs: 1, Fn: primSetTurtle},
		{Names: []string{"pick"}, NArgs: 1, Fn: primPick},
		{Names: []string{"random"}, NArgs: 1, Fn: primRandom},
		{Names: []string{"stop"}, NArgs: 0, Fn: primStop},
		{Names: []string{"print"}, NArgs: 1, Fn: primPrint},
	}
}

// Signatures maps every builtin name and alias to its arity
func Signatures() map[string]int {
	sigs := make(map[string]int)
	for _, b := range Builtins() {
		for _, name := range b.Names {
			sigs[name] = b.NArgs
		}
	}
	return sigs
}

// DefaultEnv creates an environment whose global frame holds the builtins
func DefaultEnv() *Env {
	env := NewEnv()
	for _, b := range Builtins() {
		v := NewCallable(b)
		for _, name := range b.Names {
			env.Define(name, v)
		}
	}
	return env
}

func numberArg(name string, v *Value) (float64, error) {
	if !IsNumber(v) {
		return 0, errorf(TypeMismatch, "%s expects a number, got %s", name, v.Tag)
	}
	return v.Num, nil
}

func stringArg(name string, v *Value) (string, error) {
	if !IsString(v) {
		return "", errorf(TypeMismatch, "%s expects a word, got %s", name, v.Tag)
	}
	return v.Str, nil
}

// intArg truncates a numeric argument toward zero
func intArg(name string, v *Value) (int, error) {
	n, err := numberArg(name, v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errorf(InvalidArgument, "%s: %v is not finite", name, n)
	}
	return int(math.Trunc(n)), nil
}

func emitNumber(mk func(float64) draw.Command) NativeFunc {
	return func(it *Interpreter, args []*Value) (*Value, error) {
		cmd := mk(0)
		n, err := numberArg(cmd.Kind.String(), args[0])
		if err != nil {
			return nil, err
		}
		return Nothing, it.Emit(mk(n))
	}
}

func emitFixed(cmd draw.Command) NativeFunc {
	return func(it *Interpreter, args []*Value) (*Value, error) {
		return Nothing, it.Emit(cmd)
	}
}

func primSetColor(it *Interpreter, args []*Value) (*Value, error) {
	c, err := stringArg("setcolor", args[0])
	if err != nil {
		return nil, err
	}
	if it.palette != nil && !it.palette[c] {
		return nil, errorf(InvalidArgument, "setcolor: unknown color %q", c)
	}
	return Nothing, it.Emit(draw.SetColor(c))
}

func primLabel(it *Interpreter, args []*Value) (*Value, error) {
	s, err := stringArg("label", args[0])
	if err != nil {
		return nil, err
	}
	return Nothing, it.Emit(draw.Label(s))
}

func primSetTurtle(it *Interpreter, args []*Value) (*Value, error) {
	n, err := intArg("setturtle", args[0])
	if err != nil {
		return nil, err
	}
	return Nothing, it.Emit(draw.SetTurtle(n))
}

func primPick(it *Interpreter, args []*Value) (*Value, error) {
	l := args[0]
	if !IsList(l) {
		return nil, errorf(TypeMismatch, "pick expects a list, got %s", l.Tag)
	}
	if len(l.List) == 0 {
		return nil, errorf(EmptyListPick, "pick from an empty list")
	}
	return l.List[it.rng.IntN(len(l.List))], nil
}

func primRandom(it *Interpreter, args []*Value) (*Value, error) {
	n, err := intArg("random", args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errorf(InvalidArgument, "random: bound must be positive, got %d", n)
	}
	return NewNumber(float64(it.rng.IntN(n))), nil
}

func primStop(it *Interpreter, args []*Value) (*Value, error) {
	return Return, nil
}

func primPrint(it *Interpreter, args []*Value) (*Value, error) {
	if _, err := fmt.Fprintln(it.out, args[0]); err != nil {
		return nil, err
	}
	return Nothing, nil
}

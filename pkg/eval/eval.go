package eval

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"logo_go/pkg/ast"
	"logo_go/pkg/draw"
)

// RepCount is the reserved loop-counter variable bound inside repeat
const RepCount = "repcount"

// DefaultMaxDepth bounds nested user-procedure calls
const DefaultMaxDepth = 1000

// Options configures an Interpreter
type Options struct {
	// Rand drives pick and random. Nil means an unseeded source.
	Rand *rand.Rand
	// MaxDepth bounds nested user-procedure calls; 0 means DefaultMaxDepth.
	MaxDepth int
	// Palette restricts setcolor to these names; empty accepts any token.
	Palette []string
	// Stdout receives print output; nil discards it.
	Stdout io.Writer
	// Logger receives debug traces; nil discards them.
	Logger *slog.Logger
	// OnEmit is called for every draw command before it is recorded.
	// Returning an error aborts the run; hosts use it for budgets.
	OnEmit func(cmd draw.Command) error
}

// Interpreter is the evaluation context for one run
type Interpreter struct {
	env      *Env
	drawing  []draw.Command
	rng      *rand.Rand
	depth    int
	maxDepth int
	palette  map[string]bool
	out      io.Writer
	log      *slog.Logger
	onEmit   func(draw.Command) error
}

// NewInterpreter creates an interpreter whose environment holds the
// builtin table
func NewInterpreter(opts Options) *Interpreter {
	return NewInterpreterWithEnv(DefaultEnv(), opts)
}

// NewInterpreterWithEnv creates an interpreter over a caller-supplied
// environment
func NewInterpreterWithEnv(env *Env, opts Options) *Interpreter {
	it := &Interpreter{
		env:      env,
		rng:      opts.Rand,
		maxDepth: opts.MaxDepth,
		out:      opts.Stdout,
		log:      opts.Logger,
		onEmit:   opts.OnEmit,
	}
	if it.rng == nil {
		it.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if it.maxDepth <= 0 {
		it.maxDepth = DefaultMaxDepth
	}
	if it.out == nil {
		it.out = io.Discard
	}
	if it.log == nil {
		it.log = slog.New(slog.DiscardHandler)
	}
	if len(opts.Palette) > 0 {
		it.palette = make(map[string]bool, len(opts.Palette))
		for _, c := range opts.Palette {
			it.palette[c] = true
		}
	}
	return it
}

// Env returns the interpreter's environment
func (it *Interpreter) Env() *Env {
	return it.env
}

// Drawing returns the draw commands emitted so far
func (it *Interpreter) Drawing() []draw.Command {
	return it.drawing
}

// Emit appends a draw command to the output sequence
func (it *Interpreter) Emit(cmd draw.Command) error {
	if it.onEmit != nil {
		if err := it.onEmit(cmd); err != nil {
			return err
		}
	}
	it.drawing = append(it.drawing, cmd)
	return nil
}

// Rand returns the random source used by pick and random
func (it *Interpreter) Rand() *rand.Rand {
	return it.rng
}

// Evaluate runs a program against env and returns its draw commands.
// On error the partial output is discarded.
func Evaluate(node *ast.Node, env *Env, opts Options) ([]draw.Command, error) {
	it := NewInterpreterWithEnv(env, opts)
	if _, err := it.Eval(node); err != nil {
		return nil, err
	}
	return it.drawing, nil
}

// Run evaluates a program with the default environment and options
func Run(node *ast.Node) ([]draw.Command, error) {
	return Evaluate(node, DefaultEnv(), Options{})
}

// EvalContext evaluates node, checking ctx between top-level statements
func (it *Interpreter) EvalContext(ctx context.Context, node *ast.Node) (*Value, error) {
	if node.Kind != ast.KBlock {
		return it.Eval(node)
	}
	ret := Nothing
	for _, stmt := range node.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := it.Eval(stmt)
		if err != nil {
			return nil, err
		}
		ret = v
		if IsReturn(v) {
			break
		}
	}
	return ret, nil
}

// Eval reduces a node to a value
func (it *Interpreter) Eval(node *ast.Node) (*Value, error) {
	switch node.Kind {
	case ast.KNumber:
		return NewNumber(node.Num), nil

	case ast.KString:
		return NewString(node.Str), nil

	case ast.KVariable:
		v, ok := it.env.Get(node.Str)
		if !ok {
			return nil, errorf(UnboundVariable, "%s", node.Str)
		}
		return v, nil

	case ast.KList:
		elems := make([]*Value, 0, len(node.Items))
		for _, e := range node.Items {
			v, err := it.Eval(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return NewList(elems), nil

	case ast.KBinop:
		left, err := it.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := it.Eval(node.Right)
		if err != nil {
			return nil, err
		}
		return evalBinop(left, node.Op, right)

	case ast.KCall:
		return it.evalCall(node)

	case ast.KIf:
		c, err := it.Eval(node.Cond)
		if err != nil {
			return nil, err
		}
		if !IsBool(c) {
			return nil, errorf(NonBooleanGuard, "if expects a boolean, got %s", c.Tag)
		}
		if !c.Bool {
			return Nothing, nil
		}
		return it.Eval(node.Body)

	case ast.KLoop:
		return it.evalLoop(node)

	case ast.KProcDef:
		proc := &UserProc{ProcName: node.Str, Params: node.Params, Body: node.Body}
		it.env.Define(node.Str, NewCallable(proc))
		it.log.Debug("define procedure",
			slog.String("name", node.Str),
			slog.Int("params", len(node.Params)))
		return Nothing, nil

	case ast.KBlock:
		ret := Nothing
		for _, stmt := range node.Items {
			v, err := it.Eval(stmt)
			if err != nil {
				return nil, err
			}
			ret = v
			if IsReturn(v) {
				break
			}
		}
		return ret, nil
	}

	panic("eval: unhandled node kind " + node.Kind.String())
}

func (it *Interpreter) evalCall(node *ast.Node) (*Value, error) {
	f, err := it.Eval(node.Callee)
	if err != nil {
		return nil, err
	}
	if !IsCallable(f) {
		return nil, errorf(NotCallable, "%s is a %s, not a procedure", node.Callee, f.Tag)
	}
	args := make([]*Value, 0, len(node.Items))
	for _, a := range node.Items {
		v, err := it.Eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return f.Fn.Invoke(it, args)
}

// callUser runs a user procedure in a new frame holding its parameters.
// The frame is popped however the body finishes, and the call itself
// always yields Nothing.
func (it *Interpreter) callUser(proc *UserProc, args []*Value) (*Value, error) {
	if len(args) != len(proc.Params) {
		return nil, errorf(ArityMismatch, "%s expects %d argument(s), got %d",
			proc.ProcName, len(proc.Params), len(args))
	}
	if it.depth >= it.maxDepth {
		return nil, errorf(DepthExceeded, "%s: more than %d nested calls", proc.ProcName, it.maxDepth)
	}

	it.env.Push(NewFrame())
	for i, name := range proc.Params {
		it.env.Set(name, args[i])
	}
	it.depth++
	it.log.Debug("push frame",
		slog.String("proc", proc.ProcName),
		slog.Int("depth", it.depth))
	defer func() {
		it.env.Pop()
		it.depth--
		it.log.Debug("pop frame",
			slog.String("proc", proc.ProcName),
			slog.Int("depth", it.depth))
	}()

	if _, err := it.Eval(proc.Body); err != nil {
		return nil, err
	}
	return Nothing, nil
}

// evalLoop runs the body count times with repcount bound to 1..count in a
// frame of its own, so an inner loop never disturbs an outer counter.
// Body results are discarded: a stop only cuts the current pass short.
func (it *Interpreter) evalLoop(node *ast.Node) (*Value, error) {
	r, err := it.Eval(node.Cond)
	if err != nil {
		return nil, err
	}
	if !IsNumber(r) {
		return nil, errorf(NonNumericRepeatCount, "repeat expects a number, got %s", r.Tag)
	}
	if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
		return nil, errorf(InvalidArgument, "repeat count %v is not finite", r.Num)
	}
	count := int(math.Trunc(r.Num))

	it.env.Push(NewFrame())
	defer it.env.Pop()

	for i := 1; i <= count; i++ {
		it.env.Set(RepCount, NewNumber(float64(i)))
		if _, err := it.Eval(node.Body); err != nil {
			return nil, err
		}
	}
	return Nothing, nil
}

func evalBinop(v1 *Value, op ast.Op, v2 *Value) (*Value, error) {
	switch op {
	case ast.OpAnd, ast.OpOr:
		if !IsBool(v1) || !IsBool(v2) {
			return nil, errorf(TypeMismatch, "%s expects booleans, got %s and %s", op, v1.Tag, v2.Tag)
		}
		if op == ast.OpAnd {
			return NewBool(v1.Bool && v2.Bool), nil
		}
		return NewBool(v1.Bool || v2.Bool), nil
	}

	if !IsNumber(v1) || !IsNumber(v2) {
		return nil, errorf(TypeMismatch, "%s expects numbers, got %s and %s", op, v1.Tag, v2.Tag)
	}
	a, b := v1.Num, v2.Num
	switch op {
	case ast.OpLess:
		return NewBool(a < b), nil
	case ast.OpLessEqual:
		return NewBool(a <= b), nil
	case ast.OpGreater:
		return NewBool(a > b), nil
	case ast.OpGreaterEqual:
		return NewBool(a >= b), nil
	case ast.OpEqualEqual:
		return NewBool(a == b), nil
	case ast.OpAdd:
		return NewNumber(a + b), nil
	case ast.OpSub:
		return NewNumber(a - b), nil
	case ast.OpMul:
		return NewNumber(a * b), nil
	case ast.OpDiv:
		return NewNumber(a / b), nil
	}
	panic("eval: unhandled operator " + op.String())
}

package eval

import (
	"strconv"
	"strings"

	"logo_go/pkg/ast"
)

// Tag represents the type of a Value
type Tag int

const (
	TNothing Tag = iota // unit result of commands
	TReturn             // control signal produced by stop
	TBool
	TNumber
	TString
	TList
	TCallable
)

func (t Tag) String() string {
	switch t {
	case TNothing:
		return "nothing"
	case TReturn:
		return "return"
	case TBool:
		return "boolean"
	case TNumber:
		return "number"
	case TString:
		return "string"
	case TList:
		return "list"
	case TCallable:
		return "procedure"
	default:
		return "unknown"
	}
}

// Value is the tagged union for all runtime values
type Value struct {
	Tag Tag

	// TBool
	Bool bool

	// TNumber
	Num float64

	// TString
	Str string

	// TList
	List []*Value

	// TCallable
	Fn Callable
}

// Nothing is the singleton unit value
var Nothing = &Value{Tag: TNothing}

// Return is the singleton early-return signal
var Return = &Value{Tag: TReturn}

var (
	True  = &Value{Tag: TBool, Bool: true}
	False = &Value{Tag: TBool, Bool: false}
)

// NewBool returns the shared boolean value for b
func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// NewNumber creates a number value
func NewNumber(n float64) *Value {
	return &Value{Tag: TNumber, Num: n}
}

// NewString creates a string value
func NewString(s string) *Value {
	return &Value{Tag: TString, Str: s}
}

// NewList creates a list value
func NewList(elems []*Value) *Value {
	return &Value{Tag: TList, List: elems}
}

// NewCallable wraps a callable as a value
func NewCallable(fn Callable) *Value {
	return &Value{Tag: TCallable, Fn: fn}
}

func IsNothing(v *Value) bool { return v != nil && v.Tag == TNothing }
func IsReturn(v *Value) bool { return v != nil && v.Tag == TReturn }
func IsBool(v *Value) bool { return v != nil && v.Tag == TBool }
func IsNumber(v *Value) bool { return v != nil && v.Tag == TNumber }
func IsString(v *Value) bool { return v != nil && v.Tag == TString }
func IsList(v *Value) bool { return v != nil && v.Tag == TList }
func IsCallable(v *Value) bool { return v != nil && v.Tag == TCallable }

// String formats a value the way print shows it
func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	switch v.Tag {
	case TNothing:
		return "nothing"
	case TReturn:
		return "<stop>"
	case TBool:
		return strconv.FormatBool(v.Bool)
	case TNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TString:
		return v.Str
	case TList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case TCallable:
		return "<procedure " + v.Fn.Name() + ">"
	default:
		return "<unknown>"
	}
}

// Callable is implemented by builtin and user-defined procedures
type Callable interface {
	Name() string
	Arity() int
	Invoke(it *Interpreter, args []*Value) (*Value, error)
}

// NativeFunc is the host implementation behind a builtin. It receives
// already-evaluated arguments whose count matches the declared arity.
type NativeFunc func(it *Interpreter, args []*Value) (*Value, error)

// NativeFn is a builtin procedure. Aliases share one NativeFn.
type NativeFn struct {
	Names []string
	NArgs int
	Fn    NativeFunc
}

func (n *NativeFn) Name() string { return n.Names[0] }
func (n *NativeFn) Arity() int { return n.NArgs }

// Invoke checks the argument count and runs the host operation
func (n *NativeFn) Invoke(it *Interpreter, args []*Value) (*Value, error) {
	if len(args) != n.NArgs {
		return nil, errorf(ArityMismatch, "%s expects %d argument(s), got %d", n.Name(), n.NArgs, len(args))
	}
	return n.Fn(it, args)
}

// UserProc is a procedure defined with `to`. It captures nothing from
// the defining scope; names in the body resolve when it runs.
type UserProc struct {
	ProcName string
	Params   []string
	Body     *ast.Node
}

func (u *UserProc) Name() string { return u.ProcName }
func (u *UserProc) Arity() int { return len(u.Params) }

// Invoke binds the parameters in a fresh frame and runs the body
func (u *UserProc) Invoke(it *Interpreter, args []*Value) (*Value, error) {
	return it.callUser(u, args)
}

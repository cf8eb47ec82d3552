package draw

import (
	"fmt"
	"strconv"
)

// Kind identifies a draw command variant
type Kind int

const (
	KForward Kind = iota
	KBack
	KLeft
	KRight
	KSetColor
	KClearScreen
	KPenUp
	KPenDown
	KLabel
	KSetFontSize
	KSetTurtle
)

var kindNames = [...]string{
	KForward:     "forward",
	KBack:        "back",
	KLeft:        "left",
	KRight:       "right",
	KSetColor:    "setcolor",
	KClearScreen: "clearscreen",
	KPenUp:       "penup",
	KPenDown:     "pendown",
	KLabel:       "label",
	KSetFontSize: "setfontsize",
	KSetTurtle:   "setturtle",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Command is one unit of evaluator output. It is a comparable value so
// command sequences can be checked with == in tests.
type Command struct {
	Kind Kind
	// Distance for forward/back, degrees for left/right, size for setfontsize
	Num float64
	// Color token for setcolor, text for label
	Str string
	// Turtle index for setturtle
	Index int
}

func Forward(d float64) Command { return Command{Kind: KForward, Num: d} }
func Back(d float64) Command { return Command{Kind: KBack, Num: d} }
func Left(deg float64) Command { return Command{Kind: KLeft, Num: deg} }
func Right(deg float64) Command { return Command{Kind: KRight, Num: deg} }
func SetColor(c string) Command { return Command{Kind: KSetColor, Str: c} }
func ClearScreen() Command { return Command{Kind: KClearScreen} }
func PenUp() Command { return Command{Kind: KPenUp} }
func PenDown() Command { return Command{Kind: KPenDown} }
func Label(text string) Command { return Command{Kind: KLabel, Str: text} }
func SetFontSize(n float64) Command { return Command{Kind: KSetFontSize, Num: n} }
func SetTurtle(index int) Command { return Command{Kind: KSetTurtle, Index: index} }

func (c Command) String() string {
	switch c.Kind {
	case KForward, KBack, KLeft, KRight, KSetFontSize:
		return c.Kind.String() + " " + strconv.FormatFloat(c.Num, 'g', -1, 64)
	case KSetColor, KLabel:
		return fmt.Sprintf("%s %q", c.Kind, c.Str)
	case KSetTurtle:
		return fmt.Sprintf("%s %d", c.Kind, c.Index)
	default:
		return c.Kind.String()
	}
}

package codegen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"logo_go/pkg/draw"
)

// Canvas describes the output image
type Canvas struct {
	Width      int
	Height     int
	Background string
}

// DefaultCanvas is the canvas used when none is configured
var DefaultCanvas = Canvas{Width: 800, Height: 800, Background: "white"}

// errWriter remembers the first write error and drops everything after it
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// SVGGenerator renders a draw-command sequence as an SVG document
type SVGGenerator struct {
	out     *errWriter
	doc     *svg.SVG
	canvas  Canvas
	turtles *TurtleRegistry
}

// NewSVGGenerator creates a new SVG generator writing to w
func NewSVGGenerator(w io.Writer, canvas Canvas) *SVGGenerator {
	if canvas.Background == "" {
		canvas.Background = DefaultCanvas.Background
	}
	out := &errWriter{w: w}
	return &SVGGenerator{out: out, doc: svg.New(out), canvas: canvas}
}

// Turtles returns the turtle state after the last Generate call
func (g *SVGGenerator) Turtles() *TurtleRegistry {
	return g.turtles
}

// Generate writes the document for cmds. The canvas is cleared before
// the first command and turtle 1 starts at the centre, facing up.
func (g *SVGGenerator) Generate(cmds []draw.Command) error {
	g.turtles = NewTurtleRegistry()
	g.doc.Start(g.canvas.Width, g.canvas.Height)
	g.clear()
	for _, cmd := range cmds {
		g.apply(cmd)
	}
	g.doc.End()
	return g.out.err
}

func (g *SVGGenerator) apply(cmd draw.Command) {
	t := g.turtles.Current()
	switch cmd.Kind {
	case draw.KForward:
		g.move(t, cmd.Num)
	case draw.KBack:
		g.move(t, -cmd.Num)
	case draw.KLeft:
		t.Turn(cmd.Num)
	case draw.KRight:
		t.Turn(-cmd.Num)
	case draw.KSetColor:
		t.Color = cmd.Str
	case draw.KClearScreen:
		g.clear()
	case draw.KPenUp:
		t.PenDown = false
	case draw.KPenDown:
		t.PenDown = true
	case draw.KLabel:
		g.label(t, cmd.Str)
	case draw.KSetFontSize:
		t.FontSize = cmd.Num
	case draw.KSetTurtle:
		g.turtles.Select(cmd.Index)
	default:
		panic("codegen: unhandled draw command " + cmd.Kind.String())
	}
}

func (g *SVGGenerator) move(t *Turtle, u float64) {
	x, y := g.abs(t)
	dx, dy := t.Move(u)
	if !t.PenDown {
		return
	}
	g.doc.Path(fmt.Sprintf("M%s,%s l%s,%s", num(x), num(y), num(dx), num(dy)),
		attr("stroke", t.Color))
}

// label writes text at the turtle, rotated to its heading. svgo places
// text on integer coordinates, so the position goes in the group transform.
func (g *SVGGenerator) label(t *Turtle, text string) {
	x, y := g.abs(t)
	g.doc.Gtransform(fmt.Sprintf("translate(%s %s) rotate(%s)", num(x), num(y), num(-t.HeadingDegrees())))
	g.doc.Text(0, 0, text, attr("font-size", num(t.FontSize)))
	g.doc.Gend()
}

func (g *SVGGenerator) clear() {
	g.doc.Rect(0, 0, g.canvas.Width, g.canvas.Height, attr("fill", g.canvas.Background))
}

// abs converts turtle coordinates to canvas coordinates
func (g *SVGGenerator) abs(t *Turtle) (float64, float64) {
	return float64(g.canvas.Width/2) + t.X, float64(g.canvas.Height/2) + t.Y
}

// attr formats one escaped attribute for the svgo style arguments
func attr(name, value string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(&buf, []byte(value))
	return name + `="` + buf.String() + `"`
}

// num formats a coordinate with at most four decimals
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders cmds on canvas and returns the document
func RenderSVG(cmds []draw.Command, canvas Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewSVGGenerator(&buf, canvas).Generate(cmds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

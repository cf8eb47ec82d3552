package codegen

import (
	"math"
	"sort"
)

// Turtle defaults applied when a turtle is first referenced
const (
	DefaultColor    = "black"
	DefaultFontSize = 12.0
	DefaultHeading  = math.Pi / 2 // pointing up
	FirstTurtle     = 1
)

// Turtle is one draw cursor. X and Y are offsets from the canvas centre,
// with Y growing downwards as in SVG. Heading is in radians,
// counter-clockwise from the positive X axis.
type Turtle struct {
	X, Y     float64
	Heading  float64
	PenDown  bool
	Color    string
	FontSize float64
}

func newTurtle() *Turtle {
	return &Turtle{
		Heading:  DefaultHeading,
		PenDown:  true,
		Color:    DefaultColor,
		FontSize: DefaultFontSize,
	}
}

// Move advances the turtle by u along its heading and returns the
// displacement.
func (t *Turtle) Move(u float64) (dx, dy float64) {
	dx = u * math.Cos(t.Heading)
	dy = u * -math.Sin(t.Heading)
	t.X += dx
	t.Y += dy
	return dx, dy
}

// Turn rotates the turtle counter-clockwise by deg degrees
func (t *Turtle) Turn(deg float64) {
	t.Heading += deg * math.Pi / 180
}

// HeadingDegrees returns the heading in degrees
func (t *Turtle) HeadingDegrees() float64 {
	return t.Heading * 180 / math.Pi
}

// TurtleRegistry holds every turtle referenced so far and tracks the
// active one. Turtles are created on first reference.
type TurtleRegistry struct {
	Turtles map[int]*Turtle
	Active  int
}

// NewTurtleRegistry creates a registry holding only the first turtle
func NewTurtleRegistry() *TurtleRegistry {
	r := &TurtleRegistry{Turtles: make(map[int]*Turtle)}
	r.Select(FirstTurtle)
	return r
}

// Select makes idx the active turtle, creating it if needed
func (r *TurtleRegistry) Select(idx int) *Turtle {
	t, ok := r.Turtles[idx]
	if !ok {
		t = newTurtle()
		r.Turtles[idx] = t
	}
	r.Active = idx
	return t
}

// Current returns the active turtle
func (r *TurtleRegistry) Current() *Turtle {
	return r.Turtles[r.Active]
}

// Indices returns the known turtle indices in ascending order
func (r *TurtleRegistry) Indices() []int {
	idx := make([]int, 0, len(r.Turtles))
	for i := range r.Turtles {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

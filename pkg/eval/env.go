package eval

// Frame holds the bindings introduced by one procedure call or loop
type Frame struct {
	vars map[string]*Value
}

// NewFrame creates an empty frame
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]*Value)}
}

// Set binds name in this frame only
func (f *Frame) Set(name string, v *Value) {
	f.vars[name] = v
}

// Env is the binding store for one run: a stack of frames whose bottom
// frame is global. Lookup walks from the innermost frame outwards, so a
// callee sees its caller's bindings (dynamic scope). Variables and
// procedures share one namespace.
type Env struct {
	frames []*Frame
}

// NewEnv creates an environment holding only an empty global frame
func NewEnv() *Env {
	return &Env{frames: []*Frame{NewFrame()}}
}

// Get looks up a name, innermost frame first
func (e *Env) Get(name string) (*Value, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in the innermost frame
func (e *Env) Set(name string, v *Value) {
	e.frames[len(e.frames)-1].Set(name, v)
}

// Define binds name in the global frame
func (e *Env) Define(name string, v *Value) {
	e.frames[0].Set(name, v)
}

// Push makes f the innermost frame
func (e *Env) Push(f *Frame) {
	e.frames = append(e.frames, f)
}

// Pop discards the innermost frame. The global frame is never popped.
func (e *Env) Pop() {
	if len(e.frames) == 1 {
		panic("eval: pop of global frame")
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
}

// Depth returns the number of frames above the global one
func (e *Env) Depth() int {
	return len(e.frames) - 1
}

// Names lists the globally bound names
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.frames[0].vars))
	for name := range e.frames[0].vars {
		names = append(names, name)
	}
	return names
}

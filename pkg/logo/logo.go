// Package logo runs turtle-graphics programs end to end: parse, evaluate
// and render.
package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"logo_go/pkg/ast"
	"logo_go/pkg/codegen"
	"logo_go/pkg/config"
	"logo_go/pkg/draw"
	"logo_go/pkg/eval"
	"logo_go/pkg/parser"
)

// ErrCommandLimit is returned when a run emits more draw commands than
// eval.max_commands allows
var ErrCommandLimit = errors.New("draw command limit exceeded")

// Result is the outcome of a successful run. Value is what the last
// top-level statement evaluated to.
type Result struct {
	Program  *ast.Node
	Commands []draw.Command
	Value    *eval.Value
	SVG      []byte
	Seed     uint64
}

type runOptions struct {
	logger *slog.Logger
	stdout io.Writer
	render bool
}

// Option configures Run
type Option func(*runOptions)

// WithLogger sends interpreter traces to l
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithStdout sends print output to w
func WithStdout(w io.Writer) Option {
	return func(o *runOptions) { o.stdout = w }
}

// WithoutSVG skips rendering; Result.SVG stays nil
func WithoutSVG() Option {
	return func(o *runOptions) { o.render = false }
}

// Session runs a series of programs against one environment and one random
// source, so procedures defined by one run stay visible to the next and
// pick/random continue their sequence instead of restarting it.
type Session struct {
	cfg  *config.Config
	env  *eval.Env
	rng  *rand.Rand
	seed uint64
}

// NewSession creates a session under cfg. A nil cfg means config.Default().
// The random source is seeded from eval.seed, or randomly when unset.
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	seed := rand.Uint64()
	if cfg.Eval.Seed != nil {
		seed = *cfg.Eval.Seed
	}
	return &Session{
		cfg:  cfg,
		env:  eval.DefaultEnv(),
		rng:  rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Env returns the session environment
func (s *Session) Env() *eval.Env {
	return s.env
}

// Seed returns the seed the session's random source started from
func (s *Session) Seed() uint64 {
	return s.seed
}

// Parse parses src with the builtin signatures, plus any procedures
// already defined in env
func Parse(src string, env *eval.Env) (*ast.Node, error) {
	sigs := eval.Signatures()
	if env != nil {
		for _, name := range env.Names() {
			if v, ok := env.Get(name); ok && eval.IsCallable(v) {
				sigs[name] = v.Fn.Arity()
			}
		}
	}
	return parser.Parse(src, parser.WithSignatures(sigs))
}

// Run parses and evaluates src in a fresh session under cfg
func Run(ctx context.Context, src string, cfg *config.Config, opts ...Option) (*Result, error) {
	return NewSession(cfg).Run(ctx, src, opts...)
}

// Run parses and evaluates src in the session. Any parse or evaluation
// failure fails the whole run and no partial commands are returned;
// definitions made before the failure stay in the session.
func (s *Session) Run(ctx context.Context, src string, opts ...Option) (*Result, error) {
	ro := runOptions{render: true}
	for _, opt := range opts {
		opt(&ro)
	}

	prog, err := Parse(src, s.env)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.Eval.MaxCommands
	var emitted int
	it := eval.NewInterpreterWithEnv(s.env, eval.Options{
		Rand:     s.rng,
		MaxDepth: s.cfg.Eval.MaxDepth,
		Palette:  s.cfg.Palette,
		Stdout:   ro.stdout,
		Logger:   ro.logger,
		OnEmit: func(draw.Command) error {
			emitted++
			if limit > 0 && emitted > limit {
				return fmt.Errorf("%w: limit is %d", ErrCommandLimit, limit)
			}
			return nil
		},
	})
	v, err := it.EvalContext(ctx, prog)
	if err != nil {
		return nil, err
	}

	res := &Result{Program: prog, Commands: it.Drawing(), Value: v, Seed: s.seed}
	if ro.render {
		res.SVG, err = codegen.RenderSVG(res.Commands, s.cfg.SVGCanvas())
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}
	return res, nil
}

package mosh

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// State is the lifecycle position of an Engine.
type State int

const (
	StateIdle State = iota
	StateSeeded
	StateIterating
	StatePixelating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeded:
		return "seeded"
	case StateIterating:
		return "iterating"
	case StatePixelating:
		return "pixelating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EngineOption configures an Engine.
type EngineOption func(e *Engine)

// WithLogger sets the logger used for per-run debug output.
func WithLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// WithSourceFunc replaces the ChaCha8 source, typically with a scripted one
// in tests.
func WithSourceFunc(fn SourceFunc) EngineOption {
	return func(e *Engine) {
		e.newSource = fn
	}
}

// WithStrictGrayscaleAlpha rejects pixelation of GrayscaleAlpha images.
func WithStrictGrayscaleAlpha() EngineOption {
	return func(e *Engine) {
		e.strict = true
	}
}

// Result is the output of one Engine.Mosh call.
type Result struct {
	// Buffer is the moshed copy of the original. It is owned by the caller.
	Buffer []byte

	// Iterations is the number of chunk iterations that ran.
	Iterations int

	// Seed is the seed the run used.
	Seed uint64
}

// Engine moshes copies of one decoded image.
type Engine struct {
	meta      ImageMeta
	original  []byte
	log       *zap.Logger
	newSource SourceFunc
	pixelate  func(meta ImageMeta, buf []byte, factor uint8) error
	strict    bool
	state     State
	err       error
}

// New validates meta against original and returns an Engine holding its own
// copy of original.
func New(meta ImageMeta, original []byte, opts ...EngineOption) (*Engine, error) {
	if err := meta.Validate(original); err != nil {
		return nil, err
	}

	e := &Engine{
		meta:      meta,
		original:  slices.Clone(original),
		log:       zap.NewNop(),
		newSource: NewSource,
		pixelate:  Pixelate,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Meta returns the shape of the original image.
func (e *Engine) Meta() ImageMeta {
	return e.meta
}

// Original returns the untouched decoded bytes. Callers must not modify it.
func (e *Engine) Original() []byte {
	return e.original
}

// State returns where the last Mosh call got to.
func (e *Engine) State() State {
	return e.state
}

// Err returns the error that moved the engine to StateFailed, if any.
func (e *Engine) Err() error {
	return e.err
}

// Mosh runs one seeded pass over a fresh clone of the original. Earlier
// calls never affect the result.
func (e *Engine) Mosh(o *Options) (*Result, error) {
	e.state, e.err = StateIdle, nil

	work := slices.Clone(e.original)
	n, err := e.run(work, o)
	if err != nil {
		e.state, e.err = StateFailed, err
		return nil, err
	}

	e.state = StateDone
	return &Result{Buffer: work, Iterations: n, Seed: o.Seed}, nil
}

// Mosh corrupts buf in place. buf must match meta. On error buf is left
// untouched.
func Mosh(meta ImageMeta, buf []byte, o *Options) error {
	e, err := New(meta, buf)
	if err != nil {
		return err
	}
	return e.moshInto(buf, o)
}

// moshInto runs one pass on a working copy and copies it into buf only on
// success.
func (e *Engine) moshInto(buf []byte, o *Options) error {
	r, err := e.Mosh(o)
	if err != nil {
		return err
	}
	copy(buf, r.Buffer)
	return nil
}

func (e *Engine) run(buf []byte, o *Options) (int, error) {
	if err := e.check(o); err != nil {
		return 0, err
	}

	log := e.log.With(zap.Uint64("seed", o.Seed))

	src := e.newSource(o.Seed)
	e.state = StateSeeded

	n := src.Uniform(int(o.MinRate), int(o.EffectiveMaxRate()))
	lineCount := len(buf) / e.meta.LineSize
	channels := e.meta.ColorType.Channels()

	e.state = StateIterating
	for i := 0; i < n; i++ {
		p := planChunk(src, o, lineCount, e.meta.LineSize, channels)
		p.Apply(buf, e.meta.LineSize)
		log.Debug("chunk moshed",
			zap.Int("iteration", i+1),
			zap.Int("first_line", p.FirstLine),
			zap.Int("last_line", p.LastLine),
			zap.Stringer("effects", p),
		)
	}

	if o.Pixelation > 1 {
		e.state = StatePixelating
		if err := e.pixelate(e.meta, buf, o.Pixelation); err != nil {
			return n, err
		}
	}

	log.Debug("mosh finished", zap.Int("iterations", n), zap.Uint8("pixelation", o.Pixelation))
	return n, nil
}

// check rejects every failure that can be known before mutating anything.
func (e *Engine) check(o *Options) error {
	if o == nil {
		return fmt.Errorf("%w: nil options", ErrInvalidParameters)
	}
	if err := o.Validate(); err != nil {
		return err
	}

	switch e.meta.ColorType {
	case Indexed:
		return fmt.Errorf("%w: %s", ErrUnsupportedColorType, e.meta.ColorType)
	case GrayscaleAlpha:
		if e.strict && o.Pixelation > 1 {
			return fmt.Errorf("%w: pixelation of %s", ErrUnsupportedColorType, e.meta.ColorType)
		}
	}

	if p := int(o.Pixelation); p > 1 && (int(e.meta.Width) < p || int(e.meta.Height) < p) {
		return fmt.Errorf("%w: pixelation %d larger than %dx%d image",
			ErrInvalidParameters, p, e.meta.Width, e.meta.Height)
	}

	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ironsheep/pixelmosh/internal/config"
	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// Written describes one output file.
type Written struct {
	Path       string
	Seed       uint64
	Iterations int
	Size       bytesize.ByteSize
}

// Runner executes CLI invocations against a file system.
type Runner struct {
	fs     afero.Fs
	stdout io.Writer
	log    *zap.Logger
	status func() status
}

// Option configures a Runner.
type Option func(r *Runner)

// WithStdout redirects the file/seed report.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithSpinner forces the stage spinner on or off, writing to w.
func WithSpinner(w io.Writer, on bool) Option {
	return func(r *Runner) {
		r.status = func() status {
			if !on {
				return nopStatus{}
			}
			return newSpinner(w, hasDesktop())
		}
	}
}

// NewRunner returns a Runner reading and writing through fs. By default the
// report goes to stdout and the spinner to stderr when it is a terminal.
func NewRunner(fs afero.Fs, opts ...Option) *Runner {
	r := &Runner{
		fs:     fs,
		stdout: os.Stdout,
		log:    zap.NewNop(),
	}
	WithSpinner(os.Stderr, isTerminal(os.Stderr))(r)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run moshes input according to p and writes p.Batch images. Image i uses
// seed p.Seed+i, so every file can be reproduced from the printed seed.
func (r *Runner) Run(ctx context.Context, input string, p config.Preset) ([]Written, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	fmt.Fprintf(r.stdout, "file: %s\n", input)
	fmt.Fprintf(r.stdout, "seed: %d\n", p.Seed)

	st := r.status()
	log := r.log.With(zap.String("input", input), zap.Uint64("seed", p.Seed))

	st.Stage("[cyan]reading input[reset]")
	img, err := pngio.ReadFile(r.fs, input)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded input",
		zap.Uint32("width", img.Meta.Width),
		zap.Uint32("height", img.Meta.Height),
		zap.Stringer("color_type", img.Meta.ColorType),
	)

	engineOpts := []mosh.EngineOption{mosh.WithLogger(log)}
	if p.Strict {
		engineOpts = append(engineOpts, mosh.WithStrictGrayscaleAlpha())
	}
	engine, err := mosh.New(img.Meta, img.Pix, engineOpts...)
	if err != nil {
		return nil, err
	}

	written := make([]Written, 0, p.Batch)
	for i := 0; i < p.Batch; i++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		o := p.Options
		o.Seed = p.Seed + uint64(i)

		st.Stage(lo.Ternary(p.Batch > 1,
			fmt.Sprintf("[blue]processing %d/%d[reset]", i+1, p.Batch),
			"[blue]processing[reset]"))
		res, err := engine.Mosh(&o)
		if err != nil {
			return written, err
		}

		st.Stage("[yellow]writing output[reset]")
		path := OutputPath(p.Output, i, p.Batch)
		size, err := pngio.WriteFile(r.fs, path, &pngio.Image{Meta: img.Meta, Pix: res.Buffer, Palette: img.Palette})
		if err != nil {
			return written, err
		}

		w := Written{
			Path:       path,
			Seed:       o.Seed,
			Iterations: res.Iterations,
			Size:       bytesize.New(float64(size)),
		}
		written = append(written, w)
		log.Info("wrote output",
			zap.String("path", w.Path),
			zap.Uint64("image_seed", w.Seed),
			zap.Int("iterations", w.Iterations),
			zap.Stringer("size", w.Size),
		)
	}

	st.Done()

	for _, w := range written {
		fmt.Fprintf(r.stdout, "wrote: %s (%s)\n", w.Path, w.Size)
	}
	return written, nil
}

// Package config loads pixelmosh presets and environment settings.
//
// A preset is a YAML file holding any subset of the mosh options plus the
// output name, batch size and strict flag:
//
//	min_rate: 2
//	max_rate: 12
//	pixelation: 4
//	channel_swap: 0.8
//	output: glitched
//	batch: 5
//
// Fields missing from the file keep their defaults. A preset without a
// seed gets a fresh one. Command-line flags override preset values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pixelmosh/internal/mosh"
)

// DefaultOutput is the output name used when none is given.
const DefaultOutput = "moshed"

// MaxBatch bounds the number of files one run may write.
const MaxBatch = 999

const (
	// EnvTestMode pins new seeds to mosh.TestSeed when set to a true value.
	EnvTestMode = "PIXELMOSH_TEST_MODE"

	// EnvLogLevel holds the default log level.
	EnvLogLevel = "PIXELMOSH_LOG_LEVEL"
)

// ErrInvalidPreset wraps every preset validation failure.
var ErrInvalidPreset = errors.New("invalid preset")

// Preset is a complete CLI configuration.
type Preset struct {
	mosh.Options `yaml:",inline"`

	// Output is the output file name; ".png" is appended when missing.
	Output string `yaml:"output"`

	// Batch is the number of images to write, each with the next seed.
	Batch int `yaml:"batch"`

	// Strict rejects pixelation of gray+alpha images.
	Strict bool `yaml:"strict"`
}

// DefaultPreset returns the default options with a fresh seed, writing a
// single image named DefaultOutput.
func DefaultPreset() Preset {
	return Preset{
		Options: mosh.DefaultOptions(),
		Output:  DefaultOutput,
		Batch:   1,
	}
}

// Validate checks option ranges and the batch size.
func (p *Preset) Validate() error {
	if err := p.Options.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	if p.Batch < 1 || p.Batch > MaxBatch {
		return fmt.Errorf("%w: batch must be within [1, %d], got %d", ErrInvalidPreset, MaxBatch, p.Batch)
	}
	if strings.TrimSpace(p.Output) == "" {
		return fmt.Errorf("%w: output must not be empty", ErrInvalidPreset)
	}
	return nil
}

// LoadPreset reads a preset file from fs on top of DefaultPreset. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func LoadPreset(fs afero.Fs, path string) (Preset, error) {
	p := DefaultPreset()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return p, pkgerrors.Wrapf(err, "failed to read preset %s", path)
	}

	if err := decodePreset(data, &p); err != nil {
		return p, fmt.Errorf("%w: %s: %w", ErrInvalidPreset, path, err)
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func decodePreset(data []byte, p *Preset) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// MarshalPreset renders p as YAML, suitable for LoadPreset.
func MarshalPreset(p Preset) ([]byte, error) {
	return yaml.Marshal(p)
}

// Env holds settings taken from the environment.
type Env struct {
	LogLevel string
	TestMode bool
}

// EnvFrom reads Env through getenv. Pass os.Getenv in production.
func EnvFrom(getenv func(string) string) Env {
	env := Env{LogLevel: getenv(EnvLogLevel)}
	if v := getenv(EnvTestMode); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			env.TestMode = on
		}
	}
	return env
}

// LoadEnv reads Env from the process environment.
func LoadEnv() Env {
	return EnvFrom(os.Getenv)
}

// Apply switches test mode on or off process-wide.
func (e Env) Apply() {
	mosh.SetTestMode(e.TestMode)
}

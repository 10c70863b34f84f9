// Package logging builds the zap loggers used by the pixelmosh binaries.
//
// Logs always go to stderr: the CLI prints its results on stdout and the
// MCP server speaks JSON-RPC there.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable holding the default log level.
const EnvLevel = "PIXELMOSH_LOG_LEVEL"

// ParseLevel maps a level name to a zap level. An empty name means warn.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(name))
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// New builds a stderr logger at the named level.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter builds a logger writing to w. Debug loggers use the
// human-readable console encoder, everything else JSON.
func NewWithWriter(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if lvl == zapcore.DebugLevel {
		cfg := zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	opts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(w))}
	if lvl == zapcore.DebugLevel {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}

// FromEnv builds a stderr logger at the level named by PIXELMOSH_LOG_LEVEL,
// or override when it is not empty.
func FromEnv(override string) (*zap.Logger, error) {
	if override != "" {
		return New(override)
	}
	return New(os.Getenv(EnvLevel))
}

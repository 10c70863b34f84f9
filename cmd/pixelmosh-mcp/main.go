// Command pixelmosh-mcp serves the pixelmosh engine over MCP on stdio.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ironsheep/pixelmosh/internal/config"
	"github.com/ironsheep/pixelmosh/internal/imaging"
	"github.com/ironsheep/pixelmosh/internal/logging"
	"github.com/ironsheep/pixelmosh/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// handleArgs prints version or help text and reports whether the process
// should exit without serving.
func handleArgs(args []string, w io.Writer) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(w, "pixelmosh-mcp %s\n", Version)
		fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
		return true
	case "--help", "-h", "help":
		fmt.Fprintln(w, "pixelmosh-mcp - MCP server for seeded PNG datamoshing")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Usage: pixelmosh-mcp [options]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		fmt.Fprintln(w, "  --version, -v    Print version information")
		fmt.Fprintln(w, "  --help, -h       Print this help message")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Environment variables:")
		fmt.Fprintf(w, "  %s=debug    Enable debug logging\n", config.EnvLogLevel)
		fmt.Fprintf(w, "  %s=1        Use a fixed seed for new runs\n", config.EnvTestMode)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "This server communicates via MCP protocol over stdin/stdout.")
		fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
		return true
	}
	return false
}

func newLogger(env config.Env) (*zap.Logger, error) {
	log, err := logging.New(env.LogLevel)
	if err != nil {
		return nil, err
	}
	log.Debug("pixelmosh-mcp starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)
	return log, nil
}

func newApp(env config.Env, fs afero.Fs, opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		fx.Supply(env),
		fx.Provide(
			func() afero.Fs { return fs },
			newLogger,
			imaging.NewImageCache,
			server.New,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(server.Serve),
	}, opts...)...)
}

func main() {
	if handleArgs(os.Args[1:], os.Stdout) {
		return
	}

	env := config.LoadEnv()
	env.Apply()

	app := newApp(env, afero.NewOsFs())
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
	app.Run()
}

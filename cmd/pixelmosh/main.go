// Command pixelmosh corrupts PNG images with seeded chunk effects and
// pixelation.
//
//	pixelmosh photo.png -s 42 -p 4 -o glitched
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ironsheep/pixelmosh/internal/cli"
	"github.com/ironsheep/pixelmosh/internal/config"
	"github.com/ironsheep/pixelmosh/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const banner = `┌─────────────────────────────────────┐
│ █▀▄ █ ▀▄▀ ██▀ █   █▄ ▄█ ▄▀▄ ▄▀▀ █▄█ │
│ █▀  █ █ █ █▄▄ █▄▄ █ ▀ █ ▀▄▀ ▄██ █ █ │
└─────────────────────────────────────┘`

func newRootCmd(fs afero.Fs, stdout, stderr io.Writer, runnerOpts ...cli.Option) *cobra.Command {
	var f moshFlags

	cmd := &cobra.Command{
		Use:           "pixelmosh FILE",
		Short:         "PNG corrupter",
		Long:          banner + "\nPNG corrupter",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.LoadEnv()
			env.Apply()

			p := config.DefaultPreset()
			if f.preset != "" {
				var err error
				if p, err = config.LoadPreset(fs, f.preset); err != nil {
					return err
				}
			}
			f.apply(cmd.Flags(), &p)

			log, err := logging.FromEnv(f.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := append([]cli.Option{cli.WithStdout(stdout), cli.WithLogger(log)}, runnerOpts...)
			_, err = cli.NewRunner(fs, opts...).Run(cmd.Context(), args[0], p)
			return err
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd.Flags(), &f)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\x1b[1;31merror:\x1b[0m %v\n", err)
		stop()
		os.Exit(1)
	}
}

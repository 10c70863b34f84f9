package cli

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// status reports the stage a run is in.
type status interface {
	Stage(msg string)
	Done()
}

type nopStatus struct{}

func (nopStatus) Stage(string) {}
func (nopStatus) Done()        {}

// spinner shows stages on an indeterminate progressbar.
type spinner struct {
	bar *progressbar.ProgressBar
}

// Spinner styles from progressbar's table: braille dots for desktops and a
// rotating line for bare consoles.
const (
	spinnerDesktop = 14
	spinnerConsole = 9
)

func newSpinner(w io.Writer, desktop bool) *spinner {
	style := spinnerConsole
	if desktop {
		style = spinnerDesktop
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(style),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &spinner{bar: bar}
}

func (s *spinner) Stage(msg string) {
	s.bar.Describe(msg)
	_ = s.bar.Add(1)
}

func (s *spinner) Done() {
	s.bar.Describe("[bold][green]DONE[reset]")
	_ = s.bar.Finish()
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// hasDesktop reports whether a graphical session is likely available.
func hasDesktop() bool {
	return os.Getenv("DISPLAY") != "" || runtime.GOOS == "darwin"
}

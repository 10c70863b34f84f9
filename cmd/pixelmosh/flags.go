package main

import (
	"github.com/spf13/pflag"

	"github.com/ironsheep/pixelmosh/internal/config"
	"github.com/ironsheep/pixelmosh/internal/mosh"
)

// moshFlags mirrors config.Preset so flags can override a loaded preset.
type moshFlags struct {
	minRate      uint16
	maxRate      uint16
	pixelation   uint8
	lineShift    float64
	reverse      float64
	flip         float64
	channelSwap  float64
	channelShift float64
	seed         uint64
	output       string
	batch        int
	strict       bool
	preset       string
	logLevel     string
}

func bindFlags(fs *pflag.FlagSet, f *moshFlags) {
	d := mosh.DefaultOptions()

	fs.Uint16VarP(&f.minRate, "min-rate", "n", d.MinRate, "Minimum chunks to process")
	fs.Uint16VarP(&f.maxRate, "max-rate", "m", d.MaxRate, "Maximum chunks to process")
	fs.Uint8VarP(&f.pixelation, "pixelation", "p", d.Pixelation, "Pixelation rate (0 or 1 disables)")
	fs.Float64VarP(&f.lineShift, "line-shift", "l", d.LineShift, "Line shift rate")
	fs.Float64VarP(&f.reverse, "reverse", "r", d.Reverse, "Reverse rate")
	fs.Float64VarP(&f.flip, "flip", "f", d.Flip, "Flip rate")
	fs.Float64VarP(&f.channelSwap, "channel-swap", "c", d.ChannelSwap, "Channel swap rate")
	fs.Float64VarP(&f.channelShift, "channel-shift", "t", d.ChannelShift, "Channel shift rate")
	fs.Uint64VarP(&f.seed, "seed", "s", 0, "Random seed (random when omitted)")
	fs.StringVarP(&f.output, "output", "o", config.DefaultOutput, "Output filename")
	fs.IntVarP(&f.batch, "batch", "b", 1, "Number of images to write, seeds counting up")
	fs.BoolVar(&f.strict, "strict", false, "Reject pixelation of gray+alpha images")
	fs.StringVar(&f.preset, "preset", "", "YAML preset file; flags override its values")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (default from "+config.EnvLogLevel+", else warn)")
}

// apply copies every flag the user set onto p.
func (f *moshFlags) apply(fs *pflag.FlagSet, p *config.Preset) {
	set := map[string]func(){
		"min-rate":      func() { p.MinRate = f.minRate },
		"max-rate":      func() { p.MaxRate = f.maxRate },
		"pixelation":    func() { p.Pixelation = f.pixelation },
		"line-shift":    func() { p.LineShift = f.lineShift },
		"reverse":       func() { p.Reverse = f.reverse },
		"flip":          func() { p.Flip = f.flip },
		"channel-swap":  func() { p.ChannelSwap = f.channelSwap },
		"channel-shift": func() { p.ChannelShift = f.channelShift },
		"seed":          func() { p.Seed = f.seed },
		"output":        func() { p.Output = f.output },
		"batch":         func() { p.Batch = f.batch },
		"strict":        func() { p.Strict = f.strict },
	}

	fs.Visit(func(fl *pflag.Flag) {
		if fn, ok := set[fl.Name]; ok {
			fn()
		}
	})
}

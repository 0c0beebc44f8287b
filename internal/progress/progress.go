// Package progress renders embedding progress on the terminal.
package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Bar reports chunk embedding progress. The zero value is silent.
type Bar struct {
	out         io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// New returns a bar writing to stderr, or nil when stderr is not a terminal.
// A nil *Bar is safe to use.
func New(description string) *Bar {
	if !Enabled() {
		return nil
	}
	return NewWithWriter(os.Stderr, description)
}

// NewWithWriter returns a bar writing to out.
func NewWithWriter(out io.Writer, description string) *Bar {
	return &Bar{out: out, description: description}
}

func (b *Bar) Start(total int) {
	if b == nil || total <= 0 {
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (b *Bar) Increment() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Add(1)
}

func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}

// Enabled reports whether stderr is attached to a terminal.
func Enabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

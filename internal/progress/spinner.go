package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner shows an animated line while a step runs and replaces it with a
// success or failure line when the step ends. Without a TTY it prints only the
// final line.
type Spinner struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	message string
	s       *spinner.Spinner
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{out: out, caps: caps, symbols: SelectSymbols(caps)}
}

// Start begins spinning with message.
func (sp *Spinner) Start(message string) {
	sp.message = message
	if !sp.caps.IsTTY {
		return
	}
	sp.s = spinner.New(spinner.CharSets[sp.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(sp.out))
	sp.s.Suffix = " " + message
	sp.s.Start()
}

// Succeed stops the spinner with a success line. An empty message repeats the
// start message.
func (sp *Spinner) Succeed(message string) {
	sp.finish(sp.symbols.Checkmark, color.FgGreen, message)
}

// Fail stops the spinner with a failure line.
func (sp *Spinner) Fail(message string) {
	sp.finish(sp.symbols.Failure, color.FgRed, message)
}

func (sp *Spinner) finish(symbol string, attr color.Attribute, message string) {
	if sp.s != nil {
		sp.s.Stop()
		sp.s = nil
	}
	if message == "" {
		message = sp.message
	}
	if sp.caps.SupportsColor {
		symbol = color.New(attr).Sprint(symbol)
	}
	fmt.Fprintf(sp.out, "%s %s\n", symbol, message)
}

// Package prompt asks the operator questions on the command's input and output streams.
// Each call blocks until a full line is read; there is no callback or timeout.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when the input stream ends before an answer is read.
var ErrNoInput = errors.New("no input available")

// Prompter is the interactive request/response boundary used by commands.
type Prompter interface {
	// Confirm asks a yes/no question. Anything other than y/yes is a no.
	Confirm(question string) (bool, error)
	// Input asks for a line of text.
	Input(question string) (string, error)
	// Secret asks for a line of text without echoing it when the input is a terminal.
	Secret(question string) (string, error)
}

// Terminal is a Prompter over a reader/writer pair, usually cmd.InOrStdin() and
// cmd.OutOrStdout().
type Terminal struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// New creates a Terminal prompter.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, reader: bufio.NewReader(in), out: out}
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", question)

	answer, err := t.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Input implements Prompter.
func (t *Terminal) Input(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)
	return t.readLine()
}

// Secret implements Prompter.
func (t *Terminal) Secret(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)

	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoInput
			}
		} else {
			return "", fmt.Errorf("reading answer: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

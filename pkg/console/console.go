// Package console prints the patcher's colored messages and reads the user's
// answers to its prompts.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// MaxAttempts bounds how often Choose re-asks after invalid input.
const MaxAttempts = 5

var ErrTooManyAttempts = errors.New("too many invalid answers")

// Console writes styled lines to Out and reads answers from In.
type Console struct {
	out io.Writer
	in  *bufio.Reader

	neon   *color.Color
	accent *color.Color
	warn   *color.Color
	err    *color.Color
	info   *color.Color
	plain  *color.Color
}

// New creates a console. Colors are used only when out is a terminal and
// noColor is false.
func New(in io.Reader, out io.Writer, noColor bool) *Console {
	c := &Console{
		out:    out,
		in:     bufio.NewReader(in),
		neon:   color.New(color.FgHiGreen, color.Bold),
		accent: color.New(color.FgCyan, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		info:   color.New(color.FgMagenta, color.Faint),
		plain:  color.New(color.FgWhite),
	}

	enable := !noColor && isTerminal(out)
	for _, col := range []*color.Color{c.neon, c.accent, c.warn, c.err, c.info, c.plain} {
		if enable {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying output.
func (c *Console) Writer() io.Writer { return c.out }

func (c *Console) Neon(format string, args ...any)   { c.neon.Fprintf(c.out, format+"\n", args...) }
func (c *Console) Accent(format string, args ...any) { c.accent.Fprintf(c.out, format+"\n", args...) }
func (c *Console) Warn(format string, args ...any)   { c.warn.Fprintf(c.out, format+"\n", args...) }
func (c *Console) Error(format string, args ...any)  { c.err.Fprintf(c.out, format+"\n", args...) }
func (c *Console) Info(format string, args ...any)   { c.info.Fprintf(c.out, format+"\n", args...) }
func (c *Console) Plain(format string, args ...any)  { c.plain.Fprintf(c.out, format+"\n", args...) }

// Item prints a numbered menu entry with a dimmed detail.
func (c *Console) Item(n int, label, detail string) {
	c.neon.Fprintf(c.out, "[%d] %s ", n, label)
	c.info.Fprintf(c.out, "(%s)\n", detail)
}

// Ask prints prompt and returns the trimmed answer. Surrounding quotes are
// removed so pasted Windows paths work.
func (c *Console) Ask(prompt string) (string, error) {
	c.accent.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(line), `"`), nil
}

// Confirm asks a yes/no question; only "y" and "yes" count as yes.
func (c *Console) Confirm(prompt string) (bool, error) {
	c.accent.Fprintln(c.out, prompt)
	answer, err := c.ask("> ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Choose asks for a number between 1 and n, re-asking on invalid input.
func (c *Console) Choose(prompt string, n int) (int, error) {
	answer, err := c.ask(prompt)
	for attempt := 1; ; attempt++ {
		if err != nil {
			return 0, err
		}
		if v, convErr := strconv.Atoi(answer); convErr == nil && v >= 1 && v <= n {
			return v, nil
		}
		if attempt >= MaxAttempts {
			return 0, ErrTooManyAttempts
		}
		answer, err = c.askStyled(c.err, fmt.Sprintf("Invalid. Enter a number from 1 to %d: ", n))
	}
}

func (c *Console) ask(prompt string) (string, error) {
	return c.askStyled(c.neon, prompt)
}

func (c *Console) askStyled(style *color.Color, prompt string) (string, error) {
	style.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

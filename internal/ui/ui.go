// Package ui provides the interactive prompts. On a terminal they are
// bubbletea programs; otherwise they read plain lines so piped input and
// scripts keep working.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks the user questions.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	lines       *bufio.Reader
	interactive bool
}

// New returns a Prompter on stdin/stderr, interactive when both are terminals.
func New() *Prompter {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
	return NewWithIO(os.Stdin, os.Stderr, interactive)
}

// NewWithIO returns a Prompter on the given streams.
func NewWithIO(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: in, out: out, lines: bufio.NewReader(in), interactive: interactive}
}

// Interactive reports whether prompts render as terminal UIs.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Select presents items and returns the chosen index.
func (p *Prompter) Select(ctx context.Context, prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	if !p.interactive {
		for i, item := range items {
			fmt.Fprintf(p.out, "%d. %s\n", i+1, item)
		}
		line, err := p.readLine(prompt + " [1-" + strconv.Itoa(len(items)) + "]: ")
		if err != nil {
			return -1, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(items) {
			return -1, fmt.Errorf("invalid selection %q", line)
		}
		return n - 1, nil
	}

	final, err := p.run(ctx, newSelectModel(prompt, items))
	if err != nil {
		return -1, err
	}
	m := final.(selectModel)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

// Confirm asks a yes/no question defaulting to no.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !p.interactive {
		line, err := p.readLine(prompt + " (y/N): ")
		if err != nil {
			return false, err
		}
		return parseYes(line), nil
	}

	final, err := p.run(ctx, confirmModel{prompt: prompt})
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.answer, nil
}

// Input prompts for a line of free text. Empty input is an error.
func (p *Prompter) Input(ctx context.Context, prompt string) (string, error) {
	return p.input(ctx, prompt, false)
}

// Password prompts for a secret without echoing it.
func (p *Prompter) Password(ctx context.Context, prompt string) (string, error) {
	if !p.interactive {
		if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(p.out, prompt+": ")
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(p.out)
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return strings.TrimSpace(string(b)), nil
		}
	}
	return p.input(ctx, prompt, true)
}

func (p *Prompter) input(ctx context.Context, prompt string, secret bool) (string, error) {
	var value string
	if !p.interactive {
		line, err := p.readLine(prompt + ": ")
		if err != nil {
			return "", err
		}
		value = line
	} else {
		final, err := p.run(ctx, newInputModel(prompt, secret))
		if err != nil {
			return "", err
		}
		m := final.(inputModel)
		if m.cancelled {
			return "", ErrCancelled
		}
		value = m.Value()
	}

	if value == "" {
		return "", fmt.Errorf("no input provided")
	}
	return value, nil
}

func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) || ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "是":
		return true
	}
	return false
}

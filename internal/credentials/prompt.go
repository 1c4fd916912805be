package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter asks on a terminal. Secrets are read without echo when In
// is a terminal and as a plain line otherwise.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	lines *bufio.Reader
}

func (p *TerminalPrompter) reader() *bufio.Reader {
	if p.lines == nil {
		p.lines = bufio.NewReader(p.In)
	}
	return p.lines
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.reader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrUserCancelled
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ChooseReuse implements Prompter. An empty answer reuses the stored secret.
func (p *TerminalPrompter) ChooseReuse(ctx context.Context, slot string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrUserCancelled
	}
	fmt.Fprintf(p.Out, "A stored API key for %s exists. [r]euse, [n]ew, [c]ancel (default reuse): ", slot)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "r", "reuse", "y", "yes":
		return true, nil
	case "n", "new":
		return false, nil
	default:
		return false, ErrUserCancelled
	}
}

// PromptSecret implements Prompter.
func (p *TerminalPrompter) PromptSecret(ctx context.Context, slot string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrUserCancelled
	}
	fmt.Fprintf(p.Out, "Enter API key for %s: ", slot)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(b), nil
	}
	return p.readLine()
}

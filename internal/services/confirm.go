package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const DeletePrompt = "Are you sure you want to delete this task?"

// Confirmer answers a blocking yes/no question before a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

var (
	Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
	Declined  Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
)

// PromptConfirmer asks on out and accepts "y" or "yes" from in. Anything else,
// including EOF, declines.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *PromptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if ctx.Err() != nil {
		return false
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

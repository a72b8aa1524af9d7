package main

import (
	"context"
	"errors"
	"io"

	"github.com/steveyegge/linear-cli/internal/linear"
	"github.com/steveyegge/linear-cli/internal/ui"
)

const (
	exitError       = 1
	exitInterrupted = 130
)

// reportError prints err with any remediation help.
func reportError(w io.Writer, err error) {
	_, _ = io.WriteString(w, ui.FormatError(err))
}

func exitCode(err error) int {
	if linear.KindOf(err) == linear.KindCancelled || errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	return exitError
}

package ui

import (
	"strings"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// FormatError renders err for the terminal: the message, then any
// remediation hint from a classified API error.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(RenderFail(IconFail + " Error: "))
	b.WriteString(err.Error())
	b.WriteString("\n")
	if apiErr, ok := linear.AsAPIError(err); ok {
		if help := apiErr.Help(); help != "" {
			b.WriteString(Indent(RenderMuted(help), "  "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

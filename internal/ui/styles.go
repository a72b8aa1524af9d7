// Package ui renders linear-cli output: styled tables and detail views for
// terminals, and JSON or YAML for scripts.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// Ayu palette, adaptive to light and dark terminals.
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	TitleStyle  = lipgloss.NewStyle().Bold(true)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// SetColor switches styled output on or off for the whole process. With
// color off every style renders plain text.
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderHeader renders a section header in upper case.
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// StateStyle colors a workflow state by its type.
func StateStyle(stateType string) lipgloss.Style {
	switch stateType {
	case linear.StateTypeCompleted:
		return PassStyle
	case linear.StateTypeStarted:
		return WarnStyle
	case linear.StateTypeCanceled:
		return MutedStyle.Strikethrough(true)
	case linear.StateTypeBacklog, linear.StateTypeTriage:
		return MutedStyle
	default:
		return lipgloss.NewStyle()
	}
}

// PriorityStyle colors urgent and high priorities.
func PriorityStyle(priority int) lipgloss.Style {
	switch priority {
	case 1:
		return FailStyle.Bold(true)
	case 2:
		return WarnStyle
	case 0:
		return MutedStyle
	default:
		return lipgloss.NewStyle()
	}
}

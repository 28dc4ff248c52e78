// Package report renders run results for the terminal.
package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	colorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(18)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

func row(label string, value any, style lipgloss.Style) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), style.Render(fmt.Sprint(value)))
}

package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single lime accent with red/yellow for gate state
const (
	ColorLime     = "154" // Primary accent - passing gates, headers
	ColorLimeDim  = "106" // Dimmed lime for borders
	ColorWhite    = "255" // Important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorRed      = "196" // Failing gates
	ColorYellow   = "220" // Warnings, skipped checks
)

// Styles holds all UI styles for dashboard rendering.
type Styles struct {
	Header lipgloss.Style
	Pass   lipgloss.Style
	Warn   lipgloss.Style
	Fail   lipgloss.Style
	Dim    lipgloss.Style
	Label  lipgloss.Style
	Active lipgloss.Style
	Border lipgloss.Style
	Panel  lipgloss.Style
}

// DefaultStyles returns styled components for dashboard mode.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Pass:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Fail:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle(),
		Pass:   lipgloss.NewStyle(),
		Warn:   lipgloss.NewStyle(),
		Fail:   lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle(),
		Label:  lipgloss.NewStyle(),
		Active: lipgloss.NewStyle(),
		Border: lipgloss.NewStyle(),
		Panel:  lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// Package styles holds the terminal styles of the eolkeeper CLI.
package styles

import "github.com/charmbracelet/lipgloss"

// Semantic colors. Adaptive colors keep summaries readable on light terminals.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#006d8f", Dark: "#00ccff"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007a4a", Dark: "#00ff88"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#ff4444"}
	ColorInfo    = ColorPrimary

	ColorText      = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#e5e5e5"}
	ColorTextMuted = lipgloss.AdaptiveColor{Light: "#737373", Dark: "#a3a3a3"}
	ColorBorder    = lipgloss.AdaptiveColor{Light: "#d4d4d4", Dark: "#404040"}
)

package styles

import "github.com/charmbracelet/lipgloss"

// Theme contains the composed styles of the CLI.
var Theme = struct {
	Title lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	ListItem   lipgloss.Style
	ListBullet lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary),

	Muted: lipgloss.NewStyle().
		Foreground(ColorTextMuted),

	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText),

	Success: lipgloss.NewStyle().
		Foreground(ColorSuccess),

	Error: lipgloss.NewStyle().
		Foreground(ColorError),

	Warning: lipgloss.NewStyle().
		Foreground(ColorWarning),

	Info: lipgloss.NewStyle().
		Foreground(ColorInfo),

	ListItem: lipgloss.NewStyle().
		Foreground(ColorText),

	ListBullet: lipgloss.NewStyle().
		Foreground(ColorPrimary),

	TableHeader: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(0, 1),

	TableCell: lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1),

	TableBorder: lipgloss.NewStyle().
		Foreground(ColorBorder),
}

// RenderListItem returns a formatted list item with bullet.
func RenderListItem(item string) string {
	return Theme.ListBullet.Render(IconBullet) + " " + Theme.ListItem.Render(item)
}

// RenderError returns a styled error message.
func RenderError(msg string) string {
	return Theme.Error.Render(IconError + " " + msg)
}

// RenderSuccess returns a styled success message.
func RenderSuccess(msg string) string {
	return Theme.Success.Render(IconSuccess + " " + msg)
}

// RenderWarning returns a styled warning message.
func RenderWarning(msg string) string {
	return Theme.Warning.Render(IconWarning + " " + msg)
}

// RenderInfo returns a styled info message.
func RenderInfo(msg string) string {
	return Theme.Info.Render(IconInfo + " " + msg)
}

// RenderDryRun marks output describing work that was not performed.
func RenderDryRun(msg string) string {
	return Theme.Warning.Render(IconDryRun + " " + msg)
}

package styles

// Plain unicode so output stays legible in CI logs without a Nerd Font.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "•"
	IconBullet  = "▸"
	IconDryRun  = "~"
)

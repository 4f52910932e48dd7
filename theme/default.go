package theme

import (
	"github.com/pterm/pterm"
)

// Theme defines the colour scheme used by the terminal log handler and tables
type Theme struct {
	Info  *pterm.Style
	Warn  *pterm.Style
	Error *pterm.Style
	Muted *pterm.Style

	Highlight *pterm.Style
	Success   *pterm.Style

	// inline colours for StyledLogger helpers
	Path    pterm.Color
	Counts  pterm.Color
	Role    pterm.Color
	Danger  pterm.Color
	Numbers pterm.Color
}

// Default returns the default application theme
func Default() *Theme {
	return &Theme{
		Info:      pterm.NewStyle(pterm.FgGreen),
		Warn:      pterm.NewStyle(pterm.FgYellow, pterm.Bold),
		Error:     pterm.NewStyle(pterm.FgRed, pterm.Bold),
		Muted:     pterm.NewStyle(pterm.FgGray),
		Highlight: pterm.NewStyle(pterm.FgCyan, pterm.Bold),
		Success:   pterm.NewStyle(pterm.FgGreen, pterm.Bold),

		Path:    pterm.FgCyan,
		Counts:  pterm.FgLightMagenta,
		Role:    pterm.FgLightYellow,
		Danger:  pterm.FgRed,
		Numbers: pterm.FgLightBlue,
	}
}

// Dark is tuned for dark terminal backgrounds
func Dark() *Theme {
	t := Default()
	t.Info = pterm.NewStyle(pterm.FgLightGreen)
	t.Muted = pterm.NewStyle(pterm.FgDarkGray)
	t.Path = pterm.FgLightCyan
	return t
}

// Light is tuned for light terminal backgrounds
func Light() *Theme {
	t := Default()
	t.Info = pterm.NewStyle(pterm.FgBlue)
	t.Muted = pterm.NewStyle(pterm.FgGray)
	t.Path = pterm.FgBlue
	t.Role = pterm.FgMagenta
	return t
}

func GetTheme(name string) *Theme {
	switch name {
	case "dark":
		return Dark()
	case "light":
		return Light()
	default:
		return Default()
	}
}

// ColourSplash colours the version banner
func ColourSplash(message ...any) string {
	return pterm.LightGreen(message...)
}

// ColourVersion colours version numbers on the banner
func ColourVersion(message ...any) string {
	return pterm.LightYellow(message...)
}

// StyleUrl colours URLs and hyperlinks
func StyleUrl(message ...any) string {
	return pterm.LightBlue(message...)
}

// Hyperlink creates an OSC 8 hyperlink in the terminal
func Hyperlink(uri string, text string) string {
	return "\x1b]8;;" + uri + "\x07" + text + "\x1b]8;;\x07" + "\u001b[0m"
}

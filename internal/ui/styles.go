package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent   = 74  // blue
	colorCmd      = 250 // light gray
	colorMuted    = 245 // medium gray
	colorID       = 180 // sand
	colorRelation = 114 // green
	colorError    = 203 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor || s == "" {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color. Node types use it.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderID returns s styled as a node or edge id.
func RenderID(s string) string { return render(colorID, s) }

// RenderRelation returns s styled as an edge relation.
func RenderRelation(s string) string { return render(colorRelation, s) }

// RenderError returns s in the error (red) color.
func RenderError(s string) string { return render(colorError, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// ColorEnabled reports whether the Render functions emit escape codes.
func ColorEnabled() bool { return !noColor }

package output

import (
	"os"

	"github.com/fatih/color"
)

var (
	// Result colors
	Found   = color.New(color.FgGreen)
	Missing = color.New(color.FgYellow)
	Novel   = color.New(color.FgCyan)
	Known   = color.New(color.Faint)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header   = color.New(color.FgWhite, color.Bold)
	Platform = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// FormatPlatform formats a platform label with color
func FormatPlatform(key string) string {
	return Platform.Sprintf("[%s]", key)
}

// FormatVersion formats a version token, dimming the hash suffix is not
// worth the parse; the whole token is highlighted.
func FormatVersion(v string) string {
	return Header.Sprint(v)
}

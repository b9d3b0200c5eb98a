package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// Color scheme for pacfront
var (
	// Primary actions
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	// Secondary actions
	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	// Status indicators
	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
	Bullet    = color.HiBlackString("•")

	// Source colors
	SourceRepo = color.New(color.FgBlue)
	SourceAUR  = color.New(color.FgMagenta)
)

// InitColors initializes color settings based on environment and the
// logging.color setting ("auto", "always" or "never")
func InitColors(setting string) {
	switch setting {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}

	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	// Respect TERM environment variable
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintStep prints a step indicator
func PrintStep(step, total int, format string, args ...interface{}) {
	Highlight.Fprintf(os.Stdout, "[%d/%d] ", step, total)
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(w io.Writer, key, value string) {
	Bold.Fprintf(w, "%-16s: ", key)
	fmt.Fprintln(w, value)
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, text string) {
	fmt.Fprintln(w)
	Bold.Fprintln(w, text)
	Muted.Fprintln(w, "────────────────────────────────────────")
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", Bullet, item)
	}
}

// ColorizeSource returns the colored display label of a source
func ColorizeSource(s syspkg.Source) string {
	switch s {
	case syspkg.SourceRepo:
		return SourceRepo.Sprint(s.Label())
	case syspkg.SourceAUR:
		return SourceAUR.Sprint(s.Label())
	default:
		return s.Label()
	}
}

// SprintSuccess returns a success string without printing
func SprintSuccess(format string, args ...interface{}) string {
	return fmt.Sprintf("%s %s", CheckMark, fmt.Sprintf(format, args...))
}

// SprintError returns an error string without printing
func SprintError(format string, args ...interface{}) string {
	return fmt.Sprintf("%s Error: %s", CrossMark, fmt.Sprintf(format, args...))
}

// SprintWarning returns a warning string without printing
func SprintWarning(format string, args ...interface{}) string {
	return fmt.Sprintf("Warning: %s", fmt.Sprintf(format, args...))
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output
func EnableColors() {
	color.NoColor = false
}

// AreColorsEnabled returns whether colors are currently enabled
func AreColorsEnabled() bool {
	return !color.NoColor
}

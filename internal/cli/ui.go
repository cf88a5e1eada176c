package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette & Styles
// =============================================================================

// The map itself is the colorful part of this program; the chrome around it
// stays muted.
var (
	colorAccent  = lipgloss.Color("36")  // teal, primary accent
	colorGood    = lipgloss.Color("35")  // green, success and cache hits
	colorWarn    = lipgloss.Color("220") // amber, warnings
	colorBad     = lipgloss.Color("167") // soft red, errors
	colorCommand = lipgloss.Color("75")  // light blue, runnable commands
	colorBright  = lipgloss.Color("255") // bright white, values
	colorMuted   = lipgloss.Color("245") // gray, labels
	colorFaint   = lipgloss.Color("240") // dim gray, secondary text
)

// Styles shared with the watch view.
var (
	// StyleHighlight marks emphasized values, like the run state in the
	// live view's status bar.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleWarning renders warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorGood)
	styleFail    = lipgloss.NewStyle().Foreground(colorBad)
	styleNote    = lipgloss.NewStyle().Foreground(colorMuted)
	styleSpin    = lipgloss.NewStyle().Foreground(colorAccent)
	styleValue   = lipgloss.NewStyle().Foreground(colorBright)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorCommand)
	styleCached  = lipgloss.NewStyle().Foreground(colorGood)
	styleFresh   = lipgloss.NewStyle().Foreground(colorMuted)
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleFail.Render("✗") + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render("! " + fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleNote.Render("›") + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented detail line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// Result Output
// =============================================================================

// printFile points at a file the command wrote.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

// printKeyValue prints one row of an aligned summary block, like the metrics
// the watch command ends with.
func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// printStats sums up a layout on one line: station and edge counts, plus
// whether the result came from the cache or a fresh run.
func printStats(stations, edges int, cached bool) {
	source := styleFresh.Render("fresh")
	if cached {
		source = styleCached.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " +
		StyleDim.Render(fmt.Sprintf("%d stations", stations)) + sep +
		StyleDim.Render(fmt.Sprintf("%d edges", edges)) + sep +
		source)
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

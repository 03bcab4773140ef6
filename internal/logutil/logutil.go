package logutil

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// VerbosityLevel represents the logging verbosity
type VerbosityLevel int

const (
	// NormalLevel shows standard output (default)
	NormalLevel VerbosityLevel = iota
	// VerboseLevel shows additional details and timestamps
	VerboseLevel
)

// ANSI color codes
const (
	colorReset       = "\033[0m"
	colorRed         = "\033[91m"
	colorGreen       = "\033[92m"
	colorYellow      = "\033[93m"
	colorOrange      = "\033[38;5;208m"
	colorCyan        = "\033[96m"
	colorGray        = "\033[90m"
	colorDimGray     = "\033[38;5;240m" // Very dim gray for timestamps
	colorContextGray = "\033[38;5;8m"   // Dim gray for context
	colorBrightWhite = "\033[97m"       // Bright white for rule IDs
	colorNormalWhite = "\033[37m"       // Normal white for titles
	colorBold        = "\033[1m"
)

var (
	// CurrentVerbosity is the current verbosity level
	CurrentVerbosity = NormalLevel
	// ShowTimestamps controls whether timestamps are shown
	ShowTimestamps = false

	// Unicode symbols with colors
	checkMark = colorGreen + "✓" + colorReset  // green checkmark
	warnMark  = colorYellow + "⚠" + colorReset // yellow warning
	crossMark = colorRed + "✗" + colorReset    // red cross
	infoMark  = colorGray + "ℹ" + colorReset   // gray info

	// Rule-status icons (no color, just emoji), keyed by processed.RuleStatus.String()
	severityIcons = map[string]string{
		"matched":          "🟢",
		"partiallymatched": "🟡",
		"notmatched":       "⚪",
		"notprocessed":     "⚫",
	}

	// Rule-status text colors
	severityColors = map[string]string{
		"matched":          colorGreen,
		"partiallymatched": colorYellow,
		"notmatched":       colorGray,
		"notprocessed":     colorDimGray,
	}
)

func init() {
	// Simple, consistent log format without default timestamps;
	// we render our own prefixes instead.
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

// SetVerbosity sets the current verbosity level
func SetVerbosity(level VerbosityLevel) {
	CurrentVerbosity = level
}

// SetTimestamps enables or disables timestamps
func SetTimestamps(enabled bool) {
	ShowTimestamps = enabled
}

func timestamp() string {
	if ShowTimestamps {
		return colorDimGray + time.Now().Format("15:04:05") + colorReset + " "
	}
	return ""
}

// timestampForSignals returns a timestamp for signals (only in verbose mode)
func timestampForSignals() string {
	if ShowTimestamps {
		return colorDimGray + time.Now().Format("15:04:05") + colorReset + " "
	}
	return ""
}

func Info(format string, args ...any) {
	if CurrentVerbosity < NormalLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Println(timestamp() + infoMark + " " + msg)
}

func Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(timestamp() + warnMark + " " + msg)
}

func Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(timestamp() + crossMark + " " + msg)
}

func Success(format string, args ...any) {
	if CurrentVerbosity < NormalLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Println(timestamp() + checkMark + " " + msg)
}

// Verbose logs a message only in verbose mode
func Verbose(format string, args ...any) {
	if CurrentVerbosity < VerboseLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Println(timestamp() + infoMark + " " + msg)
}

func severityLabel(severity string) string {
	s := strings.ToLower(severity)
	color, ok := severityColors[s]
	if !ok {
		color = severityColors["notprocessed"]
		s = "notprocessed"
	}
	// Get icon for severity
	icon := severityIcons[s]
	if icon == "" {
		icon = "•"
	}
	return icon + " " + color + colorBold + strings.ToUpper(severity) + colorReset
}

// MatchedRule formats one matched rule result for terminal output.
// extra contains context (e.g. extracted variables) shown on a second
// line, only in verbose mode.
func MatchedRule(ruleName, status, title, extra string) {
	// Add blank line before each result in verbose mode for better separation
	if CurrentVerbosity >= VerboseLevel {
		fmt.Println()
	}

	// Format: [timestamp] ICON STATUS  RULE_NAME: Title
	ts := timestampForSignals()
	sev := severityLabel(status)

	// Get status color for the colon
	s := strings.ToLower(status)
	sevColor, ok := severityColors[s]
	if !ok {
		sevColor = severityColors["notprocessed"]
	}

	// Rule name in bright white bold, colon in status color
	ruleIDStyled := colorBrightWhite + colorBold + ruleName + colorReset
	colonStyled := sevColor + colorBold + ":" + colorReset

	// Calculate spaces needed after styled rule name and colon for alignment (12 chars total)
	spacesNeeded := 12 - len(ruleName) - 1 // -1 for the colon
	if spacesNeeded < 0 {
		spacesNeeded = 0
	}
	ruleIDDisplay := ruleIDStyled + colonStyled + strings.Repeat(" ", spacesNeeded)

	// Title in normal white
	coloredTitle := colorNormalWhite + title + colorReset

	line := fmt.Sprintf("%s%s %s %s", ts, sev, ruleIDDisplay, coloredTitle)
	log.Println(line)

	// Context line: only show in verbose mode
	if extra != "" && CurrentVerbosity >= VerboseLevel {
		indent := "         "
		if ShowTimestamps {
			indent = "          " // account for HH:MM:SS timestamp
		}
		log.Printf("%s%s└─ %s%s\n", indent, colorContextGray, extra, colorReset)
	}
}

// MatchedRuleContext formats extracted-variable context for a matched
// rule's second output line.
func MatchedRuleContext(context map[string]string) string {
	if len(context) == 0 {
		return ""
	}

	var parts []string
	for k, v := range context {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(parts, " ")
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// uiOut receives status output. Command data goes to the command's stdout.
var uiOut io.Writer = os.Stderr

// =============================================================================
// Styles
// =============================================================================

var (
	accent = lipgloss.Color("36")
	muted  = lipgloss.Color("240")

	styleDim    = lipgloss.NewStyle().Foreground(muted)
	styleValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleAccent = lipgloss.NewStyle().Foreground(accent)
	styleKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)

	markSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Render("✓")
	markWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("›")
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// =============================================================================
// Status Output
// =============================================================================

func emit(parts ...string) {
	fmt.Fprintln(uiOut, strings.Join(parts, " "))
}

func printSuccess(format string, args ...any) {
	emit(markSuccess, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	emit(markWarning, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	emit(markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	emit(" ", styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written output file.
func printFile(path string) {
	emit(" ", styleDim.Render("→"), styleValue.Render(path))
}

func printKeyValue(key, value string) {
	emit(styleKey.Render(key), styleValue.Render(value))
}

// printStats prints node and edge counts, then a highlighted tag such as
// the output format. An empty tag is omitted.
func printStats(nodeCount, edgeCount int, tag string) {
	fields := []string{
		styleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		styleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
	}
	if tag != "" {
		fields = append(fields, styleAccent.Render(tag))
	}
	emit(" ", strings.Join(fields, styleDim.Render(" · ")))
}
